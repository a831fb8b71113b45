package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushover_Send(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = map[string]string{
			"token":   r.Form.Get("token"),
			"user":    r.Form.Get("user"),
			"title":   r.Form.Get("title"),
			"message": r.Form.Get("message"),
			"url":     r.Form.Get("url"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushover("user-key", "app-token")
	p.apiURL = srv.URL

	err := p.Send(context.Background(), "jobradar", "keejob: new=3", "https://sheet")
	require.NoError(t, err)
	assert.Equal(t, "app-token", got["token"])
	assert.Equal(t, "user-key", got["user"])
	assert.Equal(t, "jobradar", got["title"])
	assert.Equal(t, "keejob: new=3", got["message"])
	assert.Equal(t, "https://sheet", got["url"])
}

func TestPushover_Unconfigured(t *testing.T) {
	err := NewPushover("", "").Send(context.Background(), "t", "m", "")
	assert.Error(t, err)
}

func TestPushover_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewPushover("u", "t")
	p.apiURL = srv.URL
	assert.Error(t, p.Send(context.Background(), "t", "m", ""))
}

func TestTruncateLines(t *testing.T) {
	long := strings.Repeat("line one\n", 200)
	out := truncateLines(long, 950)
	assert.LessOrEqual(t, len(out), 950)
	assert.True(t, strings.HasSuffix(out, "…(truncated)"))

	assert.Equal(t, "short", truncateLines("short", 950))
}

func TestTruncateLines_RuneBoundaryWithoutNewline(t *testing.T) {
	// One long accent-heavy line: the byte cut lands mid-rune and must back
	// up instead of emitting invalid UTF-8.
	long := strings.Repeat("é", 400)
	for max := 41; max <= 44; max++ {
		out := truncateLines(long, max)
		assert.True(t, utf8.ValidString(out), "max=%d", max)
		assert.True(t, strings.HasSuffix(out, "…(truncated)"), "max=%d", max)
	}
}

func TestNtfy_SendHeadersAndBody(t *testing.T) {
	var (
		gotBody  string
		gotTitle string
		gotClick string
		gotAuth  string
		gotPath  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotTitle = r.Header.Get("Title")
		gotClick = r.Header.Get("Click")
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL, "my-topic", "secret")
	err := n.Send(context.Background(), "jobradar", "tanitjobs: new=2", "https://sheet")
	require.NoError(t, err)

	assert.Equal(t, "/my-topic", gotPath)
	assert.Equal(t, "tanitjobs: new=2", gotBody)
	assert.Equal(t, "jobradar", gotTitle)
	assert.Equal(t, "https://sheet", gotClick)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestNtfy_ChunksLongMessages(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL, "topic", "")
	long := strings.Repeat("a fairly long notification line about a job posting\n", 150)
	require.NoError(t, n.Send(context.Background(), "jobradar", long, ""))
	assert.Greater(t, calls, 1, "long messages are chunked into several posts")
}

func TestChunkLines(t *testing.T) {
	chunks := chunkLines("aaa\nbbb\nccc", 8)
	assert.Equal(t, []string{"aaa\nbbb", "ccc"}, chunks)

	chunks = chunkLines("", 100)
	assert.Equal(t, []string{""}, chunks)
}

type recordingNotifier struct {
	name string
	sent int
	fail bool
}

func (r *recordingNotifier) Send(context.Context, string, string, string) error {
	r.sent++
	if r.fail {
		return assert.AnError
	}
	return nil
}

func (r *recordingNotifier) Name() string { return r.name }

func TestMulti_FailureIsolated(t *testing.T) {
	a := &recordingNotifier{name: "a", fail: true}
	b := &recordingNotifier{name: "b"}

	err := NewMulti(a, b).Send(context.Background(), "t", "m", "")
	assert.NoError(t, err, "channel failure never propagates")
	assert.Equal(t, 1, a.sent)
	assert.Equal(t, 1, b.sent)
}
