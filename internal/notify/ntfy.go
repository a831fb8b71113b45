package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultNtfyServer = "https://ntfy.sh"

// ntfy has no hard documented size limit but some clients truncate; chunk
// at a safe size.
const ntfyMaxChars = 3500

type Ntfy struct {
	server string
	topic  string
	token  string
	client *http.Client
}

func NewNtfy(server, topic, token string) *Ntfy {
	if server == "" {
		server = DefaultNtfyServer
	}
	return &Ntfy{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Send(ctx context.Context, title, message, clickURL string) error {
	if n.topic == "" {
		return fmt.Errorf("ntfy not configured: missing topic")
	}

	chunks := chunkLines(message, ntfyMaxChars)
	for i, chunk := range chunks {
		t := title
		if len(chunks) > 1 && i > 0 {
			t = fmt.Sprintf("%s (%d)", title, i+1)
		}
		if err := n.post(ctx, t, chunk, clickURL); err != nil {
			return err
		}
	}
	return nil
}

func (n *Ntfy) post(ctx context.Context, title, message, clickURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.server+"/"+n.topic, strings.NewReader(message))
	if err != nil {
		return err
	}
	if title != "" {
		req.Header.Set("Title", title)
	}
	if clickURL != "" {
		req.Header.Set("Click", clickURL)
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

// chunkLines splits a multi-line message into chunks no longer than max,
// never breaking inside a line.
func chunkLines(msg string, max int) []string {
	var (
		chunks []string
		buf    []string
		size   int
	)

	flush := func() {
		if len(buf) > 0 {
			chunks = append(chunks, strings.Join(buf, "\n"))
			buf, size = nil, 0
		}
	}

	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			continue
		}
		if size+len(line)+1 > max && len(buf) > 0 {
			flush()
		}
		buf = append(buf, line)
		size += len(line) + 1
	}
	flush()

	if len(chunks) == 0 {
		chunks = []string{""}
	}
	return chunks
}
