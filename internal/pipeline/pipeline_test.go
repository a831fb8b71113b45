package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/filter"
	"jobradar/internal/model"
	"jobradar/internal/scraper"
	"jobradar/internal/store"
)

type fakeFetcher struct {
	source model.Source
	cands  []model.Candidate
	err    error
}

func (f *fakeFetcher) Fetch(context.Context) ([]model.Candidate, error) {
	return f.cands, f.err
}
func (f *fakeFetcher) Name() model.Source     { return f.source }
func (f *fakeFetcher) TrustsExternalID() bool { return true }

type fakeInbox struct {
	appended [][]model.Posting
	err      error
}

func (f *fakeInbox) Append(_ context.Context, ps []model.Posting) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, ps)
	return nil
}

func (f *fakeInbox) totalRows() int {
	n := 0
	for _, batch := range f.appended {
		n += len(batch)
	}
	return n
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(_ context.Context, title, message, _ string) error {
	f.sent = append(f.sent, title+"\n"+message)
	return nil
}

type failingStore struct{}

func (failingStore) Upsert(context.Context, model.Posting) (bool, error) {
	return false, errors.New("disk full")
}
func (failingStore) SaveRun(context.Context, *model.RunRecord) error { return nil }

func testRules(t *testing.T) *filter.Ruleset {
	t.Helper()
	rs, err := filter.Compile(filter.RulesetConfig{
		Downgrade: []filter.Rule{{Label: "SENIORITY", Patterns: []string{`\bsenior\b`}}},
		Exclude:   []filter.Rule{{Label: "TRADES", Patterns: []string{`electricien`}}},
		Labels:    []filter.Rule{{Label: "TECH", Patterns: []string{`developp?eur`}}},
	})
	require.NoError(t, err)
	return rs
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "jobs.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func cand(source model.Source, id, title string) model.Candidate {
	return model.Candidate{
		Source:     source,
		ExternalID: id,
		Title:      title,
		URL:        fmt.Sprintf("https://example.com/%s/%s", source, id),
	}
}

func TestRunCycle_PartialFetcherFailure(t *testing.T) {
	okSources := []model.Source{"boardA", "boardB", "boardC", "boardD"}
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: "boardX", err: errors.New("connection timed out")},
	}
	for i, s := range okSources {
		fetchers = append(fetchers, &fakeFetcher{source: s, cands: []model.Candidate{
			cand(s, fmt.Sprintf("%d", i), "Développeur Web"),
		}})
	}

	inbox := &fakeInbox{}
	notifier := &fakeNotifier{}
	o := New(fetchers, openStore(t), testRules(t), inbox, notifier, Options{})

	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err, "one transient failure never aborts the cycle")

	assert.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0], "boardX")

	totals := rec.Totals()
	assert.Equal(t, 4, totals.Fetched, "counts reflect only the surviving sources")
	assert.Equal(t, 4, totals.New)
	assert.Equal(t, 4, totals.RelevantNew)
	assert.Equal(t, 0, rec.Stats["boardX"].Fetched)
}

func TestRunCycle_NoDeltaNoNotification(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "1", "Electricien de chantier"), // excluded
		}},
	}

	inbox := &fakeInbox{}
	notifier := &fakeNotifier{}
	o := New(fetchers, openStore(t), testRules(t), inbox, notifier, Options{})

	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Empty(t, notifier.sent, "no notification when nothing relevant is new")
	assert.Empty(t, inbox.appended)
	assert.Equal(t, 1, rec.Totals().New, "excluded postings are still persisted")
	assert.Equal(t, 0, rec.Totals().RelevantNew)
}

func TestRunCycle_SecondRunIsIdempotent(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "10", "Développeur Backend"),
			cand(model.SourceKeejob, "11", "Développeur Frontend"),
		}},
	}

	inbox := &fakeInbox{}
	notifier := &fakeNotifier{}
	st := openStore(t)
	o := New(fetchers, st, testRules(t), inbox, notifier, Options{})

	rec1, err := o.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rec1.Totals().New)
	assert.Equal(t, 2, inbox.totalRows())
	assert.Len(t, notifier.sent, 1, "exactly one notification for the whole cycle")

	rec2, err := o.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rec2.Totals().New, "identical rescrape creates nothing")
	assert.Equal(t, 2, rec2.Totals().Fetched)
	assert.Equal(t, 2, inbox.totalRows(), "no further inbox appends")
	assert.Len(t, notifier.sent, 1, "no second notification")
}

func TestRunCycle_DowngradedKeptAndFlagged(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "20", "Senior Développeur Cloud"),
		}},
	}

	inbox := &fakeInbox{}
	o := New(fetchers, openStore(t), testRules(t), inbox, &fakeNotifier{}, Options{})

	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Totals().RelevantNew)
	require.Equal(t, 1, inbox.totalRows())
	p := inbox.appended[0][0]
	assert.True(t, p.Downgraded)
	assert.True(t, p.Labels.Contains("SENIORITY"))
}

func TestRunCycle_EmptyTitleDroppedNotPersisted(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "30", "   "),
			cand(model.SourceKeejob, "31", "Développeur Mobile"),
		}},
	}

	st := openStore(t)
	o := New(fetchers, st, testRules(t), &fakeInbox{}, &fakeNotifier{}, Options{})

	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Totals().Dropped)
	assert.Equal(t, 1, rec.Totals().New)

	known, err := st.IsKnown(context.Background(), model.SourceKeejob, "30")
	require.NoError(t, err)
	assert.False(t, known, "dropped candidates leave no store row")
}

func TestRunCycle_StoreFailureAbortsBeforeSync(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "40", "Développeur"),
		}},
	}

	inbox := &fakeInbox{}
	notifier := &fakeNotifier{}
	o := New(fetchers, failingStore{}, testRules(t), inbox, notifier, Options{})

	_, err := o.RunCycle(context.Background())
	require.Error(t, err)
	assert.Empty(t, inbox.appended, "no external sync after a store failure")
	assert.Empty(t, notifier.sent)
}

func TestRunCycle_InboxFailureDoesNotFailCycle(t *testing.T) {
	fetchers := []scraper.Fetcher{
		&fakeFetcher{source: model.SourceKeejob, cands: []model.Candidate{
			cand(model.SourceKeejob, "50", "Développeur"),
		}},
	}

	inbox := &fakeInbox{err: errors.New("quota exceeded")}
	o := New(fetchers, openStore(t), testRules(t), inbox, &fakeNotifier{}, Options{})

	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err, "ingestion and sync are decoupled failure domains")
	assert.NotEmpty(t, rec.Errors)
}

func TestRunCycle_URLIdentityDedupesAcrossShapes(t *testing.T) {
	// Same tanitjobs posting seen via the slug URL one run and the id URL
	// the next: one entity, no second inbox row.
	first := &fakeFetcher{source: model.SourceTanitjobs, cands: []model.Candidate{
		{Source: model.SourceTanitjobs, Title: "Développeur PHP",
			URL: "https://www.tanitjobs.com/job/777/developpeur-php/"},
	}}

	inbox := &fakeInbox{}
	st := openStore(t)
	o := New([]scraper.Fetcher{first}, st, testRules(t), inbox, &fakeNotifier{}, Options{})

	_, err := o.RunCycle(context.Background())
	require.NoError(t, err)

	first.cands = []model.Candidate{
		{Source: model.SourceTanitjobs, Title: "Développeur PHP",
			URL: "https://www.tanitjobs.com/job/777/"},
	}
	rec, err := o.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Totals().New)
	assert.Equal(t, 1, inbox.totalRows())
}
