// Package pipeline runs the ingestion-and-reconciliation cycle:
// fetch all sources, normalize, dedupe against the store, classify what is
// new, append the delta to the inbox and send one summary notification.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"jobradar/internal/filter"
	"jobradar/internal/model"
	"jobradar/internal/scraper"
)

// Store is the slice of the local store the cycle needs.
type Store interface {
	Upsert(ctx context.Context, p model.Posting) (created bool, err error)
	SaveRun(ctx context.Context, rec *model.RunRecord) error
}

// Inbox is the append-only review surface. It is never read back.
type Inbox interface {
	Append(ctx context.Context, postings []model.Posting) error
}

// Notifier delivers the single per-cycle summary.
type Notifier interface {
	Send(ctx context.Context, title, message, clickURL string) error
}

type Options struct {
	// FetchParallelism bounds how many fetchers run at once. The browser
	// session is shared, so session-based sources effectively serialize on
	// the page anyway; direct sources benefit.
	FetchParallelism int

	// CycleTimeout cancels a stuck cycle from outside. Partial cycles are
	// safe: upsert is idempotent and the run record is only saved on
	// completion.
	CycleTimeout time.Duration

	// InboxURL is the click-through target on notifications.
	InboxURL string
}

type Orchestrator struct {
	fetchers []scraper.Fetcher
	store    Store
	rules    *filter.Ruleset
	inbox    Inbox
	notifier Notifier
	opts     Options
}

func New(fetchers []scraper.Fetcher, st Store, rules *filter.Ruleset, inbox Inbox, notifier Notifier, opts Options) *Orchestrator {
	if opts.FetchParallelism <= 0 {
		opts.FetchParallelism = 2
	}
	return &Orchestrator{
		fetchers: fetchers,
		store:    st,
		rules:    rules,
		inbox:    inbox,
		notifier: notifier,
		opts:     opts,
	}
}

// RunCycle executes one full pass. A fetcher failure degrades to partial
// results; a store write failure aborts before any external side effect so
// nothing is lost (retry next invocation); inbox/notify failures are logged
// and do not fail the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) (*model.RunRecord, error) {
	if o.opts.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.CycleTimeout)
		defer cancel()
	}

	rec := model.NewRunRecord(time.Now())
	log.Printf("🚀 Cycle %s started (%d sources)", rec.ID, len(o.fetchers))

	// FETCH_ALL: all fetchers complete or individually fail before
	// reconciliation begins; results keep fetcher order.
	results := make([][]model.Candidate, len(o.fetchers))
	fetchErrs := make([]error, len(o.fetchers))

	g := new(errgroup.Group)
	g.SetLimit(o.opts.FetchParallelism)
	for i, f := range o.fetchers {
		i, f := i, f
		g.Go(func() error {
			cands, err := f.Fetch(ctx)
			results[i], fetchErrs[i] = cands, err
			return nil
		})
	}
	g.Wait()

	// RECONCILE + FILTER, source-then-fetch order for a readable inbox.
	var delta []model.Posting
	now := time.Now()

	for i, f := range o.fetchers {
		stats := rec.StatsFor(f.Name())
		if fetchErrs[i] != nil {
			log.Printf("⚠️ %s fetch failed: %v", f.Name(), fetchErrs[i])
			rec.AddError(f.Name(), fetchErrs[i])
			continue
		}
		stats.Fetched += len(results[i])

		for _, cand := range results[i] {
			if !f.TrustsExternalID() {
				// Identity must go through canonical-URL derivation for
				// redirect-prone boards; the raw id is not authoritative.
				cand.ExternalID = ""
			}
			p, err := model.Normalize(cand, now)
			if err != nil {
				stats.Dropped++
				continue
			}

			verdict := o.rules.Classify(p.Title, nil)
			for _, l := range verdict.Labels {
				p.Labels.Add(l)
			}
			for _, tag := range verdict.Tags {
				p.Labels.Add(tag)
			}
			p.Downgraded = verdict.Downgraded

			created, err := o.store.Upsert(ctx, p)
			if err != nil {
				// Fatal: do not reach SYNC_EXTERNAL/NOTIFY with lost rows.
				return rec, fmt.Errorf("store write failed, aborting cycle: %w", err)
			}
			if !created {
				continue
			}

			stats.New++
			if verdict.Relevant {
				stats.RelevantNew++
				delta = append(delta, p)
			}
		}
	}

	// SYNC_EXTERNAL: append-only inbox write, decoupled failure domain.
	if len(delta) > 0 {
		if err := o.inbox.Append(ctx, delta); err != nil {
			log.Printf("⚠️ Inbox append failed: %v", err)
			rec.AddError("inbox", err)
		}
	}

	// NOTIFY: at most one message per cycle, only when there is a delta.
	if len(delta) > 0 {
		title := fmt.Sprintf("jobradar: %d new relevant posting(s)", len(delta))
		if err := o.notifier.Send(ctx, title, rec.Summary(), o.opts.InboxURL); err != nil {
			log.Printf("⚠️ Notification failed: %v", err)
		}
	}

	rec.FinishedAt = time.Now().UTC()
	if err := o.store.SaveRun(ctx, rec); err != nil {
		return rec, fmt.Errorf("saving run record: %w", err)
	}

	t := rec.Totals()
	log.Printf("🏁 Cycle %s done: fetched=%d new=%d relevant_new=%d errors=%d",
		rec.ID, t.Fetched, t.New, t.RelevantNew, len(rec.Errors))
	return rec, nil
}
