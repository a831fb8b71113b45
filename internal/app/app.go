// Package app wires config, store, browser session, fetchers, sheet client
// and notification channels into a ready-to-run orchestrator. All entrypoints
// under cmd/ build on it.
package app

import (
	"context"
	"fmt"
	"log"

	"jobradar/internal/browser"
	"jobradar/internal/config"
	"jobradar/internal/model"
	"jobradar/internal/notify"
	"jobradar/internal/pipeline"
	"jobradar/internal/scraper"
	"jobradar/internal/scraper/aneti"
	"jobradar/internal/scraper/keejob"
	"jobradar/internal/scraper/tanitjobs"
	"jobradar/internal/sheets"
	"jobradar/internal/store"
)

type App struct {
	Cfg      *config.Config
	Store    *store.Store
	Sheets   *sheets.Client
	Notifier *notify.Multi

	session      *browser.Session
	orchestrator *pipeline.Orchestrator
}

// New builds the full application. A missing browser session degrades to
// direct-HTTP sources only; a missing sheet config degrades the inbox to
// log output. Only the store is mandatory.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	rules, err := cfg.LoadRules()
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &App{Cfg: cfg, Store: st}
	a.Notifier = buildNotifier(cfg.Notify)

	//connect the shared browser session only when a session source is on
	if cfg.Source("tanitjobs").Enabled || cfg.Source("aneti").Enabled {
		session, err := browser.Connect(cfg.CDPURL)
		if err != nil {
			log.Printf("⚠️ Browser session unavailable (%v); session sources skipped", err)
		} else {
			a.session = session
		}
	}

	fetchers := a.buildFetchers()
	if len(fetchers) == 0 {
		a.Close()
		return nil, fmt.Errorf("no sources enabled")
	}

	var inbox pipeline.Inbox = logInbox{}
	if cfg.Sheets.SheetID != "" {
		client, err := sheets.New(ctx, cfg.Sheets.SheetID, cfg.Sheets.CredentialsFile)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating sheets client: %w", err)
		}
		a.Sheets = client
		inbox = sheets.NewInbox(client, cfg.Sheets.InboxTab)
	} else {
		log.Println("⚠️ No sheet configured, inbox rows go to the log")
	}

	a.orchestrator = pipeline.New(fetchers, st, rules, inbox, a.Notifier, pipeline.Options{
		FetchParallelism: cfg.FetchParallel,
		CycleTimeout:     cfg.CycleTimeout,
		InboxURL:         cfg.Sheets.InboxURL,
	})
	return a, nil
}

func (a *App) buildFetchers() []scraper.Fetcher {
	var fetchers []scraper.Fetcher

	if sc := a.Cfg.Source("keejob"); sc.Enabled {
		fetchers = append(fetchers, keejob.New(keejobConfig(sc)))
	}

	if sc := a.Cfg.Source("tanitjobs"); sc.Enabled && a.session != nil {
		fetchers = append(fetchers, tanitjobs.New(tanitjobsConfig(sc), a.session))
	}

	if sc := a.Cfg.Source("aneti"); sc.Enabled && a.session != nil {
		fetchers = append(fetchers, &watchedAneti{
			inner:    aneti.New(anetiConfig(sc), a.session),
			state:    a.Store,
			notifier: a.Notifier,
		})
	}

	return fetchers
}

// Per-source config blocks override the source defaults only where the
// operator actually set a value.

func keejobConfig(sc config.SourceConfig) keejob.Config {
	cfg := keejob.DefaultConfig()
	if sc.MaxPages > 0 {
		cfg.MaxPages = sc.MaxPages
	}
	if sc.TodayOnly != nil {
		cfg.TodayOnly = *sc.TodayOnly
	}
	return cfg
}

func tanitjobsConfig(sc config.SourceConfig) tanitjobs.Config {
	cfg := tanitjobs.DefaultConfig()
	if sc.Days > 0 {
		cfg.Days = sc.Days
	}
	if sc.MaxPages > 0 {
		cfg.MaxPages = sc.MaxPages
	}
	return cfg
}

func anetiConfig(sc config.SourceConfig) aneti.Config {
	cfg := aneti.DefaultConfig()
	if sc.MaxOffers > 0 {
		cfg.MaxOffers = sc.MaxOffers
	}
	return cfg
}

// RunCycle executes one ingestion cycle.
func (a *App) RunCycle(ctx context.Context) (*model.RunRecord, error) {
	return a.orchestrator.RunCycle(ctx)
}

func (a *App) Close() {
	if a.session != nil {
		a.session.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Printf("⚠️ Closing store: %v", err)
		}
	}
}

func buildNotifier(nc config.NotifyConfig) *notify.Multi {
	var channels []notify.Notifier

	if nc.PushoverUserKey != "" && nc.PushoverAppToken != "" {
		channels = append(channels, notify.NewPushover(nc.PushoverUserKey, nc.PushoverAppToken))
	}
	if nc.NtfyTopic != "" {
		channels = append(channels, notify.NewNtfy(nc.NtfyServer, nc.NtfyTopic, nc.NtfyToken))
	}
	if nc.TelegramToken != "" && nc.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(nc.TelegramToken, nc.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram channel disabled: %v", err)
		} else {
			channels = append(channels, tg)
		}
	}
	if len(channels) == 0 {
		log.Println("⚠️ No notification channel configured")
	}

	return notify.NewMulti(channels...)
}

// watchedAneti adds the first-offer change beacon on top of the regular
// fetch: when the board's top offer changes, an immediate alert goes out
// without waiting for the cycle summary.
type watchedAneti struct {
	inner    *aneti.Scraper
	state    aneti.WatchState
	notifier notify.Notifier
}

func (w *watchedAneti) Name() model.Source     { return w.inner.Name() }
func (w *watchedAneti) TrustsExternalID() bool { return w.inner.TrustsExternalID() }

func (w *watchedAneti) Fetch(ctx context.Context) ([]model.Candidate, error) {
	cands, err := w.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	changed, first, werr := aneti.Watch(ctx, w.state, cands)
	if werr != nil {
		log.Printf("⚠️ ANETI watch state: %v", werr)
	} else if changed {
		title := "ANETI: new first offer"
		msg := fmt.Sprintf("%s @ %s", first.Title, first.Company)
		if err := w.notifier.Send(ctx, title, msg, first.URL); err != nil {
			log.Printf("⚠️ ANETI watch alert: %v", err)
		}
	}

	return cands, nil
}

// logInbox is the degraded inbox used when no sheet is configured.
type logInbox struct{}

func (logInbox) Append(_ context.Context, postings []model.Posting) error {
	for _, p := range postings {
		log.Printf("📥 [%s] %s @ %s (%s)", p.Source, p.Title, p.Company, p.CanonicalURL)
	}
	return nil
}
