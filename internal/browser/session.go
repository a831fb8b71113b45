// Package browser wraps an externally-managed Chrome session reached over
// CDP. The session's lifecycle belongs to the operator: we attach to the
// running browser, reuse its tabs where possible, and on Close only
// disconnect — never kill the browser itself.
package browser

import (
	"fmt"
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Session is the injected collaborator handle used by session-based
// fetchers. Acquired by the cmd layer before a cycle, never created inside
// the pipeline, so the core is testable with a stub.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	ctx     playwright.BrowserContext
}

// Connect attaches to an already-running Chrome via its CDP endpoint,
// e.g. http://172.25.192.1:9223. Fails fast when the endpoint is down;
// callers treat that as a transient, source-isolated condition.
func Connect(cdpURL string) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	br, err := pw.Chromium.ConnectOverCDP(cdpURL)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("connecting to browser at %s: %w", cdpURL, err)
	}

	var ctx playwright.BrowserContext
	if ctxs := br.Contexts(); len(ctxs) > 0 {
		ctx = ctxs[0]
	} else {
		ctx, err = br.NewContext()
		if err != nil {
			br.Close()
			pw.Stop()
			return nil, fmt.Errorf("creating browser context: %w", err)
		}
	}

	return &Session{pw: pw, browser: br, ctx: ctx}, nil
}

// Page returns a tab whose URL starts with one of the given prefixes,
// preferring an existing user tab (already past any interstitial) over a
// fresh one.
func (s *Session) Page(urlPrefixes ...string) (playwright.Page, error) {
	for _, pg := range s.ctx.Pages() {
		for _, prefix := range urlPrefixes {
			if strings.HasPrefix(pg.URL(), prefix) {
				return pg, nil
			}
		}
	}

	pg, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return pg, nil
}

// Pages lists the open tabs of the attached context.
func (s *Session) Pages() []playwright.Page {
	return s.ctx.Pages()
}

// Close disconnects from the browser. The operator's Chrome keeps running.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("⚠️ Error disconnecting from browser: %v", err)
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			log.Printf("⚠️ Error stopping playwright driver: %v", err)
		}
	}
}
