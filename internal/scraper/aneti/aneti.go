// Package aneti scrapes the ANETI public employment board through the
// shared browser session. The board is slow and form-driven; we only read
// the first listing page, newest offers first, capped at MaxOffers.
package aneti

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"jobradar/internal/browser"
	"jobradar/internal/model"
)

const (
	siteBase   = "https://www.emploi.nat.tn"
	listingURL = siteBase + "/fo/Fr/global.php?page=156"
)

var offerIDRe = regexp.MustCompile(`(?:idoffre=|/offre/)(\d+)`)

type Config struct {
	MaxOffers int
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{MaxOffers: 25, Timeout: 30 * time.Second}
}

type Scraper struct {
	cfg     Config
	session *browser.Session
}

func New(cfg Config, session *browser.Session) *Scraper {
	if cfg.MaxOffers <= 0 {
		cfg.MaxOffers = 25
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scraper{cfg: cfg, session: session}
}

func (s *Scraper) Name() model.Source { return model.SourceAneti }

// TrustsExternalID: ANETI offer ids are stable and the only usable handle;
// URLs carry volatile session parameters.
func (s *Scraper) TrustsExternalID() bool { return true }

// Fetch returns the newest offers in listing order. Order matters: the
// first offer id doubles as the change beacon consumed by Watch.
func (s *Scraper) Fetch(ctx context.Context) ([]model.Candidate, error) {
	if s.session == nil {
		return nil, fmt.Errorf("browser session unavailable")
	}

	page, err := s.session.Page(siteBase)
	if err != nil {
		return nil, fmt.Errorf("acquiring page: %w", err)
	}
	page.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))

	if _, err := page.Goto(listingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("navigating to listing: %w", err)
	}
	page.WaitForTimeout(1000)

	anchors, err := page.Locator("a[href*='idoffre'], a[href*='/offre/']").All()
	if err != nil {
		return nil, fmt.Errorf("locating offers: %w", err)
	}

	var out []model.Candidate
	seen := map[string]bool{}

	for _, a := range anchors {
		if len(out) >= s.cfg.MaxOffers {
			break
		}
		href, _ := a.GetAttribute("href")
		m := offerIDRe.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true

		title, _ := a.TextContent()
		out = append(out, model.Candidate{
			Source:     model.SourceAneti,
			ExternalID: m[1],
			Title:      strings.TrimSpace(title),
			URL:        absoluteURL(href),
		})
	}

	log.Printf("📋 aneti: collected %d offers", len(out))
	return out, nil
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return siteBase + "/" + strings.TrimPrefix(href, "/")
}
