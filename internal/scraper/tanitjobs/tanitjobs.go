// Package tanitjobs scrapes tanitjobs.com through an externally-managed
// browser session. The site is JavaScript-rendered and sits behind
// Cloudflare, so direct HTTP is not an option; an interstitial page is
// treated as "nothing to ingest", never as a fatal error.
package tanitjobs

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
	"jobradar/utils"
)

const (
	siteBase   = "https://www.tanitjobs.com"
	listingURL = siteBase + "/jobs/"
)

var (
	jobIDRe    = regexp.MustCompile(`/job/(\d+)(?:/|$)`)
	cardDateRe = regexp.MustCompile(`\b(\d{2})/(\d{2})/(\d{4})\b`)
	pageNumRe  = regexp.MustCompile(`[?&]page=(\d+)`)
)

type Config struct {
	// Days is the catch-up window: paging stops once a page's oldest dated
	// card falls outside it.
	Days     int
	MaxPages int
	Timeout  time.Duration
}

func DefaultConfig() Config {
	return Config{Days: 3, MaxPages: 30, Timeout: 30 * time.Second}
}

type Scraper struct {
	cfg     Config
	session *browser.Session
}

func New(cfg Config, session *browser.Session) *Scraper {
	if cfg.Days <= 0 {
		cfg.Days = 3
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scraper{cfg: cfg, session: session}
}

func (s *Scraper) Name() model.Source { return model.SourceTanitjobs }

// TrustsExternalID: listing anchors carry both /job/<id>/ and slugged forms;
// identity goes through canonical-URL derivation, not the raw href.
func (s *Scraper) TrustsExternalID() bool { return false }

func (s *Scraper) Fetch(ctx context.Context) ([]model.Candidate, error) {
	if s.session == nil {
		return nil, fmt.Errorf("browser session unavailable")
	}

	page, err := s.session.Page(listingURL, siteBase+"/job")
	if err != nil {
		return nil, fmt.Errorf("acquiring page: %w", err)
	}
	page.SetDefaultTimeout(float64(s.cfg.Timeout.Milliseconds()))

	if _, err := page.Goto(listingURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("navigating to listing: %w", err)
	}
	page.WaitForTimeout(1200)

	if blockedByInterstitial(page) {
		log.Println("🛡️ tanitjobs: Cloudflare interstitial, skipping this cycle")
		utils.CaptureBlockedPage(page, "tanitjobs")
		return nil, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.Days)
	var out []model.Candidate

	for i := 0; i < s.cfg.MaxPages; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		cands, oldest, err := extractListingPage(page)
		if err != nil {
			return out, fmt.Errorf("extracting page %d: %w", i+1, err)
		}
		out = append(out, cands...)

		if oldest != nil && oldest.Before(cutoff) {
			break
		}
		if !gotoNextPage(page) {
			break
		}
	}

	log.Printf("📋 tanitjobs: collected %d candidates across pages", len(out))
	return out, nil
}

func blockedByInterstitial(page playwright.Page) bool {
	title, _ := page.Title()
	return strings.Contains(title, "Just a moment") ||
		strings.Contains(title, "Attention Required") ||
		strings.Contains(title, "Cloudflare")
}

// extractListingPage pulls every job anchor plus enough surrounding card
// text to find a dd/mm/yyyy posted date. Promoted cards may carry no date.
func extractListingPage(page playwright.Page) ([]model.Candidate, *time.Time, error) {
	raw, err := page.Locator("a[href*='/job/']").EvaluateAll(`
		els => els.map(a => {
			const href = a.getAttribute('href') || '';
			const text = (a.textContent || '').trim();
			let node = a, cardText = '';
			const dateRe = /\b\d{2}\/\d{2}\/\d{4}\b/;
			for (let i = 0; i < 6 && node; i++) {
				const t = (node.innerText || node.textContent || '').trim();
				if (t && (dateRe.test(t) || t.length > cardText.length)) {
					cardText = t;
				}
				node = node.parentElement;
			}
			return { href, text, cardText };
		})`)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluating job anchors: %w", err)
	}

	items, _ := raw.([]interface{})
	var (
		out    []model.Candidate
		oldest *time.Time
		seen   = map[string]bool{}
	)

	for _, it := range items {
		m, _ := it.(map[string]interface{})
		if m == nil {
			continue
		}
		href, _ := m["href"].(string)
		text, _ := m["text"].(string)
		cardText, _ := m["cardText"].(string)

		idm := jobIDRe.FindStringSubmatch(href)
		if idm == nil || seen[idm[1]] {
			continue
		}
		seen[idm[1]] = true

		cand := model.Candidate{
			Source: model.SourceTanitjobs,
			URL:    absoluteURL(href),
			Title:  cleanTitle(strings.TrimSpace(text), href, idm[1], cardText),
		}

		if dm := cardDateRe.FindStringSubmatch(cardText); dm != nil {
			if t := parseCardDate(dm); t != nil {
				cand.PostedAt = t
				if oldest == nil || t.Before(*oldest) {
					oldest = t
				}
			}
		}

		out = append(out, cand)
	}

	return out, oldest, nil
}

// cleanTitle rejects garbage link texts (result counters) and falls back to
// the URL slug, then to the first meaningful card line.
func cleanTitle(title, href, id, cardText string) string {
	if strings.Contains(strings.ToLower(title), "annonces trouv") {
		title = ""
	}

	if title == "" {
		if idx := strings.Index(href, "/job/"+id+"/"); idx >= 0 {
			slug := strings.TrimSuffix(href[idx+len("/job/"+id+"/"):], "/")
			slug = strings.SplitN(slug, "?", 2)[0]
			if slug != "" {
				title = strings.ReplaceAll(slug, "-", " ")
			}
		}
	}

	if title == "" {
		for _, line := range strings.Split(cardText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || cardDateRe.MatchString(line) ||
				strings.Contains(strings.ToLower(line), "annonces trouv") {
				continue
			}
			title = line
			break
		}
	}

	return title
}

func parseCardDate(m []string) *time.Time {
	var day, month, year int
	fmt.Sscanf(m[1], "%d", &day)
	fmt.Sscanf(m[2], "%d", &month)
	fmt.Sscanf(m[3], "%d", &year)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func absoluteURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return siteBase + href
	default:
		return siteBase + "/" + href
	}
}

// gotoNextPage follows the listing pagination: a page=N+1 search link when
// present, otherwise a "Suivant"/next anchor. Returns false at the end.
func gotoNextPage(page playwright.Page) bool {
	cur := 1
	if m := pageNumRe.FindStringSubmatch(page.URL()); m != nil {
		fmt.Sscanf(m[1], "%d", &cur)
	}

	selectors := []string{
		fmt.Sprintf("a[href*='action=search'][href*='page=%d']", cur+1),
		"a:has-text('Suivant')",
		"a[rel='next']",
		"a.page-numbers.next",
	}

	for _, sel := range selectors {
		loc := page.Locator(sel).First()
		if n, err := loc.Count(); err != nil || n == 0 {
			continue
		}
		href, _ := loc.GetAttribute("href")
		if href == "" {
			if err := loc.Click(); err != nil {
				continue
			}
		} else {
			if strings.HasPrefix(href, "?") {
				href = siteBase + "/jobs" + href
			} else {
				href = absoluteURL(href)
			}
			if _, err := page.Goto(href, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			}); err != nil {
				continue
			}
		}
		page.WaitForTimeout(800)
		return true
	}

	return false
}
