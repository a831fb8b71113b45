// Package keejob scrapes keejob.com listing pages over plain HTTP.
// Keejob renders server-side, so no browser session is needed.
package keejob

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"jobradar/internal/model"
)

const (
	baseURL         = "https://www.keejob.com"
	listURLTemplate = baseURL + "/offres-emploi/?search=1&page=%d"
	defaultUA       = "Mozilla/5.0 (compatible; jobradar/0.1)"
)

type Config struct {
	MaxPages int
	Timeout  time.Duration

	// TodayOnly ingests only cards stamped with today's (or yesterday's,
	// the label lags around midnight) French date label.
	TodayOnly bool
}

func DefaultConfig() Config {
	return Config{MaxPages: 10, Timeout: 30 * time.Second, TodayOnly: true}
}

type Scraper struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Scraper {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Scraper{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Scraper) Name() model.Source { return model.SourceKeejob }

// TrustsExternalID: keejob's numeric offer id is stable across URL shapes.
func (s *Scraper) TrustsExternalID() bool { return true }

func (s *Scraper) Fetch(ctx context.Context) ([]model.Candidate, error) {
	// Keejob stamps cards in Tunisia time (UTC+1).
	now := time.Now().UTC().Add(1 * time.Hour)
	todayFR := dateFR(now)
	yesterdayFR := dateFR(now.AddDate(0, 0, -1))

	var out []model.Candidate

	for page := 1; page <= s.cfg.MaxPages; page++ {
		cards, err := s.fetchPage(ctx, page)
		if err != nil {
			// A later-page failure still surfaces: partial listings would
			// silently miss postings otherwise.
			return out, fmt.Errorf("page %d: %w", page, err)
		}
		if len(cards) == 0 {
			break
		}

		if s.cfg.TodayOnly {
			anyRecent := false
			for _, c := range cards {
				if c.DateLabel == todayFR || c.DateLabel == yesterdayFR {
					anyRecent = true
					break
				}
			}
			if !anyRecent {
				break
			}
		}

		for _, c := range cards {
			if s.cfg.TodayOnly && c.DateLabel != todayFR && c.DateLabel != yesterdayFR {
				continue
			}
			out = append(out, model.Candidate{
				Source:     model.SourceKeejob,
				ExternalID: c.ID,
				Title:      c.Title,
				Company:    c.Company,
				Location:   c.Location,
				URL:        c.URL,
				PostedAt:   parseDateFR(c.DateLabel),
			})
		}
	}

	log.Printf("📋 keejob: collected %d candidates (today=%s)", len(out), todayFR)
	return out, nil
}

func (s *Scraper) fetchPage(ctx context.Context, page int) ([]listingCard, error) {
	url := fmt.Sprintf(listURLTemplate, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUA)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keejob returned %d", resp.StatusCode)
	}

	return parseListing(resp.Body)
}
