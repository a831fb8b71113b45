// Package scoring runs the decoupled enrichment stage: full-page text
// extraction and LLM scoring over already-persisted postings. It never runs
// inside the ingestion cycle and never blocks it.
package scoring

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"jobradar/internal/model"
)

const extractUA = "Mozilla/5.0 (compatible; jobradar/0.1)"

// ExtractStore is the store surface the extractor needs.
type ExtractStore interface {
	RawText(ctx context.Context, canonicalURL string) (string, error)
	SaveRawText(ctx context.Context, canonicalURL, text string) error
}

// Extractor fills the raw_text cache for postings that miss it, keyed by
// canonical URL, with bounded concurrency.
type Extractor struct {
	store   ExtractStore
	client  *http.Client
	workers int
}

func NewExtractor(store ExtractStore, workers int) *Extractor {
	if workers <= 0 {
		workers = 3
	}
	return &Extractor{
		store:   store,
		client:  &http.Client{Timeout: 30 * time.Second},
		workers: workers,
	}
}

// Run extracts page text for every posting that has none cached yet.
// Per-URL failures are logged and skipped; the rest proceed.
func (e *Extractor) Run(ctx context.Context, postings []model.Posting) error {
	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for _, p := range postings {
		p := p
		if p.CanonicalURL == "" {
			continue
		}
		g.Go(func() error {
			cached, err := e.store.RawText(ctx, p.CanonicalURL)
			if err != nil {
				return err
			}
			if cached != "" {
				return nil
			}

			text, err := e.fetchText(ctx, p.CanonicalURL)
			if err != nil {
				log.Printf("⚠️ Text extraction failed for %s: %v", p.CanonicalURL, err)
				return nil
			}
			return e.store.SaveRawText(ctx, p.CanonicalURL, text)
		})
	}

	return g.Wait()
}

func (e *Extractor) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", extractUA)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	return squeezeWhitespace(doc.Find("body").Text()), nil
}

func squeezeWhitespace(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}
