package keejob

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	offerIDRe = regexp.MustCompile(`^/offres-emploi/(\d+)/`)
	dateRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+([a-zéûôîàç]+)\s+(\d{4})\b`)
)

var monthsFR = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// listingCard is one offer card as it appears on a listing page.
type listingCard struct {
	ID        string
	Title     string
	Company   string
	Location  string
	DateLabel string
	URL       string
}

// parseListing extracts offer cards from one listing page. Each card is an
// <article> whose h2 link carries the /offres-emploi/<id>/ path; the company
// is the first link into /offres-emploi/companies/; the location is the text
// line just above the French date label.
func parseListing(r io.Reader) ([]listingCard, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing html: %w", err)
	}

	var cards []listingCard
	doc.Find("article").Each(func(_ int, art *goquery.Selection) {
		titleLink := art.Find("h2 a").First()
		if titleLink.Length() == 0 {
			return
		}

		href := titleLink.AttrOr("href", "")
		m := offerIDRe.FindStringSubmatch(href)
		if m == nil {
			return
		}

		card := listingCard{
			ID:    m[1],
			Title: strings.TrimSpace(titleLink.Text()),
			URL:   absoluteURL(strings.SplitN(href, "?", 2)[0]),
		}

		art.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.HasPrefix(a.AttrOr("href", ""), "/offres-emploi/companies/") {
				if t := strings.TrimSpace(a.Text()); t != "" {
					card.Company = t
					return false
				}
			}
			return true
		})

		lines := textLines(art)
		for i, l := range lines {
			if dateRe.MatchString(l) {
				card.DateLabel = strings.TrimSpace(dateRe.FindString(l))
				if i > 0 {
					card.Location = lines[i-1]
				}
			}
		}

		cards = append(cards, card)
	})

	return cards, nil
}

func textLines(sel *goquery.Selection) []string {
	var lines []string
	for _, l := range strings.Split(sel.Text(), "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return baseURL + "/" + strings.TrimPrefix(href, "/")
	}
	base, _ := url.Parse(baseURL)
	return base.ResolveReference(u).String()
}

// dateFR renders a date the way keejob labels its cards: "12 août 2026".
func dateFR(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsFR[t.Month()-1], t.Year())
}

// parseDateFR parses a keejob date label back to a time, nil when the label
// is missing or malformed.
func parseDateFR(label string) *time.Time {
	m := dateRe.FindStringSubmatch(label)
	if m == nil {
		return nil
	}
	month := 0
	for i, name := range monthsFR {
		if strings.EqualFold(name, m[2]) {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return nil
	}
	var day, year int
	fmt.Sscanf(m[1], "%d", &day)
	fmt.Sscanf(m[3], "%d", &year)
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
