package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	tanitJobRe    = regexp.MustCompile(`/job/(\d+)(?:/|$)`)
	keejobOfferRe = regexp.MustCompile(`^/offres-emploi/(\d+)(?:/|$)`)
)

// CanonicalURL collapses every observed URL shape for a source's detail page
// into exactly one form, so redirect-prone boards dedupe correctly.
// Tanitjobs detail pages are reachable both as /job/<id>/ and
// /job/<id>/<slug>/; both map to the id-only form. Query strings and
// fragments are always dropped.
func CanonicalURL(source Source, rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	switch source {
	case SourceTanitjobs:
		if m := tanitJobRe.FindStringSubmatch(raw); m != nil {
			return fmt.Sprintf("https://www.tanitjobs.com/job/%s/", m[1])
		}
	case SourceKeejob:
		if u, err := url.Parse(raw); err == nil {
			if m := keejobOfferRe.FindStringSubmatch(u.Path); m != nil {
				return fmt.Sprintf("https://www.keejob.com/offres-emploi/%s/", m[1])
			}
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
