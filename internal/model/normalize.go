package model

import (
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// NormalizationError means a candidate cannot become a posting. The caller
// drops and counts it; nothing is persisted.
type NormalizationError struct {
	Source Source
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize %s candidate: %s", e.Source, e.Reason)
}

// Normalize turns a raw fetched candidate into a canonical posting.
// Title must be non-empty after trimming. FirstSeenAt is stamped here but
// the store keeps the original value on re-insertion.
func Normalize(c Candidate, now time.Time) (Posting, error) {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return Posting{}, &NormalizationError{Source: c.Source, Reason: "empty title"}
	}

	p := Posting{
		Source:       c.Source,
		ExternalID:   strings.TrimSpace(c.ExternalID),
		CanonicalURL: CanonicalURL(c.Source, c.URL),
		Title:        title,
		Company:      strings.TrimSpace(c.Company),
		Location:     strings.TrimSpace(c.Location),
		Labels:       mapset.NewSet[string](),
		PostedAt:     c.PostedAt,
		FirstSeenAt:  now.UTC(),
	}

	if p.ExternalID == "" && p.CanonicalURL == "" {
		return Posting{}, &NormalizationError{Source: c.Source, Reason: "no identity: missing external id and url"}
	}

	return p, nil
}
