// Canonical posting record shared by every stage of the pipeline.
// Identity rules live here so the store, filter and orchestrator stay
// site-agnostic.

package model

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

type Source string

const (
	SourceKeejob    Source = "keejob"
	SourceTanitjobs Source = "tanitjobs"
	SourceAneti     Source = "aneti"
)

// Candidate is the raw output of a fetcher, before normalization.
// PostedRaw keeps whatever date text the board showed; parsing happens
// per-source during normalization.
type Candidate struct {
	Source     Source
	ExternalID string
	Title      string
	Company    string
	Location   string
	URL        string
	PostedAt   *time.Time
}

// Posting is the normalized, deduplication-ready record.
type Posting struct {
	Source       Source
	ExternalID   string
	CanonicalURL string
	Title        string
	Company      string
	Location     string
	Labels       mapset.Set[string]
	PostedAt     *time.Time
	FirstSeenAt  time.Time

	// Populated by the scoring stage, never by the ingestion cycle.
	Score       *int
	ScoreReason string

	// Soft-reject flag from the relevance filter (downgrade tier).
	Downgraded bool
}

// Identity returns the value that makes two postings the same entity:
// the source-native id when the board provides one, else the canonical URL.
func (p Posting) Identity() string {
	if p.ExternalID != "" {
		return p.ExternalID
	}
	return p.CanonicalURL
}

// IdentityKey is the store key: source-qualified identity.
func (p Posting) IdentityKey() string {
	return string(p.Source) + "|" + p.Identity()
}

// LabelSlice returns labels in sorted order for stable display and storage.
func (p Posting) LabelSlice() []string {
	if p.Labels == nil {
		return nil
	}
	out := p.Labels.ToSlice()
	sort.Strings(out)
	return out
}
