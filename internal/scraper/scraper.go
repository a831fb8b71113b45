// Package scraper defines the capability contract every job-board fetcher
// implements. Site-specific parsing stays behind this interface so the
// orchestrator, store and filter remain site-agnostic.
package scraper

import (
	"context"

	"jobradar/internal/model"
)

// Fetcher produces one finite batch of raw candidates per call. A fetch is
// not restartable mid-way; callers re-run the whole thing next cycle.
//
// Failure contract: a transient error (network timeout, unreachable browser
// session) returns (nil, err) and must not take the cycle down — the
// orchestrator records the error and moves on. Anti-automation interstitials
// are not errors: the fetcher returns zero candidates for the affected URLs.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Candidate, error)

	// Name is the source tag stamped on every candidate.
	Name() model.Source

	// TrustsExternalID reports whether the board's native id is stable
	// enough to be the identity, or whether canonical-URL derivation is
	// required instead.
	TrustsExternalID() bool
}
