package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SourceStats counts one source's contribution to a cycle.
type SourceStats struct {
	Fetched     int
	Dropped     int
	New         int
	RelevantNew int
}

// RunRecord is the append-only audit record for one orchestrator cycle.
// Created at cycle start, finalized once at cycle end, never mutated after.
type RunRecord struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      map[Source]*SourceStats
	Errors     []string
}

func NewRunRecord(now time.Time) *RunRecord {
	return &RunRecord{
		ID:        uuid.New(),
		StartedAt: now.UTC(),
		Stats:     make(map[Source]*SourceStats),
	}
}

// StatsFor returns (creating if needed) the stat bucket for a source.
func (r *RunRecord) StatsFor(s Source) *SourceStats {
	st, ok := r.Stats[s]
	if !ok {
		st = &SourceStats{}
		r.Stats[s] = st
	}
	return st
}

func (r *RunRecord) AddError(s Source, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", s, err))
}

// Totals sums counts across sources.
func (r *RunRecord) Totals() SourceStats {
	var t SourceStats
	for _, st := range r.Stats {
		t.Fetched += st.Fetched
		t.Dropped += st.Dropped
		t.New += st.New
		t.RelevantNew += st.RelevantNew
	}
	return t
}

// Summary renders one line per source, sorted, for logs and notifications.
func (r *RunRecord) Summary() string {
	sources := make([]string, 0, len(r.Stats))
	for s := range r.Stats {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)

	out := ""
	for _, s := range sources {
		st := r.Stats[Source(s)]
		out += fmt.Sprintf("%s: fetched=%d new=%d relevant_new=%d\n", s, st.Fetched, st.New, st.RelevantNew)
	}
	if len(r.Errors) > 0 {
		out += fmt.Sprintf("errors: %d\n", len(r.Errors))
	}
	return out
}
