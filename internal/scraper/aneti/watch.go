package aneti

import (
	"context"

	"jobradar/internal/model"
)

const watchStateKey = "aneti_last_first_id"

// WatchState is the narrow store surface the beacon needs.
type WatchState interface {
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
}

// Watch compares the first (newest) offer against the remembered beacon.
// First ever call only initializes the state; afterwards a different first
// id means the board moved and the operator should look.
func Watch(ctx context.Context, state WatchState, offers []model.Candidate) (changed bool, first model.Candidate, err error) {
	if len(offers) == 0 {
		return false, model.Candidate{}, nil
	}
	first = offers[0]

	last, err := state.GetMeta(ctx, watchStateKey)
	if err != nil {
		return false, first, err
	}

	if last == first.ExternalID {
		return false, first, nil
	}

	if err := state.SetMeta(ctx, watchStateKey, first.ExternalID); err != nil {
		return false, first, err
	}

	// An empty previous state is initialization, not a change.
	return last != "", first, nil
}
