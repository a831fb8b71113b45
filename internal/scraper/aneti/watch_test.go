package aneti

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/model"
)

type fakeState struct {
	values map[string]string
}

func (f *fakeState) GetMeta(_ context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeState) SetMeta(_ context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func offers(ids ...string) []model.Candidate {
	var out []model.Candidate
	for _, id := range ids {
		out = append(out, model.Candidate{Source: model.SourceAneti, ExternalID: id, Title: "Offre " + id})
	}
	return out
}

func TestWatch(t *testing.T) {
	ctx := context.Background()
	state := &fakeState{values: map[string]string{}}

	// First call initializes, no beacon.
	changed, _, err := Watch(ctx, state, offers("100", "99"))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "100", state.values[watchStateKey])

	// Same first offer: unchanged.
	changed, _, err = Watch(ctx, state, offers("100", "99"))
	require.NoError(t, err)
	assert.False(t, changed)

	// New first offer: beacon fires and state advances.
	changed, first, err := Watch(ctx, state, offers("101", "100"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "101", first.ExternalID)
	assert.Equal(t, "101", state.values[watchStateKey])
}

func TestWatch_NoOffers(t *testing.T) {
	state := &fakeState{values: map[string]string{}}
	changed, _, err := Watch(context.Background(), state, nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, state.values)
}
