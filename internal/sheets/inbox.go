package sheets

import (
	"context"
	"sync"

	"jobradar/internal/model"
)

// Inbox binds a client to one tab and guarantees the header row exists
// before the first append. Appends are append-only; rows are never read back.
type Inbox struct {
	client *Client
	tab    string

	headerOnce sync.Once
	headerErr  error
}

func NewInbox(client *Client, tab string) *Inbox {
	return &Inbox{client: client, tab: tab}
}

func (i *Inbox) Append(ctx context.Context, postings []model.Posting) error {
	i.headerOnce.Do(func() {
		i.headerErr = i.client.EnsureInboxHeader(ctx, i.tab)
	})
	if i.headerErr != nil {
		return i.headerErr
	}
	return i.client.AppendInbox(ctx, i.tab, postings)
}
