// Package sheets writes postings to the review spreadsheet. The inbox tab
// is append-only from this system's perspective: rows go in with decision
// NEW and are never read back — the local store stays the only identity
// authority, so manual edits in the sheet cannot desynchronize dedup state.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"jobradar/internal/model"
)

// Batched appends keep each Sheets API call well under request limits.
const batchRows = 400

// InboxHeader is the fixed column layout of the review inbox.
var InboxHeader = []string{
	"source", "labels", "title", "company", "location",
	"date_added", "url", "decision", "notes", "score", "reason",
}

// MirrorHeader is the full-export layout, one row per stored posting.
var MirrorHeader = []string{
	"source", "external_id", "title", "company", "location",
	"url", "posted_at", "first_seen_at", "score", "score_reason",
}

type Client struct {
	svc     *sheets.Service
	sheetID string
}

// New builds a client against one spreadsheet using a service-account
// credentials file.
func New(ctx context.Context, sheetID, credentialsFile string) (*Client, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Client{svc: svc, sheetID: sheetID}, nil
}

// AppendInbox appends the cycle's new & relevant postings to the inbox tab.
// Decision starts as NEW and belongs to the human reviewer afterwards; this
// code never updates an existing row.
func (c *Client) AppendInbox(ctx context.Context, tab string, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, inboxRow(p))
	}
	return c.appendRows(ctx, tab, rows)
}

// EnsureInboxHeader writes the header row once on an empty tab.
func (c *Client) EnsureInboxHeader(ctx context.Context, tab string) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.sheetID, tab+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("checking inbox header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	return c.updateRow(ctx, tab+"!A1", toRow(InboxHeader))
}

// MirrorAll overwrites the export tab with every stored posting. This runs
// out of band from the notification-bearing cycle (cmd/export), never
// inside it.
func (c *Client) MirrorAll(ctx context.Context, tab string, postings []model.Posting) error {
	if _, err := c.svc.Spreadsheets.Values.Clear(c.sheetID, tab+"!A1:Z",
		&sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clearing mirror tab: %w", err)
	}

	if err := c.updateRow(ctx, tab+"!A1", toRow(MirrorHeader)); err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, mirrorRow(p))
	}

	for i := 0; i < len(rows); i += batchRows {
		end := i + batchRows
		if end > len(rows) {
			end = len(rows)
		}
		if err := c.appendRows(ctx, tab, rows[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) appendRows(ctx context.Context, tab string, rows [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Append(c.sheetID, tab+"!A:Z",
		&sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("appending %d rows to %s: %w", len(rows), tab, err)
	}
	return nil
}

func (c *Client) updateRow(ctx context.Context, rng string, row []interface{}) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.sheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", rng, err)
	}
	return nil
}

func inboxRow(p model.Posting) []interface{} {
	score, reason := "", ""
	if p.Score != nil {
		score = fmt.Sprintf("%d", *p.Score)
		reason = p.ScoreReason
	}

	labels := strings.Join(p.LabelSlice(), ", ")
	if p.Downgraded {
		labels = strings.TrimPrefix(labels+" [flagged]", " ")
	}

	return []interface{}{
		string(p.Source),
		labels,
		p.Title,
		p.Company,
		p.Location,
		p.FirstSeenAt.Format("2006-01-02"),
		p.CanonicalURL,
		"NEW",
		"",
		score,
		reason,
	}
}

func mirrorRow(p model.Posting) []interface{} {
	postedAt := ""
	if p.PostedAt != nil {
		postedAt = p.PostedAt.Format("2006-01-02")
	}
	score := ""
	if p.Score != nil {
		score = fmt.Sprintf("%d", *p.Score)
	}

	return []interface{}{
		string(p.Source),
		p.ExternalID,
		p.Title,
		p.Company,
		p.Location,
		p.CanonicalURL,
		postedAt,
		p.FirstSeenAt.Format(time.RFC3339),
		score,
		p.ScoreReason,
	}
}

func toRow(cols []string) []interface{} {
	out := make([]interface{}, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}
