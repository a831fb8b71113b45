package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"jobradar/internal/model"
)

// Upsert inserts a posting or refreshes an already-known one.
// Identity is (source, external_id|canonical_url); re-insertion of a known
// identity refreshes display fields but never touches first_seen_at or the
// score, and reports created=false.
func (s *Store) Upsert(ctx context.Context, p model.Posting) (created bool, err error) {
	known, err := s.IsKnown(ctx, p.Source, p.Identity())
	if err != nil {
		return false, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.writeDB.ExecContext(ctx,
		`INSERT INTO postings
			(source, identity, external_id, canonical_url, title, company,
			 location, labels, downgraded, posted_at, first_seen_at, last_seen_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source, identity) DO UPDATE SET
			title         = excluded.title,
			company       = excluded.company,
			location      = excluded.location,
			labels        = excluded.labels,
			downgraded    = excluded.downgraded,
			posted_at     = COALESCE(excluded.posted_at, postings.posted_at),
			last_seen_at  = excluded.last_seen_at`,
		p.Source, p.Identity(), p.ExternalID, p.CanonicalURL, p.Title, p.Company,
		p.Location, strings.Join(p.LabelSlice(), ","), boolToInt(p.Downgraded),
		timePtr(p.PostedAt), p.FirstSeenAt.UTC().Format(time.RFC3339), now)
	if err != nil {
		return false, fmt.Errorf("upserting %s: %w", p.IdentityKey(), err)
	}

	return !known, nil
}

// IsKnown reports whether a posting identity already has a row. Consistent
// with Upsert: a created posting is immediately known.
func (s *Store) IsKnown(ctx context.Context, source model.Source, identity string) (bool, error) {
	var one int
	err := s.readDB.QueryRowContext(ctx,
		`SELECT 1 FROM postings WHERE source = ? AND identity = ?`,
		source, identity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s|%s: %w", source, identity, err)
	}
	return true, nil
}

// AllPostings returns every stored posting, newest first. Feed for the
// full-export mirror and CSV dump.
func (s *Store) AllPostings(ctx context.Context) ([]model.Posting, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT source, external_id, canonical_url, title, company, location,
		        labels, downgraded, posted_at, first_seen_at, score, score_reason
		 FROM postings
		 ORDER BY first_seen_at DESC, identity`)
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	defer rows.Close()

	return scanPostings(rows)
}

// PostingsWithoutScore returns up to limit postings the scoring stage has
// not touched yet, oldest first so backlog drains in order.
func (s *Store) PostingsWithoutScore(ctx context.Context, limit int) ([]model.Posting, error) {
	rows, err := s.readDB.QueryContext(ctx,
		`SELECT source, external_id, canonical_url, title, company, location,
		        labels, downgraded, posted_at, first_seen_at, score, score_reason
		 FROM postings
		 WHERE score IS NULL
		 ORDER BY first_seen_at ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unscored postings: %w", err)
	}
	defer rows.Close()

	return scanPostings(rows)
}

// SetScore writes the scoring collaborator's result back onto a posting.
func (s *Store) SetScore(ctx context.Context, source model.Source, identity string, score int, reason string) error {
	_, err := s.writeDB.ExecContext(ctx,
		`UPDATE postings SET score = ?, score_reason = ? WHERE source = ? AND identity = ?`,
		score, reason, source, identity)
	if err != nil {
		return fmt.Errorf("setting score for %s|%s: %w", source, identity, err)
	}
	return nil
}

// SaveRawText caches the extracted full page text for a canonical URL.
func (s *Store) SaveRawText(ctx context.Context, canonicalURL, text string) error {
	_, err := s.writeDB.ExecContext(ctx,
		`INSERT INTO raw_text (canonical_url, text, extracted_at) VALUES (?, ?, ?)
		 ON CONFLICT(canonical_url) DO UPDATE SET text = excluded.text, extracted_at = excluded.extracted_at`,
		canonicalURL, text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("caching raw text for %s: %w", canonicalURL, err)
	}
	return nil
}

// RawText returns the cached page text for a canonical URL, "" if absent.
func (s *Store) RawText(ctx context.Context, canonicalURL string) (string, error) {
	var text string
	err := s.readDB.QueryRowContext(ctx,
		`SELECT text FROM raw_text WHERE canonical_url = ?`, canonicalURL).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading raw text for %s: %w", canonicalURL, err)
	}
	return text, nil
}

func scanPostings(rows *sql.Rows) ([]model.Posting, error) {
	var out []model.Posting
	for rows.Next() {
		var (
			p          model.Posting
			labels     string
			downgraded int
			postedAt   sql.NullString
			firstSeen  string
			score      sql.NullInt64
		)
		if err := rows.Scan(&p.Source, &p.ExternalID, &p.CanonicalURL, &p.Title,
			&p.Company, &p.Location, &labels, &downgraded, &postedAt,
			&firstSeen, &score, &p.ScoreReason); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}

		p.Labels = mapset.NewSet[string]()
		for _, l := range strings.Split(labels, ",") {
			if l != "" {
				p.Labels.Add(l)
			}
		}
		p.Downgraded = downgraded != 0
		if postedAt.Valid {
			if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
				p.PostedAt = &t
			}
		}
		if t, err := time.Parse(time.RFC3339, firstSeen); err == nil {
			p.FirstSeenAt = t
		}
		if score.Valid {
			v := int(score.Int64)
			p.Score = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
