package scoring

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"jobradar/internal/model"
)

const defaultModel = "gemini-1.5-flash"

// Candidate text is clipped before prompting; detail pages carry a lot of
// boilerplate.
const maxPromptTextChars = 6000

// ScoreStore is the store surface the scorer needs.
type ScoreStore interface {
	RawText(ctx context.Context, canonicalURL string) (string, error)
	SetScore(ctx context.Context, source model.Source, identity string, score int, reason string) error
}

type Scorer struct {
	client  *genai.Client
	model   string
	store   ScoreStore
	profile string
	workers int
}

// NewScorer builds a Gemini-backed scorer. profile is the operator's free
// text description of what a fitting job looks like.
func NewScorer(ctx context.Context, apiKey, modelName, profile string, store ScoreStore, workers int) (*Scorer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("scoring not configured: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModel
	}
	if workers <= 0 {
		workers = 2
	}
	return &Scorer{client: client, model: modelName, store: store, profile: profile, workers: workers}, nil
}

func (s *Scorer) Close() error { return s.client.Close() }

// Run scores each posting 0-10 against the operator profile and writes the
// result back. One retry per posting; a posting that still fails is skipped
// and the rest proceed.
func (s *Scorer) Run(ctx context.Context, postings []model.Posting) error {
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, p := range postings {
		p := p
		g.Go(func() error {
			score, reason, err := s.scoreOne(ctx, p)
			if err != nil {
				// transient API hiccups deserve one more try
				score, reason, err = s.scoreOne(ctx, p)
			}
			if err != nil {
				log.Printf("⚠️ Scoring failed for %s: %v", p.IdentityKey(), err)
				return nil
			}
			return s.store.SetScore(ctx, p.Source, p.Identity(), score, reason)
		})
	}

	return g.Wait()
}

func (s *Scorer) scoreOne(ctx context.Context, p model.Posting) (int, string, error) {
	text, err := s.store.RawText(ctx, p.CanonicalURL)
	if err != nil {
		return 0, "", err
	}
	if len(text) > maxPromptTextChars {
		text = text[:maxPromptTextChars]
	}

	prompt := fmt.Sprintf(
		"You are screening job postings for this candidate profile:\n%s\n\n"+
			"Posting:\nTitle: %s\nCompany: %s\nLocation: %s\n\n%s\n\n"+
			"Reply with exactly one line: <score 0-10>|<one short reason>.",
		s.profile, p.Title, p.Company, p.Location, text)

	resp, err := s.client.GenerativeModel(s.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return 0, "", fmt.Errorf("generate: %w", err)
	}

	return parseScoreReply(replyText(resp))
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// parseScoreReply parses "7|good stack overlap" style replies, tolerating
// surrounding whitespace and extra lines.
func parseScoreReply(reply string) (int, string, error) {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(reply), "\n", 2)[0])
	parts := strings.SplitN(line, "|", 2)

	score, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", fmt.Errorf("unparseable score reply %q", line)
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	reason := ""
	if len(parts) == 2 {
		reason = strings.TrimSpace(parts[1])
	}
	return score, reason, nil
}
