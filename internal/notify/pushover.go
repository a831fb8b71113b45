package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const pushoverAPIURL = "https://api.pushover.net/1/messages.json"

// Pushover message limit is 1024 chars. Keep headroom for the truncation
// marker.
const pushoverMaxChars = 950

type Pushover struct {
	userKey  string
	appToken string
	apiURL   string
	client   *http.Client
}

func NewPushover(userKey, appToken string) *Pushover {
	return &Pushover{
		userKey:  userKey,
		appToken: appToken,
		apiURL:   pushoverAPIURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *Pushover) Name() string { return "pushover" }

func (p *Pushover) Send(ctx context.Context, title, message, clickURL string) error {
	if p.userKey == "" || p.appToken == "" {
		return fmt.Errorf("pushover not configured: missing user key or app token")
	}

	data := url.Values{}
	data.Set("token", p.appToken)
	data.Set("user", p.userKey)
	data.Set("title", title)
	data.Set("message", truncateLines(message, pushoverMaxChars))
	if clickURL != "" {
		data.Set("url", clickURL)
		data.Set("url_title", "Open")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushover POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover returned %d", resp.StatusCode)
	}
	return nil
}

// truncateLines cuts a message at a line boundary when it exceeds max,
// falling back to the nearest rune boundary when the head holds no newline.
func truncateLines(msg string, max int) string {
	if len(msg) <= max {
		return msg
	}
	cut := msg[:max-20]
	if i := strings.LastIndex(cut, "\n"); i > 0 {
		cut = cut[:i]
	} else {
		for len(cut) > 0 {
			r, size := utf8.DecodeLastRuneInString(cut)
			if r != utf8.RuneError || size != 1 {
				break
			}
			cut = cut[:len(cut)-1]
		}
	}
	return cut + "\n…(truncated)"
}
