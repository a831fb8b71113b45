// Package utils holds small cross-cutting helpers.
package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// CaptureBlockedPage saves a full-page screenshot of a page that did not
// render the expected content, typically a Cloudflare interstitial. The
// shot lands under logs/screenshots/<source>_<timestamp>.png so a blocked
// run can be diagnosed after the fact.
func CaptureBlockedPage(page playwright.Page, source string) {
	dir := filepath.Join("logs", "screenshots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Screenshot dir: %v", err)
		return
	}

	name := fmt.Sprintf("%s_%s.png", source, time.Now().Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, name)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return
	}
	log.Printf("📸 Blocked page screenshot saved: %s", path)
}
