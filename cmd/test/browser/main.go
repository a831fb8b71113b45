package main

import (
	"flag"
	"fmt"
	"log"

	"jobradar/internal/browser"
)

// Smoke check for the external browser session: connect over CDP and list
// the open tabs so a misconfigured endpoint is obvious before a real run.
func main() {
	cdpURL := flag.String("cdp", "http://localhost:9222", "CDP endpoint of the running browser")
	flag.Parse()

	fmt.Println("🌐 Testing browser session...")

	session, err := browser.Connect(*cdpURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("✅ Connected over CDP")

	pages := session.Pages()
	fmt.Printf("📑 %d open tab(s):\n", len(pages))
	for _, p := range pages {
		fmt.Printf("  - %s\n", p.URL())
	}
}
