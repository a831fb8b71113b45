package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/model"
	"jobradar/internal/sheets"
	"jobradar/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	csvPath := flag.String("csv", "", "also write all postings to this CSV file")
	flag.Parse()

	cfg := config.Load(*configPath)
	ctx := context.Background()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ Opening store: %v", err)
	}
	defer st.Close()

	postings, err := st.AllPostings(ctx)
	if err != nil {
		log.Fatalf("❌ Reading postings: %v", err)
	}
	log.Printf("📦 %d postings in store", len(postings))

	if cfg.Sheets.SheetID != "" {
		client, err := sheets.New(ctx, cfg.Sheets.SheetID, cfg.Sheets.CredentialsFile)
		if err != nil {
			log.Fatalf("❌ Creating sheets client: %v", err)
		}
		if err := client.MirrorAll(ctx, cfg.Sheets.MirrorTab, postings); err != nil {
			log.Fatalf("❌ Mirroring to sheet: %v", err)
		}
		log.Printf("✅ Mirrored %d postings to tab %q", len(postings), cfg.Sheets.MirrorTab)
	}

	if *csvPath != "" {
		if err := writeCSV(*csvPath, postings); err != nil {
			log.Fatalf("❌ Writing CSV: %v", err)
		}
		log.Printf("✅ CSV written to %s", *csvPath)
	}

	if cfg.Sheets.SheetID == "" && *csvPath == "" {
		log.Println("ℹ️ Nothing to do: no sheet configured and no -csv path given")
	}
}

func writeCSV(path string, postings []model.Posting) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(sheets.MirrorHeader); err != nil {
		return err
	}

	for _, p := range postings {
		postedAt := ""
		if p.PostedAt != nil {
			postedAt = p.PostedAt.Format("2006-01-02")
		}
		score := ""
		if p.Score != nil {
			score = fmt.Sprintf("%d", *p.Score)
		}
		row := []string{
			string(p.Source), p.ExternalID, p.Title, p.Company, p.Location,
			p.CanonicalURL, postedAt, p.FirstSeenAt.Format(time.RFC3339),
			score, p.ScoreReason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
