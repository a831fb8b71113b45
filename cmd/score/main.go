package main

import (
	"context"
	"flag"
	"log"

	"jobradar/internal/config"
	"jobradar/internal/scoring"
	"jobradar/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	limit := flag.Int("limit", 50, "max postings to score in one pass")
	flag.Parse()

	cfg := config.Load(*configPath)
	ctx := context.Background()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ Opening store: %v", err)
	}
	defer st.Close()

	postings, err := st.PostingsWithoutScore(ctx, *limit)
	if err != nil {
		log.Fatalf("❌ Reading unscored postings: %v", err)
	}
	if len(postings) == 0 {
		log.Println("ℹ️ Nothing to score")
		return
	}
	log.Printf("📦 %d unscored postings", len(postings))

	extractor := scoring.NewExtractor(st, cfg.Scoring.Workers)
	if err := extractor.Run(ctx, postings); err != nil {
		log.Fatalf("❌ Extraction pass: %v", err)
	}

	scorer, err := scoring.NewScorer(ctx, cfg.Scoring.APIKey, cfg.Scoring.Model,
		cfg.Scoring.Profile, st, cfg.Scoring.Workers)
	if err != nil {
		log.Fatalf("❌ Scorer init: %v", err)
	}
	defer scorer.Close()

	if err := scorer.Run(ctx, postings); err != nil {
		log.Fatalf("❌ Scoring pass: %v", err)
	}

	log.Println("🏁 Scoring pass finished.")
}
