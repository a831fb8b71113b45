package main

import (
	"context"
	"flag"
	"log"

	"jobradar/internal/app"
	"jobradar/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg := config.Load(*configPath)
	log.Printf("🔧 Config loaded. DB: %s", cfg.DBPath)

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Startup failed: %v", err)
	}
	defer a.Close()

	rec, err := a.RunCycle(ctx)
	if err != nil {
		log.Fatalf("❌ Cycle failed: %v", err)
	}

	log.Printf("📊 %s", rec.Summary())
}
