package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"

	"jobradar/internal/app"
	"jobradar/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg := config.Load(*configPath)
	log.Printf("🔧 Config loaded. Cycle every %s", cfg.CycleInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Startup failed: %v", err)
	}
	defer a.Close()

	// one cycle at a time; a slow cycle makes the next tick a no-op
	var running atomic.Bool
	runOnce := func() {
		if !running.CompareAndSwap(false, true) {
			log.Println("⏭️ Previous cycle still running, skipping tick")
			return
		}
		defer running.Store(false)

		rec, err := a.RunCycle(ctx)
		if err != nil {
			log.Printf("❌ Cycle failed: %v", err)
			return
		}
		log.Printf("📊 %s", rec.Summary())
	}

	//first cycle immediately, then on the interval
	runOnce()

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.CycleInterval), runOnce); err != nil {
		log.Fatalf("❌ Scheduling cycle: %v", err)
	}
	c.Start()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	<-c.Stop().Done()
}
