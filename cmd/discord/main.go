// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/parrot/internal/config"
	"github.com/keshon/parrot/internal/discord"
	"github.com/keshon/parrot/internal/health"
	"github.com/keshon/parrot/internal/sound"
	"github.com/keshon/parrot/internal/storage"
	"github.com/keshon/parrot/internal/tts"
	v "github.com/keshon/parrot/internal/version"
	"github.com/keshon/parrot/internal/voicecatalog"
)

func main() {
	log.Printf("[INFO] Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	synth, err := tts.NewGoogleClient(ctx, cfg.GoogleCredentials)
	if err != nil {
		log.Fatal(err)
	}

	catalog := voicecatalog.New(synth, voicecatalog.DefaultTTL)
	sounds := sound.NewResolver()

	go health.RunServer(ctx, cfg.HealthAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store, synth, catalog, sounds); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Discord bot exited cleanly")
}
