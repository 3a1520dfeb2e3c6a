// Package health exposes a liveness endpoint for process health checks. It
// has no interaction with the rest of the bot.
package health

import (
	"context"
	"log"
	"net/http"
)

// RunServer starts the liveness HTTP server and blocks until it exits or
// ctx is cancelled; run in a goroutine.
func RunServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down health server...")
		srv.Shutdown(context.Background()) //nolint:errcheck
	}()

	log.Printf("[INFO] Health server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		// Log the error but do NOT call log.Fatal — that would kill the whole process.
		log.Printf("[ERR] Health server exited: %v", err)
	}
}
