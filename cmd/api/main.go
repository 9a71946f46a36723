package main

import (
	"net/http"
	"os"
	"time"

	"github.com/ipnow2025/medinote/internal/adapters/auth/biznavi"
	"github.com/ipnow2025/medinote/internal/platform/logger"
	"github.com/ipnow2025/medinote/internal/ports/auth"
	"github.com/ipnow2025/medinote/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Member API: con BIZNAVI_BASE_URL se habilitan login y verificación
	// de tokens; sin él corre en modo dev (header X-Debug-User-ID).
	var verifier auth.AuthVerifier
	var authn auth.Authenticator
	if base := os.Getenv("BIZNAVI_BASE_URL"); base != "" {
		client, err := biznavi.NewClient(biznavi.Options{BaseURL: base, Timeout: 10 * time.Second})
		if err != nil {
			log.Fatalw("biznavi client", "err", err)
		}
		verifier = biznavi.NewVerifier(client)
		authn = client
	} else {
		log.Infow("member API not configured, running in dev mode")
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:  verifier,
		Authenticator: authn,
		Log:           log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Infow("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalw("server error", "err", err)
	}
}
