// Command signurld is a small HTTP service that issues V2 signed URLs.
//
// Frontends that must let browsers upload or download objects directly ask
// this service for a URL instead of holding the service-account key
// themselves.
//
//	signurld -config signurld.yaml
//
// POST /v1/sign accepts a JSON body with bucket, object, method, expires
// (seconds), content_type, content_md5, headers and query, and responds
// with the signed URL.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshimy/gcstore/internal/logger"
	"github.com/dshimy/gcstore/storage/signer"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.New(nil).Errorf("config: %v", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	logger.SetGlobal(log)

	// Fail fast: a service that cannot sign has no reason to start.
	cred, err := signer.CredentialsFromFile(cfg.CredentialsFile)
	if err != nil {
		log.ErrorWith("loading signing credential failed", err, map[string]interface{}{
			"file": cfg.CredentialsFile,
		})
		os.Exit(1)
	}

	urlSigner := signer.New(&signer.Config{
		Scheme: cfg.Scheme,
		Host:   cfg.Host,
		Source: cred,
	})

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      newServer(urlSigner, cfg.maxExpiry(), log).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.With().Str("listen", cfg.Listen).Str("issuer", cred.GoogleAccessID).Logger().
			Info("signurld listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	log.Info("signurld stopped")
}
