package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/media-ranker/backend/internal/config"
	"github.com/emilythestrangee/media-ranker/backend/internal/database"
	"github.com/emilythestrangee/media-ranker/backend/internal/logging"
	"github.com/emilythestrangee/media-ranker/backend/internal/server"
	"github.com/emilythestrangee/media-ranker/backend/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "").Fatalf("Failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.Server.GinMode)
	gin.SetMode(cfg.Server.GinMode)

	db, err := database.New(cfg.Database, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := session.New(ctx, cfg.Session, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	if closer, ok := sessions.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	srv := server.NewServer(cfg, db, sessions, log)

	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
