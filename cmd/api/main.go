package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaulBabatuyi/privtalk/internal/auth"
	"github.com/PaulBabatuyi/privtalk/internal/chat"
	"github.com/PaulBabatuyi/privtalk/internal/config"
	"github.com/PaulBabatuyi/privtalk/internal/data"
	"github.com/PaulBabatuyi/privtalk/internal/db"
	"github.com/PaulBabatuyi/privtalk/internal/media"
	"github.com/PaulBabatuyi/privtalk/internal/middleware"
	"github.com/PaulBabatuyi/privtalk/internal/realtime"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer func() {
		_ = dbClient.Close(ctx)
	}()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	// Session tokens valid for 24 hours.
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	registry := realtime.NewRegistry()
	dispatch := realtime.NewDispatcher(registry)

	uploader := media.NewHTTPUploader(cfg.MediaUploadURL, cfg.MediaUploadPreset)
	svc := chat.NewService(usersStore, msgsStore, uploader, dispatch)

	// Small burst so a couple of quick retries still pass.
	limiterStore := middleware.NewLimiterStore(cfg.RateLimitRPM, 3, 1*time.Minute)
	defer limiterStore.Stop()

	srv := newServer(cfg, usersStore, svc, jwtMgr, registry, dispatch, limiterStore)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // long-lived WebSocket connections share this server
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exit: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
