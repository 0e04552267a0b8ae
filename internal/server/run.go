package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/config"
	"github.com/corvino/roomboard/internal/mirror"
	"github.com/corvino/roomboard/internal/rooms"
)

// Run builds the registry, optional mirror, hub and HTTP server from cfg and
// serves until ctx is cancelled. Configuration and mirror connection
// errors are returned before anything listens.
func Run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	registry, err := rooms.New(cfg.Rooms)
	if err != nil {
		return err
	}
	metrics := NewMetrics()

	opts := HubOptions{Vocabulary: cfg.Vocabulary, Metrics: metrics, Log: log.Named("hub")}

	var async *mirror.Async
	if cfg.MirrorEnabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		rm, err := mirror.NewRedis(pingCtx, mirror.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.MirrorKey,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
		defer rm.Close()

		async = mirror.NewAsync(rm, cfg.MirrorQueue, log.Named("mirror"), metrics.ObserveMirror)
		opts.Mirror = async
		log.Info("redis mirror enabled", zap.String("addr", cfg.RedisAddr), zap.String("key", cfg.MirrorKey))
	}

	hub := NewHub(registry, opts)
	srv := New(hub, metrics, log.Named("http"), Options{Addr: cfg.HTTPAddr, CORSAllow: cfg.CORSAllow})

	errCh := make(chan error, 1)
	go func() {
		log.Info("roomboard listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.Strings("rooms", cfg.Rooms),
			zap.String("vocabulary", string(cfg.Vocabulary)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if async != nil {
		if err := async.Close(shutdownCtx); err != nil {
			log.Warn("mirror flush incomplete", zap.Error(err))
		}
	}
	log.Info("server stopped")
	return nil
}
