package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/config"
	"github.com/corvino/roomboard/internal/logger"
	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/server"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to seed the environment from")
	addr := flag.String("addr", "", "listen address (overrides HTTP_ADDR)")
	roomList := flag.String("rooms", "", "comma-separated room ids (overrides ROOMBOARD_ROOMS)")
	vocabulary := flag.String("vocabulary", "", "outbound status vocabulary: display or client")
	redisAddr := flag.String("redis-addr", "", "enable the Redis mirror at host:port")
	flag.Parse()

	config.LoadDotEnv(*envFile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *roomList != "" {
		cfg.Rooms = config.SplitCSV(*roomList)
	}
	if *vocabulary != "" {
		v, err := protocol.ParseVocabulary(*vocabulary)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg.Vocabulary = v
	}
	if *redisAddr != "" {
		cfg.RedisAddr = *redisAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "roomboard-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server stopped")
}
