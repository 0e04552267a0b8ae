package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/config"
	"github.com/corvino/roomboard/internal/logger"
	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		addr       string
		roomList   string
		vocabulary string
		redisAddr  string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board server",
		Long: `Runs the HTTP and WebSocket server. Settings come from the environment
(optionally seeded from a .env file); flags override them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				config.LoadDotEnv(envFile)
			} else {
				config.LoadDotEnv()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyServeFlags(cmd, &cfg, addr, roomList, vocabulary, redisAddr); err != nil {
				return err
			}

			log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "roomboard")
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	cmd.Flags().StringVar(&roomList, "rooms", "", "comma-separated room ids (overrides ROOMBOARD_ROOMS)")
	cmd.Flags().StringVar(&vocabulary, "vocabulary", "", "outbound status vocabulary: display or client")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "enable the Redis mirror at host:port")
	cmd.Flags().StringVar(&envFile, "env-file", "", "load settings from this file instead of .env")
	return cmd
}

// applyServeFlags copies explicitly set flags over cfg and revalidates it.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, addr, roomList, vocabulary, redisAddr string) error {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.HTTPAddr = addr
	}
	if flags.Changed("rooms") {
		cfg.Rooms = config.SplitCSV(roomList)
	}
	if flags.Changed("vocabulary") {
		v, err := protocol.ParseVocabulary(vocabulary)
		if err != nil {
			return err
		}
		cfg.Vocabulary = v
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = redisAddr
	}
	return cfg.Validate()
}
