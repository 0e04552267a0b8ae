package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/mirror"
)

func newMirrorCmd() *cobra.Command {
	var (
		redisAddr string
		key       string
		follow    bool
	)

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Inspect the Redis mirror directly",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			r, err := mirror.NewRedis(pingCtx, mirror.Options{Addr: redisAddr, Key: key})
			cancel()
			if err != nil {
				return err
			}
			defer r.Close()

			snap, err := r.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("read mirror: %w", err)
			}
			ids := make([]string, 0, len(snap))
			for id := range snap {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("%-22s %s\n", id, snap[id])
			}

			if !follow {
				return nil
			}
			fmt.Fprintf(os.Stderr, "following %s ...\n", r.UpdatesChannel())
			err = r.Subscribe(ctx, func(u mirror.Update) {
				fmt.Printf("[%s] %s -> %s\n", time.Now().Format("15:04:05"), u.Room, u.Status)
			})
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis-addr", envOrDefault("REDIS_ADDR", "localhost:6379"), "redis host:port")
	cmd.Flags().StringVar(&key, "key", envOrDefault("MIRROR_KEY", "roomboard:status"), "hash key holding room statuses")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "stream updates after printing the snapshot")
	return cmd
}
