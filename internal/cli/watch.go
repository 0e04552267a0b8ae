package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/client"
	"github.com/corvino/roomboard/internal/logger"
	"github.com/corvino/roomboard/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var (
		noColor    bool
		maxRetries int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the board live via WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				l, err := logger.New("debug", "console", "")
				if err != nil {
					return err
				}
				log = l
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			ws := client.NewWSConn(client.Config{ServerURL: flagServer, MaxRetries: maxRetries}, log)
			fmt.Fprintf(os.Stderr, "watching %s ...\n", flagServer)

			runErr := make(chan error, 1)
			go func() { runErr <- ws.Run(ctx) }()

			var b board
			for {
				select {
				case msg := <-ws.Messages():
					if !b.apply(msg) {
						continue
					}
					if u, ok := msg.(protocol.StatusUpdated); ok {
						fmt.Printf("[%s] %s -> %s\n", time.Now().Format("15:04:05"), u.Room, u.Status)
						continue
					}
					fmt.Printf("[%s] board:\n", time.Now().Format("15:04:05"))
					printRooms(os.Stdout, b.vocab, b.rooms, !noColor)
				case err := <-runErr:
					if err == nil {
						fmt.Fprintln(os.Stderr, "\nstopped")
					}
					return err
				}
			}
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output (useful for piping/logging)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 10, "consecutive failed reconnects before giving up")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log connection events to stderr")

	return cmd
}
