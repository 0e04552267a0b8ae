package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagServer string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "roomboard",
		Short:         "Live status board for prayer halls and other rooms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Resolve defaults: flags > env vars > hardcoded defaults.
	root.PersistentFlags().StringVarP(&flagServer, "server", "s", envOrDefault("ROOMBOARD_SERVER", "http://localhost:8080"), "server URL")

	root.AddCommand(
		newServeCmd(),
		newWatchCmd(),
		newSetCmd(),
		newRoomsCmd(),
		newStatusCmd(),
		newMirrorCmd(),
		newMCPServeCmd(),
	)

	return root
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
