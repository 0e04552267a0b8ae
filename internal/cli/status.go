package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := client.NewHTTPClient(flagServer).Health()
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			fmt.Printf("Status:  %s\n", health.Status)
			fmt.Printf("Uptime:  %s\n", health.Uptime)
			fmt.Printf("Rooms:   %d\n", health.Rooms)
			fmt.Printf("Clients: %d\n", health.Clients)
			return nil
		},
	}
}
