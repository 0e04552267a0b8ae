package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/client"
)

func newRoomsCmd() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms and their current status",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.NewHTTPClient(flagServer).Rooms()
			if err != nil {
				return err
			}

			fmt.Printf("%-22s %s\n", "ROOM", "STATUS")
			printRooms(os.Stdout, list.Vocabulary, list.Rooms, !noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}
