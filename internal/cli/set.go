package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corvino/roomboard/internal/client"
	"github.com/corvino/roomboard/internal/protocol"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <room> <OK|NOK|RESET>",
		Short: "Set the status of a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := args[0]
			token := strings.ToUpper(args[1])
			switch token {
			case protocol.TokenOK, protocol.TokenNOK, protocol.TokenReset:
			default:
				return fmt.Errorf("status must be one of %s, %s, %s", protocol.TokenOK, protocol.TokenNOK, protocol.TokenReset)
			}

			resp, err := client.NewHTTPClient(flagServer).SetStatus(room, token)
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s\n", resp.Room, resp.Status)
			return nil
		},
	}
}
