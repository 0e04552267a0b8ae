package cli

import (
	"fmt"
	"io"

	"github.com/corvino/roomboard/internal/protocol"
)

const ansiReset = "\033[0m"

// statusColor picks an ANSI color for a status token of either vocabulary.
func statusColor(vocab protocol.Vocabulary, token string) string {
	switch vocab.Decode(token) {
	case protocol.StatusGood:
		return "\033[32m"
	case protocol.StatusNotGood:
		return "\033[31m"
	default:
		return "\033[90m"
	}
}

// board tracks the last known state of every room, in server order.
type board struct {
	vocab protocol.Vocabulary
	rooms []protocol.RoomState
}

// apply folds a server message into the board. It reports whether the
// board changed shape or content.
func (b *board) apply(msg protocol.Message) bool {
	switch m := msg.(type) {
	case protocol.InitialStatus:
		b.vocab = m.Vocabulary
		b.rooms = append(b.rooms[:0], m.Rooms...)
		return true
	case protocol.StatusUpdated:
		b.vocab = m.Vocabulary
		for i := range b.rooms {
			if b.rooms[i].Room == m.Room {
				b.rooms[i].Status = m.Status
				return true
			}
		}
		b.rooms = append(b.rooms, protocol.RoomState{Room: m.Room, Status: m.Status})
		return true
	}
	return false
}

func printRooms(w io.Writer, vocab protocol.Vocabulary, rooms []protocol.RoomState, color bool) {
	for _, rs := range rooms {
		if color {
			fmt.Fprintf(w, "  %-20s %s%s%s\n", rs.Room, statusColor(vocab, rs.Status), rs.Status, ansiReset)
		} else {
			fmt.Fprintf(w, "  %-20s %s\n", rs.Room, rs.Status)
		}
	}
}
