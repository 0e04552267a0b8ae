package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvino/roomboard/internal/config"
	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/rooms"
)

func TestBoardApply(t *testing.T) {
	var b board

	changed := b.apply(protocol.InitialStatus{
		Vocabulary: protocol.VocabularyDisplay,
		Rooms: []protocol.RoomState{
			{Room: "prayer-ground", Status: "grey"},
			{Room: "garage", Status: "grey"},
		},
	})
	require.True(t, changed)
	require.Len(t, b.rooms, 2)

	assert.True(t, b.apply(protocol.StatusUpdated{Vocabulary: protocol.VocabularyDisplay, Room: "garage", Status: "red"}))
	assert.Equal(t, "red", b.rooms[1].Status)
	assert.Equal(t, "prayer-ground", b.rooms[0].Room)

	assert.False(t, b.apply(protocol.GetInitialStatus{}))

	// A fresh snapshot replaces the board wholesale.
	b.apply(protocol.InitialStatus{
		Vocabulary: protocol.VocabularyClient,
		Rooms:      []protocol.RoomState{{Room: "garage", Status: "OK"}},
	})
	assert.Equal(t, protocol.VocabularyClient, b.vocab)
	assert.Equal(t, []protocol.RoomState{{Room: "garage", Status: "OK"}}, b.rooms)
}

func TestPrintRooms(t *testing.T) {
	var buf bytes.Buffer
	printRooms(&buf, protocol.VocabularyClient, []protocol.RoomState{{Room: "garage", Status: "NOK"}}, false)
	assert.Equal(t, "  garage               NOK\n", buf.String())

	buf.Reset()
	printRooms(&buf, protocol.VocabularyDisplay, []protocol.RoomState{{Room: "garage", Status: "green"}}, true)
	assert.Contains(t, buf.String(), "\033[32mgreen"+ansiReset)
}

func serveFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyServeFlags(t *testing.T) {
	cfg := config.Config{
		HTTPAddr:    ":8080",
		Rooms:       config.DefaultRooms,
		Vocabulary:  protocol.VocabularyDisplay,
		MirrorQueue: 64,
	}

	cmd := serveFlags(t, "--addr", ":9090", "--rooms", "a, b", "--vocabulary", "client")
	require.NoError(t, applyServeFlags(cmd, &cfg, ":9090", "a, b", "client", ""))
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"a", "b"}, cfg.Rooms)
	assert.Equal(t, protocol.VocabularyClient, cfg.Vocabulary)
	assert.False(t, cfg.MirrorEnabled())
}

func TestApplyServeFlagsRejectsBadInput(t *testing.T) {
	base := config.Config{Rooms: config.DefaultRooms, Vocabulary: protocol.VocabularyDisplay, MirrorQueue: 64}

	cfg := base
	cmd := serveFlags(t, "--vocabulary", "rainbow")
	assert.Error(t, applyServeFlags(cmd, &cfg, "", "", "rainbow", ""))

	cfg = base
	cmd = serveFlags(t, "--rooms", "a,a")
	err := applyServeFlags(cmd, &cfg, "", "a,a", "", "")
	var cfgErr *rooms.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
