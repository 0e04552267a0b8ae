package server

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/rooms"
)

var testRooms = []string{"prayer-ground", "prayer-first", "garage"}

type fakeChannel struct {
	id string

	mu      sync.Mutex
	frames  [][]byte
	sendErr error
	closed  int
}

func newFakeChannel(id string) *fakeChannel { return &fakeChannel{id: id} }

func (f *fakeChannel) ID() string { return f.id }

func (f *fakeChannel) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeChannel) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeChannel) messages(t *testing.T) []protocol.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Message, 0, len(f.frames))
	for _, raw := range f.frames {
		msg, err := protocol.ParseEnvelope(raw)
		require.NoError(t, err)
		out = append(out, msg)
	}
	return out
}

func (f *fakeChannel) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

type recordingMirror struct {
	mu     sync.Mutex
	writes []protocol.RoomState
}

func (m *recordingMirror) Enqueue(room, status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, protocol.RoomState{Room: room, Status: status})
	return true
}

func newTestHub(t *testing.T, opts HubOptions) *Hub {
	t.Helper()
	reg, err := rooms.New(testRooms)
	require.NoError(t, err)
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return NewHub(reg, opts)
}

func snapshotOf(vocab protocol.Vocabulary, ground, first, garage string) protocol.InitialStatus {
	return protocol.InitialStatus{
		Vocabulary: vocab,
		Rooms: []protocol.RoomState{
			{Room: "prayer-ground", Status: ground},
			{Room: "prayer-first", Status: first},
			{Room: "garage", Status: garage},
		},
	}
}

func updateFrame(room, status string) []byte {
	return []byte(fmt.Sprintf(`{"type":"updateStatus","room":%q,"status":%q}`, room, status))
}

func TestConnectSendsSnapshot(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a := newFakeChannel("a")

	hub.Connect(a)

	assert.Equal(t, []protocol.Message{snapshotOf(protocol.VocabularyDisplay, "grey", "grey", "grey")}, a.messages(t))
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 3, hub.RoomCount())
}

func TestUpdateBroadcastsToEveryChannelIncludingSender(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a, b := newFakeChannel("a"), newFakeChannel("b")
	hub.Connect(a)
	hub.Connect(b)
	a.reset()
	b.reset()

	hub.HandleMessage(a, updateFrame("prayer-ground", "OK"))

	want := []protocol.Message{protocol.StatusUpdated{Vocabulary: protocol.VocabularyDisplay, Room: "prayer-ground", Status: "green"}}
	assert.Equal(t, want, a.messages(t))
	assert.Equal(t, want, b.messages(t))

	c := newFakeChannel("c")
	hub.Connect(c)
	assert.Equal(t, []protocol.Message{snapshotOf(protocol.VocabularyDisplay, "green", "grey", "grey")}, c.messages(t))
}

func TestGetInitialStatusRepliesToSenderOnly(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a, b := newFakeChannel("a"), newFakeChannel("b")
	hub.Connect(a)
	hub.Connect(b)
	a.reset()
	b.reset()

	hub.HandleMessage(a, []byte(`{"type":"getInitialStatus"}`))

	assert.Len(t, a.messages(t), 1)
	assert.Empty(t, b.messages(t))
}

func TestUnknownRoomIsSilentlyIgnored(t *testing.T) {
	metrics := NewMetrics()
	mirror := &recordingMirror{}
	hub := newTestHub(t, HubOptions{Metrics: metrics, Mirror: mirror})
	a := newFakeChannel("a")
	hub.Connect(a)
	a.reset()
	before := hub.Snapshot()

	assert.NotPanics(t, func() { hub.HandleMessage(a, updateFrame("attic", "OK")) })

	assert.Empty(t, a.messages(t))
	assert.Equal(t, before, hub.Snapshot())
	assert.Empty(t, mirror.writes)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MessagesIgnored.WithLabelValues(ignoredUnknownRoom)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.UpdatesAccepted))
}

func TestUpdateReturnsUnknownRoomToCollaborators(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	_, err := hub.Update("attic", "OK")
	assert.ErrorIs(t, err, rooms.ErrUnknownRoom)
}

func TestMalformedFrameKeepsChannelOpen(t *testing.T) {
	metrics := NewMetrics()
	hub := newTestHub(t, HubOptions{Metrics: metrics})
	a := newFakeChannel("a")
	hub.Connect(a)
	a.reset()

	hub.HandleMessage(a, []byte(`{not json`))
	hub.HandleMessage(a, []byte(`{"type":"wave"}`))

	assert.Empty(t, a.messages(t))
	assert.Equal(t, 0, a.closed)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.MessagesIgnored.WithLabelValues(ignoredParse)))

	hub.HandleMessage(a, updateFrame("garage", "NOK"))
	assert.Equal(t, []protocol.Message{
		protocol.StatusUpdated{Vocabulary: protocol.VocabularyDisplay, Room: "garage", Status: "red"},
	}, a.messages(t))
}

func TestServerBoundCopiesAreIgnored(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a := newFakeChannel("a")
	hub.Connect(a)
	a.reset()

	hub.HandleMessage(a, []byte(`{"type":"statusUpdated","room":"garage","status":"green"}`))

	assert.Empty(t, a.messages(t))
	assert.Equal(t, snapshotOf(protocol.VocabularyDisplay, "grey", "grey", "grey"), hub.Snapshot())
}

func TestDisconnectStopsBroadcastsAndIsIdempotent(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a, b := newFakeChannel("a"), newFakeChannel("b")
	hub.Connect(a)
	hub.Connect(b)
	b.reset()

	hub.Disconnect(b)
	hub.Disconnect(b)
	assert.Equal(t, 1, hub.ClientCount())

	hub.HandleMessage(a, updateFrame("garage", "OK"))
	assert.Empty(t, b.messages(t))

	// Reconnect and pull a fresh snapshot.
	hub.Connect(b)
	b.reset()
	hub.HandleMessage(b, []byte(`{"type":"getInitialStatus"}`))
	assert.Equal(t, []protocol.Message{snapshotOf(protocol.VocabularyDisplay, "grey", "grey", "green")}, b.messages(t))
}

func TestSendFailureDropsOnlyThatChannel(t *testing.T) {
	metrics := NewMetrics()
	hub := newTestHub(t, HubOptions{Metrics: metrics})
	a, bad, c := newFakeChannel("a"), newFakeChannel("bad"), newFakeChannel("c")
	hub.Connect(a)
	hub.Connect(bad)
	hub.Connect(c)
	a.reset()
	c.reset()
	bad.sendErr = ErrSendBufferFull

	hub.HandleMessage(a, updateFrame("prayer-first", "NOK"))

	assert.Len(t, a.messages(t), 1)
	assert.Len(t, c.messages(t), 1)
	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, bad.closed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SendFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ChannelsConnected))
}

func TestSnapshotSendFailureDropsChannel(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a := newFakeChannel("a")
	a.sendErr = ErrChannelClosed

	hub.Connect(a)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 1, a.closed)
}

func TestResetTokenDegradesToUnset(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	a, b := newFakeChannel("a"), newFakeChannel("b")
	hub.Connect(a)
	hub.Connect(b)
	a.reset()
	b.reset()

	hub.HandleMessage(a, updateFrame("prayer-first", "NOK"))
	hub.HandleMessage(a, updateFrame("prayer-first", "RESET"))

	want := []protocol.Message{
		protocol.StatusUpdated{Vocabulary: protocol.VocabularyDisplay, Room: "prayer-first", Status: "red"},
		protocol.StatusUpdated{Vocabulary: protocol.VocabularyDisplay, Room: "prayer-first", Status: "grey"},
	}
	assert.Equal(t, want, a.messages(t))
	assert.Equal(t, want, b.messages(t))
	assert.Equal(t, snapshotOf(protocol.VocabularyDisplay, "grey", "grey", "grey"), hub.Snapshot())
}

func TestClientVocabulary(t *testing.T) {
	hub := newTestHub(t, HubOptions{Vocabulary: protocol.VocabularyClient})
	a := newFakeChannel("a")
	hub.Connect(a)

	hub.HandleMessage(a, updateFrame("garage", "OK"))
	hub.HandleMessage(a, updateFrame("garage", "OFF"))

	assert.Equal(t, []protocol.Message{
		snapshotOf(protocol.VocabularyClient, "RESET", "RESET", "RESET"),
		protocol.StatusUpdated{Vocabulary: protocol.VocabularyClient, Room: "garage", Status: "OK"},
		protocol.StatusUpdated{Vocabulary: protocol.VocabularyClient, Room: "garage", Status: "RESET"},
	}, a.messages(t))
}

func TestMirrorReceivesAcceptedUpdatesInOrder(t *testing.T) {
	mirror := &recordingMirror{}
	hub := newTestHub(t, HubOptions{Mirror: mirror})

	_, err := hub.Update("garage", "OK")
	require.NoError(t, err)
	_, err = hub.Update("prayer-ground", "NOK")
	require.NoError(t, err)
	_, err = hub.Update("garage", "junk")
	require.NoError(t, err)

	assert.Equal(t, []protocol.RoomState{
		{Room: "garage", Status: "OK"},
		{Room: "prayer-ground", Status: "NOK"},
		{Room: "garage", Status: "RESET"},
	}, mirror.writes)
}

func TestConcurrentUpdatesArriveInTheSameOrderEverywhere(t *testing.T) {
	hub := newTestHub(t, HubOptions{})
	chans := make([]*fakeChannel, 4)
	for i := range chans {
		chans[i] = newFakeChannel(fmt.Sprintf("c%d", i))
		hub.Connect(chans[i])
		chans[i].reset()
	}

	tokens := []string{"OK", "NOK", "RESET"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := chans[i%len(chans)]
			hub.HandleMessage(sender, updateFrame(testRooms[i%len(testRooms)], tokens[i%len(tokens)]))
		}(i)
	}
	wg.Wait()

	first := chans[0].messages(t)
	require.Len(t, first, 50)
	for _, ch := range chans[1:] {
		assert.Equal(t, first, ch.messages(t), ch.id)
	}

	// The final snapshot agrees with the last update seen for each room.
	last := map[string]string{}
	for _, m := range first {
		u := m.(protocol.StatusUpdated)
		last[u.Room] = u.Status
	}
	for _, rs := range hub.Snapshot().Rooms {
		assert.Equal(t, last[rs.Room], rs.Status, rs.Room)
	}
}

func TestChannelSendErrorUnwraps(t *testing.T) {
	err := &ChannelSendError{ChannelID: "a", Err: ErrChannelClosed}
	assert.True(t, errors.Is(err, ErrChannelClosed))
	assert.Contains(t, err.Error(), "a")
}
