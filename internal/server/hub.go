package server

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/rooms"
)

// Channel is one connected client as the hub sees it. The transport owns
// the connection; the hub only holds a membership reference.
type Channel interface {
	ID() string
	// Send queues data for delivery without blocking.
	Send(data []byte) error
	// Close asks the transport to tear the connection down. It must not block.
	Close()
}

// Enqueuer accepts best-effort mirror writes without blocking.
type Enqueuer interface {
	Enqueue(room, status string) bool
}

// ChannelSendError reports a broadcast that could not reach one channel.
type ChannelSendError struct {
	ChannelID string
	Err       error
}

func (e *ChannelSendError) Error() string {
	return fmt.Sprintf("send to channel %s: %v", e.ChannelID, e.Err)
}

func (e *ChannelSendError) Unwrap() error { return e.Err }

// HubOptions configures a Hub. Zero values are usable.
type HubOptions struct {
	Vocabulary protocol.Vocabulary
	Mirror     Enqueuer // nil disables write-through
	Metrics    *Metrics
	Log        *zap.Logger
}

// Hub owns the room registry and the set of live channels. Every mutation
// and the fan-out that follows it run under one lock, so all channels see
// accepted updates in the same order.
type Hub struct {
	vocab   protocol.Vocabulary
	mirror  Enqueuer
	metrics *Metrics
	log     *zap.Logger

	mu       sync.Mutex
	registry *rooms.Registry
	channels map[Channel]struct{}
}

// NewHub takes ownership of registry; callers must not touch it afterwards.
func NewHub(registry *rooms.Registry, opts HubOptions) *Hub {
	if opts.Vocabulary == "" {
		opts.Vocabulary = protocol.VocabularyDisplay
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Hub{
		vocab:    opts.Vocabulary,
		mirror:   opts.Mirror,
		metrics:  opts.Metrics,
		log:      opts.Log,
		registry: registry,
		channels: make(map[Channel]struct{}),
	}
}

// Connect registers ch and sends it the current snapshot.
func (h *Hub) Connect(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.channels[ch] = struct{}{}
	h.metrics.ChannelsConnected.Set(float64(len(h.channels)))
	h.log.Debug("channel connected", zap.String("channel", ch.ID()), zap.Int("channels", len(h.channels)))

	h.sendSnapshotLocked(ch)
}

// Disconnect removes ch. Removing an absent channel is a no-op.
func (h *Hub) Disconnect(ch Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.channels[ch]; !ok {
		return
	}
	delete(h.channels, ch)
	h.metrics.ChannelsConnected.Set(float64(len(h.channels)))
	h.log.Debug("channel disconnected", zap.String("channel", ch.ID()), zap.Int("channels", len(h.channels)))
}

// HandleMessage processes one inbound frame from ch. Nothing is returned:
// malformed frames and unknown rooms are logged and dropped, and the
// channel stays open.
func (h *Hub) HandleMessage(ch Channel, data []byte) {
	msg, err := protocol.ParseEnvelope(data)
	if err != nil {
		h.metrics.MessagesIgnored.WithLabelValues(ignoredParse).Inc()
		h.log.Warn("ignoring inbound message", zap.String("channel", ch.ID()), zap.Error(err))
		return
	}

	switch m := msg.(type) {
	case protocol.GetInitialStatus:
		h.mu.Lock()
		h.sendSnapshotLocked(ch)
		h.mu.Unlock()

	case protocol.UpdateStatus:
		if _, err := h.Update(m.Room, m.Status); err != nil {
			h.metrics.MessagesIgnored.WithLabelValues(ignoredUnknownRoom).Inc()
			h.log.Debug("ignoring update", zap.String("channel", ch.ID()), zap.Error(err))
		}

	case protocol.InitialStatus, protocol.StatusUpdated:
		h.metrics.MessagesIgnored.WithLabelValues(ignoredDirection).Inc()
		h.log.Debug("ignoring server-bound copy of outbound message",
			zap.String("channel", ch.ID()), zap.String("type", msg.MessageType()))

	default:
		h.log.Error("unhandled message type", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Update decodes token, applies it to room and broadcasts the change to
// every channel. It returns rooms.ErrUnknownRoom, wrapped, for rooms
// outside the configured set; nothing is changed or sent in that case.
func (h *Hub) Update(room, token string) (protocol.StatusUpdated, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.registry.Has(room) {
		return protocol.StatusUpdated{}, fmt.Errorf("update %q: %w", room, rooms.ErrUnknownRoom)
	}
	status, err := h.registry.Set(room, protocol.DecodeClientStatus(token))
	if err != nil {
		return protocol.StatusUpdated{}, err
	}

	msg := protocol.StatusUpdated{Vocabulary: h.vocab, Room: room, Status: h.vocab.Encode(status)}
	data, err := protocol.Encode(msg)
	if err != nil {
		return protocol.StatusUpdated{}, fmt.Errorf("encode update: %w", err)
	}

	h.metrics.UpdatesAccepted.Inc()
	h.log.Info("room status updated", zap.String("room", room), zap.Stringer("status", status))

	h.broadcastLocked(data)
	if h.mirror != nil {
		h.mirror.Enqueue(room, protocol.EncodeClientStatus(status))
	}
	return msg, nil
}

// Snapshot returns the full board in the hub's vocabulary.
func (h *Hub) Snapshot() protocol.InitialStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

// ClientCount returns the number of live channels.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

// RoomCount returns the number of configured rooms.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.Len()
}

// Vocabulary is the token set used in outbound messages.
func (h *Hub) Vocabulary() protocol.Vocabulary { return h.vocab }

func (h *Hub) snapshotLocked() protocol.InitialStatus {
	entries := h.registry.All()
	out := protocol.InitialStatus{
		Vocabulary: h.vocab,
		Rooms:      make([]protocol.RoomState, len(entries)),
	}
	for i, e := range entries {
		out.Rooms[i] = protocol.RoomState{Room: e.Room, Status: h.vocab.Encode(e.Status)}
	}
	return out
}

func (h *Hub) sendSnapshotLocked(ch Channel) {
	data, err := protocol.Encode(h.snapshotLocked())
	if err != nil {
		h.log.Error("encode snapshot", zap.Error(err))
		return
	}
	if err := ch.Send(data); err != nil {
		h.dropLocked(ch, err)
	}
}

// broadcastLocked sends data to every channel. A failing channel is dropped
// and the loop carries on with the rest.
func (h *Hub) broadcastLocked(data []byte) {
	for ch := range h.channels {
		if err := ch.Send(data); err != nil {
			h.dropLocked(ch, err)
		}
	}
}

func (h *Hub) dropLocked(ch Channel, err error) {
	serr := &ChannelSendError{ChannelID: ch.ID(), Err: err}
	h.metrics.SendFailures.Inc()
	if errors.Is(err, ErrChannelClosed) {
		h.log.Debug("dropping closed channel", zap.Error(serr))
	} else {
		h.log.Warn("dropping channel", zap.Error(serr))
	}
	if _, ok := h.channels[ch]; ok {
		delete(h.channels, ch)
		h.metrics.ChannelsConnected.Set(float64(len(h.channels)))
	}
	ch.Close()
}
