package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/corvino/roomboard/internal/protocol"
)

// ErrGaveUp is returned by Run after MaxRetries consecutive failed connects.
var ErrGaveUp = errors.New("giving up after repeated connection failures")

// Config controls reconnection.
type Config struct {
	ServerURL  string
	MinBackoff time.Duration // default 1s
	MaxBackoff time.Duration // default 30s
	MaxRetries int           // consecutive failures before giving up; default 10
}

// WSConn is a persistent board connection with automatic reconnect. Every
// (re)connect asks for a fresh snapshot, since updates sent while
// disconnected are lost.
type WSConn struct {
	cfg Config
	log *zap.Logger

	messages chan protocol.Message
	outbound chan []byte

	mu        sync.Mutex
	connected bool
}

// NewWSConn creates a connection; call Run to start it.
func NewWSConn(cfg Config, log *zap.Logger) *WSConn {
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WSConn{
		cfg:      cfg,
		log:      log,
		messages: make(chan protocol.Message, 64),
		outbound: make(chan []byte, 16),
	}
}

// Messages returns decoded server messages.
func (ws *WSConn) Messages() <-chan protocol.Message { return ws.messages }

// Connected reports whether a connection is currently open.
func (ws *WSConn) Connected() bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.connected
}

// Update asks the server to set room to a client token (OK, NOK, RESET).
// It is queued until a connection is available.
func (ws *WSConn) Update(ctx context.Context, room, token string) error {
	return ws.enqueue(ctx, protocol.UpdateStatus{Room: room, Status: token})
}

// RequestSnapshot asks for the full board.
func (ws *WSConn) RequestSnapshot(ctx context.Context) error {
	return ws.enqueue(ctx, protocol.GetInitialStatus{})
}

func (ws *WSConn) enqueue(ctx context.Context, m protocol.Message) error {
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	select {
	case ws.outbound <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run connects and reconnects with capped exponential backoff until ctx is
// cancelled (returns nil) or MaxRetries consecutive attempts fail.
func (ws *WSConn) Run(ctx context.Context) error {
	backoff := ws.cfg.MinBackoff
	failures := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		connected, err := ws.connect(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			// A session that got through the handshake resets the budget.
			failures = 0
			backoff = ws.cfg.MinBackoff
		} else {
			failures++
		}
		if err != nil {
			ws.log.Warn("board connection error", zap.Error(err), zap.Int("failures", failures))
		}
		if failures >= ws.cfg.MaxRetries {
			return fmt.Errorf("%w (%d attempts): %v", ErrGaveUp, failures, err)
		}

		ws.log.Info("reconnecting", zap.Duration("in", backoff))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil
		}
		backoff = nextBackoff(backoff, ws.cfg.MaxBackoff)
	}
}

// nextBackoff doubles cur, capped at max.
func nextBackoff(cur, max time.Duration) time.Duration {
	cur *= 2
	if cur > max {
		cur = max
	}
	return cur
}

// connect runs one session. connected reports whether the dial succeeded.
func (ws *WSConn) connect(ctx context.Context) (connected bool, err error) {
	wsURL, err := BuildWSURL(ws.cfg.ServerURL)
	if err != nil {
		return false, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	ws.setConnected(true)
	defer ws.setConnected(false)
	ws.log.Info("connected", zap.String("url", wsURL))

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// writer: the snapshot request first, then queued updates.
	writeErr := make(chan error, 1)
	go func() {
		hello, _ := protocol.Encode(protocol.GetInitialStatus{})
		if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
			writeErr <- err
			return
		}
		for {
			select {
			case data := <-ws.outbound:
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					writeErr <- err
					return
				}
			case <-sessCtx.Done():
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				conn.Close()
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case werr := <-writeErr:
				return true, fmt.Errorf("write: %w", werr)
			default:
			}
			if ctx.Err() != nil {
				return true, nil
			}
			return true, fmt.Errorf("read: %w", err)
		}

		msg, err := protocol.ParseEnvelope(data)
		if err != nil {
			ws.log.Warn("ignoring server frame", zap.Error(err))
			continue
		}

		select {
		case ws.messages <- msg:
		case <-ctx.Done():
			return true, nil
		}
	}
}

func (ws *WSConn) setConnected(v bool) {
	ws.mu.Lock()
	ws.connected = v
	ws.mu.Unlock()
}

// BuildWSURL turns an http(s) server URL into the ws(s) board endpoint.
func BuildWSURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse server URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
