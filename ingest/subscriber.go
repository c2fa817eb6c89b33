// Package ingest delivers stream chunks from a WebSocket feed to the
// dispatcher. It owns the connection read loop only; reconnect policy is
// left to the caller.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/agentdeck/agentdeck/dispatch"
)

// ErrClosed is returned by Run after Close is called.
var ErrClosed = errors.New("ingest: subscriber closed")

const handshakeTimeout = 5 * time.Second

// Handler consumes decoded chunks. *dispatch.Dispatcher satisfies it.
type Handler interface {
	Handle(chunk dispatch.StreamChunk)
}

// Subscriber reads StreamChunk frames from one WebSocket connection and
// hands them to the handler in arrival order.
type Subscriber struct {
	conn    *websocket.Conn
	handler Handler
	closed  atomic.Bool
}

// Dial connects to a chunk feed at url.
func Dial(ctx context.Context, url string, h Handler) (*Subscriber, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Subscriber{conn: conn, handler: h}, nil
}

// Run reads frames until the connection drops, ctx is cancelled, or Close
// is called. Frames that do not decode as chunks are logged and skipped so
// one bad frame cannot stall the feed.
func (s *Subscriber) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.Close()
	})
	defer stop()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.closed.Load() {
				return ErrClosed
			}
			return fmt.Errorf("read chunk frame: %w", err)
		}

		var chunk dispatch.StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			slog.Warn("skipping undecodable chunk frame", "error", err)
			continue
		}
		if chunk.SessionID == "" {
			slog.Warn("skipping chunk frame without session id")
			continue
		}
		s.handler.Handle(chunk)
	}
}

// Close tears down the connection. Run returns ErrClosed.
func (s *Subscriber) Close() error {
	s.closed.Store(true)
	return s.conn.Close()
}
