// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channel

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection constants.
const (
	// dialTimeout bounds the WebSocket handshake.
	dialTimeout = 10 * time.Second

	// writeTimeout bounds a single outbound frame write.
	writeTimeout = 10 * time.Second

	// eventBufferSize is the inbound event channel capacity. Chunk events
	// arrive in bursts; the buffer absorbs them between UI frames.
	eventBufferSize = 64
)

// Error variables.
var (
	// ErrNotOpen indicates a send was attempted on a closed connection.
	ErrNotOpen = errors.New("connection not open")
)

// connGen hands out generation numbers across all connections ever dialed
// by this process. Generations identify a channel *instance*, not a session
// id: a session closed and reopened gets a new generation.
var connGen atomic.Uint64

// =============================================================================
// CONNECTION
// =============================================================================

// Conn is one live duplex channel bound to a single session.
type Conn struct {
	sessionID string
	gen       uint64
	ws        *websocket.Conn
	events    chan Event
	done      chan struct{}
	log       *zap.Logger

	closeOnce sync.Once
	closed    atomic.Bool
}

// Dial opens the WebSocket for the given session. baseURL is the backend
// HTTP base (http:// or https://); the channel lives at /ws/{session_id}.
func Dial(ctx context.Context, baseURL, sessionID string, log *zap.Logger) (*Conn, error) {
	if log == nil {
		log = zap.NewNop()
	}

	wsURL, err := websocketURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	ws, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	if resp != nil {
		resp.Body.Close()
	}

	c := &Conn{
		sessionID: sessionID,
		gen:       connGen.Add(1),
		ws:        ws,
		events:    make(chan Event, eventBufferSize),
		done:      make(chan struct{}),
		log:       log.With(zap.String("session", sessionID)),
	}

	go c.readLoop()

	c.log.Info("channel opened", zap.Uint64("gen", c.gen))
	return c, nil
}

// websocketURL derives the channel URL from the HTTP base URL.
func websocketURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.New("unsupported scheme: " + u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + sessionID
	return u.String(), nil
}

// SessionID returns the session this connection is bound to.
func (c *Conn) SessionID() string {
	return c.sessionID
}

// Gen returns this connection instance's generation number.
func (c *Conn) Gen() uint64 {
	return c.gen
}

// Open reports whether the connection is still usable for sends.
func (c *Conn) Open() bool {
	return !c.closed.Load()
}

// Events returns the inbound event stream. The channel is closed when the
// connection dies or Close is called.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Send writes a user message envelope. Returns ErrNotOpen after Close or
// after the read loop has observed a dead socket.
func (c *Conn) Send(msg OutboundMessage) error {
	if c.closed.Load() {
		return ErrNotOpen
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteJSON(msg); err != nil {
		c.Close()
		return err
	}
	return nil
}

// Close tears the connection down unconditionally. There is no drain or
// flush wait; in-flight server work for this channel is simply abandoned
// and its output discarded by the generation check upstream.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.ws.Close()
		c.log.Info("channel closed", zap.Uint64("gen", c.gen))
	})
}

// readLoop pumps inbound frames into the event channel until the socket
// dies. It owns closing the events channel.
func (c *Conn) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			// Expected after Close; anything else is an unexpected drop
			// that the consumer observes as channel closure.
			if !c.closed.Load() {
				c.log.Warn("channel read failed", zap.Error(err))
				c.closed.Store(true)
			}
			return
		}

		ev, err := decodeEvent(data)
		if err != nil {
			c.log.Warn("dropping undecodable event", zap.Error(err))
			continue
		}
		if !known(ev.Type) {
			// Forward compatibility: log and ignore.
			c.log.Info("ignoring unrecognized event type", zap.String("type", ev.Type))
			continue
		}

		// The consumer may have walked away without draining; a plain
		// send on a full buffer would pin this goroutine forever.
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}
