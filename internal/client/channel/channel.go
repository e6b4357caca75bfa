// Package client_channel maintains one duplex broadcast connection per
// session. It redials with backoff on any drop, so the rest of the client
// never sees a transport failure; it only sees a gap, which the controller
// closes with a forced rehydration on every reopen signal.
package client_channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/gorilla/websocket"
)

type Status int32

const (
	StatusConnecting Status = iota
	StatusOpen
	StatusClosed
)

var ErrNotConnected = errors.New("channel is not connected")

const (
	backoffBase = 250 * time.Millisecond
	backoffCap  = 30 * time.Second

	eventBufferSize = 64
)

type Channel struct {
	url    string
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	status Status

	events chan Event
	opens  chan struct{}
	done   chan struct{}

	closeOnce sync.Once
}

type Option func(*Channel)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// New prepares a channel for one session. Nothing is dialed until Connect.
func New(wsBaseURL string, sessionID model.SessionID, opts ...Option) *Channel {
	c := &Channel{
		url:    fmt.Sprintf("%s/api/v1/ws/sessions/%s", wsBaseURL, sessionID),
		logger: slog.Default(),
		status: StatusConnecting,
		events: make(chan Event, eventBufferSize),
		opens:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect starts the dial/read loop. It returns immediately; connection
// state is observable via Status and Opens.
func (c *Channel) Connect(ctx context.Context) {
	go c.run(ctx)
}

// Events delivers decoded inbound frames. Malformed frames are logged and
// skipped, never delivered.
func (c *Channel) Events() <-chan Event {
	return c.events
}

// Opens signals once per successful (re)dial. The controller rehydrates on
// every signal after the first to close the missed-event gap.
func (c *Channel) Opens() <-chan struct{} {
	return c.opens
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Send publishes best-effort: if the socket is not open the event is
// dropped and ErrNotConnected returned. No queueing, no delivery guarantee.
func (c *Channel) Send(event Event) error {
	frame, err := Encode(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusOpen || c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// Disconnect terminates the connection and stops the redial loop. Safe to
// call at any time, any number of times.
func (c *Channel) Disconnect() {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = StatusClosed
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Channel) run(ctx context.Context) {
	attempt := 0

	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if c.stopped(ctx) {
				return
			}
			attempt++
			c.logger.Warn("channel dial failed, retrying",
				slog.String("url", c.url),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			if !c.sleep(ctx, backoff(attempt)) {
				return
			}
			continue
		}

		attempt = 0
		if !c.adopt(conn) {
			conn.Close()
			return
		}

		select {
		case c.opens <- struct{}{}:
		default:
		}

		c.readLoop(ctx, conn)
		if c.stopped(ctx) {
			return
		}

		c.mu.Lock()
		c.conn = nil
		c.status = StatusConnecting
		c.mu.Unlock()

		c.logger.Info("channel dropped, reconnecting", slog.String("url", c.url))
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
	return conn, err
}

func (c *Channel) adopt(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusClosed {
		return false
	}
	c.conn = conn
	c.status = StatusOpen
	return true
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}

		event, err := Decode(frame)
		if err != nil {
			c.logger.Warn("skipping malformed frame", slog.String("error", err.Error()))
			continue
		}

		select {
		case c.events <- event:
		case <-c.done:
			conn.Close()
			return
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (c *Channel) stopped(ctx context.Context) bool {
	select {
	case <-c.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Channel) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func backoff(attempt int) time.Duration {
	d := backoffBase << min(attempt-1, 10)
	if d > backoffCap {
		return backoffCap
	}
	return d
}
