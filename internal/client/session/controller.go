// Package client_session wires the client pieces together for one session
// visit: hydrate from the durable store, subscribe to the broadcast
// channel, map channel events onto the synchronization state, and map
// local vote actions onto the submission protocol. Orchestration only.
package client_session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	client_channel "github.com/avoronov/quorum/core/internal/client/channel"
	client_state "github.com/avoronov/quorum/core/internal/client/state"
	client_store "github.com/avoronov/quorum/core/internal/client/store"
	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
)

var (
	ErrSessionClosed = errors.New("session is closed")
	ErrTornDown      = errors.New("controller is torn down")
)

// BroadcastChannel is what the controller needs from the vote channel.
//
//go:generate mockery --name=BroadcastChannel --output=./mocks/channel --filename=channel.go
type BroadcastChannel interface {
	Connect(ctx context.Context)
	Events() <-chan client_channel.Event
	Opens() <-chan struct{}
	Send(event client_channel.Event) error
	Disconnect()
}

type Controller struct {
	store   client_store.Store
	channel BroadcastChannel
	state   *client_state.State

	user model.User

	mu       sync.RWMutex
	session  model.Session
	tornDown bool
	cancel   context.CancelFunc

	onChange func(client_state.Snapshot)
	logger   *slog.Logger

	done chan struct{}
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithOnChange registers a hook fired after every applied mutation, with a
// snapshot safe to render from any goroutine.
func WithOnChange(hook func(client_state.Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = hook
	}
}

func New(store client_store.Store, channel BroadcastChannel, user model.User, session model.Session, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		channel: channel,
		state:   client_state.New(user.ID),
		user:    user,
		session: session,
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enter hydrates the state from the durable store, then opens the channel
// and starts the event loop. Hydration strictly precedes subscription so
// incremental updates always land on a complete baseline.
func (c *Controller) Enter(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		cancel()
		return ErrTornDown
	}
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.hydrate(ctx); err != nil {
		cancel()
		return err
	}

	c.channel.Connect(ctx)
	go c.loop(ctx)

	c.notify()
	return nil
}

// Leave tears the visit down: stops the loop, disconnects the channel, and
// blocks any late callbacks from mutating the state. Idempotent.
func (c *Controller) Leave() {
	c.mu.Lock()
	alreadyDown := c.tornDown
	c.tornDown = true
	cancel := c.cancel
	c.mu.Unlock()

	if alreadyDown {
		return
	}
	if cancel != nil {
		cancel()
	}
	c.channel.Disconnect()
}

// SubmitVote runs the write path: durable upsert first, then best-effort
// broadcast, then the optimistic local update. A durable failure aborts
// the whole operation with no broadcast and no local change.
func (c *Controller) SubmitVote(ctx context.Context, cardID uuid.UUID, choice model.Choice) error {
	if c.torn() {
		return ErrTornDown
	}
	session := c.Session()
	if !session.Active {
		return ErrSessionClosed
	}

	existing, found, err := c.store.FindVote(ctx, session.AccessCode, cardID, c.user.ID)
	if err != nil {
		return err
	}

	if found {
		err = c.store.UpdateVote(ctx, session.AccessCode, existing.ID, choice)
	} else {
		_, err = c.store.InsertVote(ctx, session.AccessCode, cardID, c.user.ID, choice)
	}
	if err != nil {
		if errors.Is(err, client_store.ErrSessionClosed) {
			return ErrSessionClosed
		}
		return err
	}

	// Durable truth is in. The broadcast is best-effort: peers that miss
	// it converge on their next hydration, and our own echo is absorbed
	// by the transition rule.
	event := client_channel.NewVoteEvent(cardID, choice, c.user.ID)
	if err := c.channel.Send(event); err != nil {
		c.logger.Warn("vote broadcast dropped",
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
	}

	if c.torn() {
		return nil
	}
	c.state.ApplyVote(cardID, choice, c.user.ID)
	c.notify()
	return nil
}

// Snapshot returns the current derived view for rendering.
func (c *Controller) Snapshot() client_state.Snapshot {
	return c.state.Snapshot()
}

func (c *Controller) Session() model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Controller) User() model.User {
	return c.user
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.done)

	firstOpen := true
	for {
		select {
		case <-ctx.Done():
			return

		case <-c.channel.Opens():
			// Enter already hydrated before the first open. Every reopen
			// after that means a gap of missed events, so rebuild from
			// durable truth before resuming incremental updates.
			if firstOpen {
				firstOpen = false
				continue
			}
			if err := c.hydrate(ctx); err != nil {
				c.logger.Warn("rehydration after reconnect failed", slog.String("error", err.Error()))
				continue
			}
			c.notify()

		case event := <-c.channel.Events():
			c.apply(event)
		}
	}
}

func (c *Controller) apply(event client_channel.Event) {
	if c.torn() {
		return
	}

	switch event.Type {
	case client_channel.EventTypeVote:
		c.state.ApplyVote(event.CardID, event.Choice, event.UserID)

	case client_channel.EventTypeCardAdded:
		if event.Card == nil || event.Card.SessionID != c.Session().ID {
			return
		}
		c.state.AddCard(*event.Card)

	default:
		return
	}

	c.notify()
}

func (c *Controller) hydrate(ctx context.Context) error {
	code := c.Session().AccessCode

	session, err := c.store.SessionByCode(ctx, code)
	if err != nil {
		return err
	}
	cards, err := c.store.Cards(ctx, code)
	if err != nil {
		return err
	}
	votes, err := c.store.Votes(ctx, code)
	if err != nil {
		return err
	}

	// Reads may have completed after Leave; a torn-down state must not be
	// touched.
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return ErrTornDown
	}
	c.session = session
	c.mu.Unlock()

	c.state.Rehydrate(cards, votes)
	return nil
}

func (c *Controller) torn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tornDown
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.state.Snapshot())
}
