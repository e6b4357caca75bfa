package client_session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	client_channel "github.com/avoronov/quorum/core/internal/client/channel"
	store_mocks "github.com/avoronov/quorum/core/internal/client/store/mocks/store"
	"github.com/avoronov/quorum/core/internal/model"
)

type ControllerUnitSuite struct {
	suite.Suite
}

// fakeChannel is an in-memory BroadcastChannel the tests drive directly.
type fakeChannel struct {
	mu sync.Mutex

	events chan client_channel.Event
	opens  chan struct{}

	sent        []client_channel.Event
	sendErr     error
	disconnects int
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		events: make(chan client_channel.Event, 16),
		opens:  make(chan struct{}, 4),
	}
}

func (f *fakeChannel) Connect(_ context.Context) {
	f.opens <- struct{}{}
}

func (f *fakeChannel) Events() <-chan client_channel.Event { return f.events }
func (f *fakeChannel) Opens() <-chan struct{}              { return f.opens }

func (f *fakeChannel) Send(event client_channel.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, event)
	return nil
}

func (f *fakeChannel) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
}

func (f *fakeChannel) sentEvents() []client_channel.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client_channel.Event{}, f.sent...)
}

type resources struct {
	store      *store_mocks.Store
	channel    *fakeChannel
	controller *Controller
	session    model.Session
	user       model.User
	card       model.Card
	ctx        context.Context
}

func initResources(t provider.T) *resources {
	sessionID := uuid.New()
	session := model.Session{
		ID:         sessionID,
		AccessCode: "123456",
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	user := model.User{
		ID:        uuid.New(),
		Name:      "u1",
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}
	card := model.Card{
		ID:        uuid.New(),
		SessionID: sessionID,
		Title:     "proposal",
		CreatedAt: time.Now().UTC(),
	}

	store := store_mocks.NewStore(t)
	channel := newFakeChannel()
	controller := New(store, channel, user, session)

	return &resources{
		store:      store,
		channel:    channel,
		controller: controller,
		session:    session,
		user:       user,
		card:       card,
		ctx:        context.Background(),
	}
}

func (r *resources) expectHydration(votes []model.Vote) {
	r.store.On("SessionByCode", mock.Anything, r.session.AccessCode).Return(r.session, nil).Once()
	r.store.On("Cards", mock.Anything, r.session.AccessCode).Return([]model.Card{r.card}, nil).Once()
	r.store.On("Votes", mock.Anything, r.session.AccessCode).Return(votes, nil).Once()
}

func (r *resources) enter(t provider.T) {
	r.expectHydration(nil)
	assert.NoError(t, r.controller.Enter(r.ctx))
	t.Cleanup(r.controller.Leave)
}

func tallyOf(c *Controller, cardID uuid.UUID) model.Tally {
	return c.Snapshot().Tally[cardID]
}

func eventually(t provider.T, cond func() bool) {
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func (s *ControllerUnitSuite) TestEnterHydratesBeforeSubscribing(t provider.T) {
	r := initResources(t)

	peer := uuid.New()
	r.expectHydration([]model.Vote{
		{ID: uuid.New(), CardID: r.card.ID, UserID: peer, SessionID: r.session.ID, Choice: model.ChoiceYes},
	})

	assert.NoError(t, r.controller.Enter(r.ctx))
	t.Cleanup(r.controller.Leave)

	snapshot := r.controller.Snapshot()
	assert.Len(t, snapshot.Cards, 1)
	assert.Equal(t, model.Tally{Yes: 1, No: 0}, snapshot.Tally[r.card.ID])
}

func (s *ControllerUnitSuite) TestSubmitVoteInsertsWhenAbsent(t provider.T) {
	r := initResources(t)
	r.enter(t)

	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(model.Vote{}, false, nil).Once()
	r.store.On("InsertVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID, model.ChoiceYes).
		Return(model.Vote{ID: uuid.New()}, nil).Once()

	assert.NoError(t, r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes))

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, tallyOf(r.controller, r.card.ID))

	sent := r.channel.sentEvents()
	assert.Len(t, sent, 1)
	assert.Equal(t, client_channel.EventTypeVote, sent[0].Type)
	assert.Equal(t, r.user.ID, sent[0].UserID)
}

func (s *ControllerUnitSuite) TestSubmitVoteUpdatesInPlace(t provider.T) {
	r := initResources(t)
	r.enter(t)

	existing := model.Vote{ID: uuid.New(), CardID: r.card.ID, UserID: r.user.ID, Choice: model.ChoiceYes}
	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(existing, true, nil).Once()
	r.store.On("UpdateVote", mock.Anything, r.session.AccessCode, existing.ID, model.ChoiceNo).
		Return(nil).Once()

	assert.NoError(t, r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceNo))
	assert.Equal(t, model.Tally{Yes: 0, No: 1}, tallyOf(r.controller, r.card.ID))
}

func (s *ControllerUnitSuite) TestDurableFailureLeavesStateUntouched(t provider.T) {
	r := initResources(t)
	r.enter(t)

	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(model.Vote{}, false, nil).Once()
	r.store.On("InsertVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID, model.ChoiceYes).
		Return(model.Vote{}, errors.New("store unreachable")).Once()

	err := r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes)
	assert.Error(t, err)

	assert.Empty(t, r.channel.sentEvents())
	assert.Equal(t, model.Tally{}, tallyOf(r.controller, r.card.ID))
	_, voted := r.controller.Snapshot().OwnVotes[r.card.ID]
	assert.False(t, voted)
}

func (s *ControllerUnitSuite) TestSelfEchoIsNeutral(t provider.T) {
	r := initResources(t)
	r.enter(t)

	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(model.Vote{}, false, nil).Once()
	r.store.On("InsertVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID, model.ChoiceYes).
		Return(model.Vote{ID: uuid.New()}, nil).Once()

	assert.NoError(t, r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes))

	// The relay echoes our own vote back.
	r.channel.events <- client_channel.NewVoteEvent(r.card.ID, model.ChoiceYes, r.user.ID)

	// Give the loop a moment to apply the echo, then assert it changed
	// nothing.
	peer := uuid.New()
	r.channel.events <- client_channel.NewVoteEvent(r.card.ID, model.ChoiceNo, peer)
	eventually(t, func() bool {
		return tallyOf(r.controller, r.card.ID).No == 1
	})

	assert.Equal(t, model.Tally{Yes: 1, No: 1}, tallyOf(r.controller, r.card.ID))
}

func (s *ControllerUnitSuite) TestTwoUserScenario(t provider.T) {
	r := initResources(t)
	r.enter(t)

	u2 := uuid.New()

	// u1 votes yes.
	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(model.Vote{}, false, nil).Once()
	insertedID := uuid.New()
	r.store.On("InsertVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID, model.ChoiceYes).
		Return(model.Vote{ID: insertedID}, nil).Once()
	assert.NoError(t, r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes))

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, tallyOf(r.controller, r.card.ID))
	assert.Equal(t, model.ChoiceYes, r.controller.Snapshot().OwnVotes[r.card.ID])

	// u2 votes no; we observe it via the channel.
	r.channel.events <- client_channel.NewVoteEvent(r.card.ID, model.ChoiceNo, u2)
	eventually(t, func() bool {
		return tallyOf(r.controller, r.card.ID) == model.Tally{Yes: 1, No: 1}
	})

	// u1 changes to no.
	r.store.On("FindVote", mock.Anything, r.session.AccessCode, r.card.ID, r.user.ID).
		Return(model.Vote{ID: insertedID, CardID: r.card.ID, UserID: r.user.ID, Choice: model.ChoiceYes}, true, nil).Once()
	r.store.On("UpdateVote", mock.Anything, r.session.AccessCode, insertedID, model.ChoiceNo).
		Return(nil).Once()
	assert.NoError(t, r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceNo))

	assert.Equal(t, model.Tally{Yes: 0, No: 2}, tallyOf(r.controller, r.card.ID))
	assert.Equal(t, model.ChoiceNo, r.controller.Snapshot().OwnVotes[r.card.ID])
}

func (s *ControllerUnitSuite) TestCardAddedAppendsAndDedupes(t provider.T) {
	r := initResources(t)
	r.enter(t)

	newCard := model.Card{
		ID:        uuid.New(),
		SessionID: r.session.ID,
		Title:     "late card",
		CreatedAt: time.Now().UTC(),
	}
	foreignCard := model.Card{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Title:     "other session",
		CreatedAt: time.Now().UTC(),
	}

	r.channel.events <- client_channel.Event{Type: client_channel.EventTypeCardAdded, Card: &newCard}
	r.channel.events <- client_channel.Event{Type: client_channel.EventTypeCardAdded, Card: &newCard}
	r.channel.events <- client_channel.Event{Type: client_channel.EventTypeCardAdded, Card: &foreignCard}

	eventually(t, func() bool {
		return len(r.controller.Snapshot().Cards) == 2
	})

	snapshot := r.controller.Snapshot()
	assert.Equal(t, "proposal", snapshot.Cards[0].Title)
	assert.Equal(t, "late card", snapshot.Cards[1].Title)
}

func (s *ControllerUnitSuite) TestReopenForcesRehydration(t provider.T) {
	r := initResources(t)
	r.enter(t)

	// The relay dropped and came back; durable truth moved meanwhile.
	peer := uuid.New()
	r.expectHydration([]model.Vote{
		{ID: uuid.New(), CardID: r.card.ID, UserID: peer, SessionID: r.session.ID, Choice: model.ChoiceNo},
	})
	r.channel.opens <- struct{}{}

	eventually(t, func() bool {
		return tallyOf(r.controller, r.card.ID) == model.Tally{Yes: 0, No: 1}
	})
}

func (s *ControllerUnitSuite) TestSubmitOnClosedSessionRejected(t provider.T) {
	r := initResources(t)
	r.session.Active = false
	r.controller = New(r.store, r.channel, r.user, r.session)

	err := r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, r.channel.sentEvents())
}

func (s *ControllerUnitSuite) TestLeaveIsIdempotentAndBlocksLateWork(t provider.T) {
	r := initResources(t)
	r.enter(t)

	r.controller.Leave()
	r.controller.Leave()

	r.channel.mu.Lock()
	disconnects := r.channel.disconnects
	r.channel.mu.Unlock()
	assert.Equal(t, 1, disconnects)

	err := r.controller.SubmitVote(r.ctx, r.card.ID, model.ChoiceYes)
	assert.ErrorIs(t, err, ErrTornDown)

	err = r.controller.Enter(r.ctx)
	assert.ErrorIs(t, err, ErrTornDown)
}

func TestControllerUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(ControllerUnitSuite))
}
