package client_state

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"

	"github.com/avoronov/quorum/core/internal/model"
)

type StateUnitSuite struct {
	suite.Suite
}

func validCard(sessionID uuid.UUID, title string) model.Card {
	return model.Card{
		ID:        uuid.New(),
		SessionID: sessionID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

func validVote(cardID, userID, sessionID uuid.UUID, choice model.Choice) model.Vote {
	return model.Vote{
		ID:        uuid.New(),
		CardID:    cardID,
		UserID:    userID,
		SessionID: sessionID,
		Choice:    choice,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *StateUnitSuite) TestFirstVoteIncrementsTally(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()

	state.ApplyVote(cardID, model.ChoiceYes, localUser)

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, state.TallyFor(cardID))

	choice, ok := state.OwnVote(cardID)
	assert.True(t, ok)
	assert.Equal(t, model.ChoiceYes, choice)
}

func (s *StateUnitSuite) TestIdenticalResubmissionIsNoOp(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()
	voter := uuid.New()

	state.ApplyVote(cardID, model.ChoiceYes, voter)
	state.ApplyVote(cardID, model.ChoiceYes, voter)
	state.ApplyVote(cardID, model.ChoiceYes, voter)

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, state.TallyFor(cardID))
}

func (s *StateUnitSuite) TestVoteChangeMovesOneCount(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()
	voter := uuid.New()

	state.ApplyVote(cardID, model.ChoiceYes, voter)
	state.ApplyVote(cardID, model.ChoiceNo, voter)

	tally := state.TallyFor(cardID)
	assert.Equal(t, model.Tally{Yes: 0, No: 1}, tally)
	assert.Equal(t, 1, tally.Total())
}

func (s *StateUnitSuite) TestSelfEchoDoesNotDoubleCount(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()

	// Optimistic local update, then the broadcast echo of the same vote.
	state.ApplyVote(cardID, model.ChoiceYes, localUser)
	state.ApplyVote(cardID, model.ChoiceYes, localUser)

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, state.TallyFor(cardID))
}

func (s *StateUnitSuite) TestOwnVotesTrackOnlyLocalUser(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()
	peer := uuid.New()

	state.ApplyVote(cardID, model.ChoiceNo, peer)

	_, ok := state.OwnVote(cardID)
	assert.False(t, ok)
	assert.Equal(t, model.Tally{Yes: 0, No: 1}, state.TallyFor(cardID))
}

func (s *StateUnitSuite) TestCardOrderingAndDedup(t provider.T) {
	sessionID := uuid.New()
	state := New(uuid.New())

	cardA := validCard(sessionID, "A")
	cardB := validCard(sessionID, "B")
	cardC := validCard(sessionID, "C")

	state.AddCard(cardA)
	state.AddCard(cardB)
	state.AddCard(cardC)
	state.AddCard(cardB) // duplicate broadcast racing a refetch

	snapshot := state.Snapshot()
	assert.Len(t, snapshot.Cards, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{
		snapshot.Cards[0].Title,
		snapshot.Cards[1].Title,
		snapshot.Cards[2].Title,
	})
}

func (s *StateUnitSuite) TestRehydrationSupersedesDrift(t provider.T) {
	sessionID := uuid.New()
	localUser := uuid.New()
	state := New(localUser)

	card := validCard(sessionID, "proposal")

	// Drifted incremental state: counts that durable truth does not back.
	state.AddCard(card)
	for range 5 {
		state.ApplyVote(card.ID, model.ChoiceYes, uuid.New())
	}
	assert.Equal(t, 5, state.TallyFor(card.ID).Yes)

	// Durable snapshot: 4 votes, 3 of them yes, one of them ours.
	votes := []model.Vote{
		validVote(card.ID, localUser, sessionID, model.ChoiceYes),
		validVote(card.ID, uuid.New(), sessionID, model.ChoiceYes),
		validVote(card.ID, uuid.New(), sessionID, model.ChoiceYes),
		validVote(card.ID, uuid.New(), sessionID, model.ChoiceNo),
	}
	state.Rehydrate([]model.Card{card}, votes)

	assert.Equal(t, model.Tally{Yes: 3, No: 1}, state.TallyFor(card.ID))

	choice, ok := state.OwnVote(card.ID)
	assert.True(t, ok)
	assert.Equal(t, model.ChoiceYes, choice)

	snapshot := state.Snapshot()
	assert.Len(t, snapshot.Cards, 1)
}

func (s *StateUnitSuite) TestRehydrationRestoresTransitionBaseline(t provider.T) {
	sessionID := uuid.New()
	localUser := uuid.New()
	state := New(localUser)

	card := validCard(sessionID, "proposal")
	voter := uuid.New()

	state.Rehydrate([]model.Card{card}, []model.Vote{
		validVote(card.ID, voter, sessionID, model.ChoiceYes),
	})

	// A vote change arriving after rehydration must be applied as a
	// transition from the hydrated choice, not as a first vote.
	state.ApplyVote(card.ID, model.ChoiceNo, voter)

	assert.Equal(t, model.Tally{Yes: 0, No: 1}, state.TallyFor(card.ID))
}

func (s *StateUnitSuite) TestSnapshotIsACopy(t provider.T) {
	localUser := uuid.New()
	state := New(localUser)
	cardID := uuid.New()

	state.ApplyVote(cardID, model.ChoiceYes, localUser)

	snapshot := state.Snapshot()
	snapshot.Tally[cardID] = model.Tally{Yes: 99, No: 99}
	snapshot.OwnVotes[cardID] = model.ChoiceNo

	assert.Equal(t, model.Tally{Yes: 1, No: 0}, state.TallyFor(cardID))

	choice, _ := state.OwnVote(cardID)
	assert.Equal(t, model.ChoiceYes, choice)
}

func TestStateUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(StateUnitSuite))
}
