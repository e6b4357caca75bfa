// Package client_state is the in-memory view one participant keeps of a
// session: the ordered card list, their own choices, and the per-card
// yes/no tallies. Vote events carry only the new choice, never the
// previous one, so the state remembers every user's last known choice per
// card and applies each event as a transition. That bookkeeping is what
// keeps the tallies right under self-echo, vote changes, and duplicate
// delivery.
package client_state

import (
	"sync"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
)

type voteKey struct {
	cardID uuid.UUID
	userID uuid.UUID
}

// State is rebuilt on every session entry and never persisted. A single
// participant owns it; the channel only feeds it derived facts.
type State struct {
	mu sync.RWMutex

	localUser uuid.UUID

	cards    []model.Card
	cardSeen map[uuid.UUID]bool

	ownVotes map[uuid.UUID]model.Choice
	tally    map[uuid.UUID]model.Tally

	// lastChoice tracks every participant, not just the local user. A vote
	// event is applied as a transition from this map's entry, which makes
	// repeated and echoed events no-ops and vote changes a -1/+1 move.
	lastChoice map[voteKey]model.Choice
}

func New(localUser uuid.UUID) *State {
	return &State{
		localUser:  localUser,
		cardSeen:   make(map[uuid.UUID]bool),
		ownVotes:   make(map[uuid.UUID]model.Choice),
		tally:      make(map[uuid.UUID]model.Tally),
		lastChoice: make(map[voteKey]model.Choice),
	}
}

// ApplyVote folds one observed vote into the tallies.
func (s *State) ApplyVote(cardID uuid.UUID, choice model.Choice, userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyVoteLocked(cardID, choice, userID)
}

func (s *State) applyVoteLocked(cardID uuid.UUID, choice model.Choice, userID uuid.UUID) {
	key := voteKey{cardID: cardID, userID: userID}
	tally := s.tally[cardID]

	previous, voted := s.lastChoice[key]
	switch {
	case !voted:
		tally = bump(tally, choice, 1)
	case previous != choice:
		tally = bump(tally, previous, -1)
		tally = bump(tally, choice, 1)
	default:
		// Identical resubmission or the echo of an already applied
		// optimistic update. Nothing to count.
	}

	s.tally[cardID] = tally
	s.lastChoice[key] = choice

	if userID == s.localUser {
		s.ownVotes[cardID] = choice
	}
}

func bump(t model.Tally, choice model.Choice, delta int) model.Tally {
	if choice {
		t.Yes += delta
	} else {
		t.No += delta
	}
	return t
}

// AddCard appends a card. Duplicates are ignored, so a broadcast racing a
// full refetch cannot produce the same card twice.
func (s *State) AddCard(card model.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cardSeen[card.ID] {
		return
	}
	s.cardSeen[card.ID] = true
	s.cards = append(s.cards, card)
}

// Rehydrate replaces everything with a fresh durable snapshot. This is the
// only place tallies are recomputed rather than adjusted; it runs on entry
// and after every reconnect, superseding whatever partial state incremental
// updates had built.
func (s *State) Rehydrate(cards []model.Card, votes []model.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards = make([]model.Card, 0, len(cards))
	s.cardSeen = make(map[uuid.UUID]bool, len(cards))
	s.ownVotes = make(map[uuid.UUID]model.Choice)
	s.tally = make(map[uuid.UUID]model.Tally)
	s.lastChoice = make(map[voteKey]model.Choice, len(votes))

	for _, card := range cards {
		if s.cardSeen[card.ID] {
			continue
		}
		s.cardSeen[card.ID] = true
		s.cards = append(s.cards, card)
	}

	for _, vote := range votes {
		s.applyVoteLocked(vote.CardID, vote.Choice, vote.UserID)
	}
}

// Snapshot returns a copy safe for rendering.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := Snapshot{
		Cards:    make([]model.Card, len(s.cards)),
		OwnVotes: make(map[uuid.UUID]model.Choice, len(s.ownVotes)),
		Tally:    make(map[uuid.UUID]model.Tally, len(s.tally)),
	}
	copy(snapshot.Cards, s.cards)
	for cardID, choice := range s.ownVotes {
		snapshot.OwnVotes[cardID] = choice
	}
	for cardID, tally := range s.tally {
		snapshot.Tally[cardID] = tally
	}
	return snapshot
}

// OwnVote reports the local user's current choice on a card, if any.
func (s *State) OwnVote(cardID uuid.UUID) (model.Choice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	choice, ok := s.ownVotes[cardID]
	return choice, ok
}

// TallyFor returns the aggregate counts for one card.
func (s *State) TallyFor(cardID uuid.UUID) model.Tally {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tally[cardID]
}

// Snapshot is a point-in-time copy of the participant's view.
type Snapshot struct {
	Cards    []model.Card
	OwnVotes map[uuid.UUID]model.Choice
	Tally    map[uuid.UUID]model.Tally
}
