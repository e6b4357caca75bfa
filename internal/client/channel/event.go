package client_channel

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
)

type EventType string

const (
	EventTypeVote      EventType = "vote"
	EventTypeCardAdded EventType = "card_added"
)

var ErrMalformedEvent = errors.New("malformed event")

// Event is one decoded broadcast frame. Exactly one of the payload fields
// is set, matching Type.
type Event struct {
	Type EventType

	// Vote payload
	CardID uuid.UUID
	Choice model.Choice
	UserID uuid.UUID

	// Card payload
	Card *model.Card
}

func NewVoteEvent(cardID uuid.UUID, choice model.Choice, userID uuid.UUID) Event {
	return Event{
		Type:   EventTypeVote,
		CardID: cardID,
		Choice: choice,
		UserID: userID,
	}
}

type voteFrame struct {
	Type   string `json:"type"`
	CardID string `json:"card_id"`
	Vote   *bool  `json:"vote"`
	UserID string `json:"user_id"`
}

type cardFrame struct {
	Type string      `json:"type"`
	Card cardPayload `json:"card"`
}

type cardPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	SessionID   string `json:"session_id"`
}

// Decode parses a raw broadcast frame. Frames of unknown type or with a
// broken payload yield ErrMalformedEvent; the caller skips them.
func Decode(frame []byte) (Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}

	switch EventType(env.Type) {
	case EventTypeVote:
		return decodeVote(frame)
	case EventTypeCardAdded:
		return decodeCard(frame)
	default:
		return Event{}, ErrMalformedEvent
	}
}

func decodeVote(frame []byte) (Event, error) {
	var f voteFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	if f.Vote == nil {
		return Event{}, ErrMalformedEvent
	}

	cardID, err := uuid.Parse(f.CardID)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	userID, err := uuid.Parse(f.UserID)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}

	return NewVoteEvent(cardID, *f.Vote, userID), nil
}

func decodeCard(frame []byte) (Event, error) {
	var f cardFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}

	cardID, err := uuid.Parse(f.Card.ID)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	sessionID, err := uuid.Parse(f.Card.SessionID)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, f.Card.CreatedAt)
	if err != nil {
		return Event{}, errors.Join(ErrMalformedEvent, err)
	}

	return Event{
		Type: EventTypeCardAdded,
		Card: &model.Card{
			ID:          cardID,
			SessionID:   sessionID,
			Title:       f.Card.Title,
			Description: f.Card.Description,
			CreatedAt:   createdAt,
		},
	}, nil
}

// Encode renders an event into its JSON wire frame.
func Encode(event Event) ([]byte, error) {
	switch event.Type {
	case EventTypeVote:
		choice := event.Choice
		return json.Marshal(voteFrame{
			Type:   string(EventTypeVote),
			CardID: event.CardID.String(),
			Vote:   &choice,
			UserID: event.UserID.String(),
		})
	case EventTypeCardAdded:
		if event.Card == nil {
			return nil, ErrMalformedEvent
		}
		return json.Marshal(cardFrame{
			Type: string(EventTypeCardAdded),
			Card: cardPayload{
				ID:          event.Card.ID.String(),
				Title:       event.Card.Title,
				Description: event.Card.Description,
				CreatedAt:   event.Card.CreatedAt.Format(time.RFC3339Nano),
				SessionID:   event.Card.SessionID.String(),
			},
		})
	default:
		return nil, ErrMalformedEvent
	}
}
