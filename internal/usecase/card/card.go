package usecase_card

import (
	"context"
	"errors"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	"github.com/google/uuid"
)

var (
	ErrUnableToAddCard = errors.New("unable to add card")
	ErrUnableToList    = errors.New("unable to list cards")
)

//go:generate mockery --name=CardRepository --output=./mocks/card/repository --filename=repository.go
type CardRepository interface {
	Create(ctx context.Context, card model.Card) error
	BySession(ctx context.Context, sessionID model.SessionID) ([]model.Card, error)
}

type SessionResolver interface {
	Resolve(ctx context.Context, code string) (model.Session, error)
}

type Usecase struct {
	repository CardRepository
	sessions   SessionResolver
}

func New(repository CardRepository, sessions SessionResolver) *Usecase {
	return &Usecase{
		repository: repository,
		sessions:   sessions,
	}
}

// Add persists a new card for the session behind the access code. The
// caller is expected to broadcast the resulting card to live participants.
func (u *Usecase) Add(ctx context.Context, code string, title string, description string) (model.Card, error) {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return model.Card{}, err
	}
	if !session.Active {
		return model.Card{}, usecase_session.ErrSessionClosed
	}

	card := model.Card{
		ID:          uuid.New(),
		SessionID:   session.ID,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := u.repository.Create(ctx, card); err != nil {
		return model.Card{}, errors.Join(ErrUnableToAddCard, err)
	}

	return card, nil
}

// List returns the session's cards in creation order.
func (u *Usecase) List(ctx context.Context, code string) ([]model.Card, error) {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	cards, err := u.repository.BySession(ctx, session.ID)
	if err != nil {
		return nil, errors.Join(ErrUnableToList, err)
	}
	return cards, nil
}
