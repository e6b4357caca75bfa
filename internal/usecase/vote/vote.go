package usecase_vote

import (
	"context"
	"errors"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	"github.com/google/uuid"
)

var (
	ErrUnableToSaveVote = errors.New("unable to save vote")
	ErrUnableToList     = errors.New("unable to list votes")
)

//go:generate mockery --name=VoteRepository --output=./mocks/vote/repository --filename=repository.go
type VoteRepository interface {
	Find(ctx context.Context, sessionID model.SessionID, cardID, userID uuid.UUID) (model.Vote, error)
	Insert(ctx context.Context, vote model.Vote) error
	UpdateChoice(ctx context.Context, voteID uuid.UUID, choice model.Choice) error
	BySession(ctx context.Context, sessionID model.SessionID) ([]model.Vote, error)
	ByUser(ctx context.Context, sessionID model.SessionID, userID uuid.UUID) ([]model.Vote, error)
}

type SessionResolver interface {
	Resolve(ctx context.Context, code string) (model.Session, error)
}

type Usecase struct {
	repository VoteRepository
	sessions   SessionResolver
}

func New(repository VoteRepository, sessions SessionResolver) *Usecase {
	return &Usecase{
		repository: repository,
		sessions:   sessions,
	}
}

// Find is the point query of the store contract: the current vote row for
// (session, card, user), or ErrResourceNotFound.
func (u *Usecase) Find(ctx context.Context, code string, cardID, userID uuid.UUID) (model.Vote, error) {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return model.Vote{}, err
	}

	vote, err := u.repository.Find(ctx, session.ID, cardID, userID)
	if err != nil {
		if errors.Is(err, usecase_session.ErrResourceNotFound) {
			return model.Vote{}, usecase_session.ErrResourceNotFound
		}
		return model.Vote{}, errors.Join(usecase_session.ErrInternal, err)
	}
	return vote, nil
}

// Insert stores a first-time vote. Closed sessions accept no writes.
func (u *Usecase) Insert(ctx context.Context, code string, cardID, userID uuid.UUID, choice model.Choice) (model.Vote, error) {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return model.Vote{}, err
	}
	if !session.Active {
		return model.Vote{}, usecase_session.ErrSessionClosed
	}

	vote := model.Vote{
		ID:        uuid.New(),
		CardID:    cardID,
		UserID:    userID,
		SessionID: session.ID,
		Choice:    choice,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.repository.Insert(ctx, vote); err != nil {
		return model.Vote{}, errors.Join(ErrUnableToSaveVote, err)
	}
	return vote, nil
}

// UpdateChoice rewrites an existing vote in place, preserving its identity.
func (u *Usecase) UpdateChoice(ctx context.Context, code string, voteID uuid.UUID, choice model.Choice) error {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return err
	}
	if !session.Active {
		return usecase_session.ErrSessionClosed
	}

	if err := u.repository.UpdateChoice(ctx, voteID, choice); err != nil {
		if errors.Is(err, usecase_session.ErrResourceNotFound) {
			return usecase_session.ErrResourceNotFound
		}
		return errors.Join(ErrUnableToSaveVote, err)
	}
	return nil
}

// Votes returns every vote of the session, optionally narrowed to one user.
func (u *Usecase) Votes(ctx context.Context, code string, userID *uuid.UUID) ([]model.Vote, error) {
	session, err := u.sessions.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	var votes []model.Vote
	if userID != nil {
		votes, err = u.repository.ByUser(ctx, session.ID, *userID)
	} else {
		votes, err = u.repository.BySession(ctx, session.ID)
	}
	if err != nil {
		return nil, errors.Join(ErrUnableToList, err)
	}
	return votes, nil
}
