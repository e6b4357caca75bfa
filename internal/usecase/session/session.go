package usecase_session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/google/uuid"
)

var (
	ErrCodeConflict        = errors.New("access code conflict")
	ErrSessionsUnavailable = errors.New("no available access codes")
	ErrSessionClosed       = errors.New("session is closed")
	ErrInternal            = errors.New("internal error")
	ErrResourceNotFound    = errors.New("no such resource")
)

//go:generate mockery --name=SessionRepository --output=./mocks/session/repository --filename=repository.go
type SessionRepository interface {
	Create(ctx context.Context, session model.Session) error
	ByID(ctx context.Context, id model.SessionID) (model.Session, error)
	ByAccessCode(ctx context.Context, code string) (model.Session, error)
	Close(ctx context.Context, code string, closedAt time.Time) error
	AddUser(ctx context.Context, user model.User) error
	Users(ctx context.Context, sessionID model.SessionID) ([]model.User, error)
}

// CodeCache fronts the repository for access-code resolution. A miss is
// reported as an empty string, not an error.
//
//go:generate mockery --name=CodeCache --output=./mocks/session/cache --filename=cache.go
type CodeCache interface {
	Set(key string, value string, ttl time.Duration) error
	Get(key string) (string, error)
}

const cacheTTL = 30 * time.Minute

type Usecase struct {
	repository SessionRepository
	cache      CodeCache
}

func New(repository SessionRepository, cache CodeCache) *Usecase {
	return &Usecase{
		repository: repository,
		cache:      cache,
	}
}

// Assuming that codes can conflict.
// Retrying...
func (u *Usecase) Create(ctx context.Context) (model.Session, error) {
	var retries = 3
	for retries > 0 {
		session := model.Session{
			ID:         uuid.New(),
			AccessCode: u.buildAccessCode(),
			Active:     true,
			CreatedAt:  time.Now().UTC(),
		}
		if err := u.repository.Create(ctx, session); err != nil {
			if errors.Is(err, ErrCodeConflict) {
				retries--
				continue
			}
			return model.Session{}, errors.Join(ErrInternal, err)
		}
		return session, nil
	}
	return model.Session{}, ErrSessionsUnavailable
}

func (u *Usecase) buildAccessCode() string {
	var builder strings.Builder
	builder.Grow(model.AccessCodeLen)

	for range model.AccessCodeLen {
		builder.WriteByte(byte(rand.Intn(10)) + '0')
	}

	return builder.String()
}

// Resolve maps an access code to its session, going through the cache
// first so hot sessions skip the database on every request.
func (u *Usecase) Resolve(ctx context.Context, code string) (model.Session, error) {
	if u.cache != nil {
		if cached, err := u.cache.Get(code); err == nil && cached != "" {
			if id, err := uuid.Parse(cached); err == nil {
				session, err := u.repository.ByID(ctx, id)
				if err == nil {
					return session, nil
				}
			}
		}
	}

	session, err := u.repository.ByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Session{}, ErrResourceNotFound
		}
		return model.Session{}, errors.Join(ErrInternal, err)
	}

	if u.cache != nil {
		_ = u.cache.Set(code, session.ID.String(), cacheTTL)
	}

	return session, nil
}

func (u *Usecase) Join(ctx context.Context, code string, name string, isAdmin bool) (model.User, error) {
	session, err := u.Resolve(ctx, code)
	if err != nil {
		return model.User{}, err
	}
	if !session.Active {
		return model.User{}, ErrSessionClosed
	}

	user := model.User{
		ID:        uuid.New(),
		Name:      name,
		IsAdmin:   isAdmin,
		SessionID: session.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := u.repository.AddUser(ctx, user); err != nil {
		return model.User{}, errors.Join(ErrInternal, err)
	}

	return user, nil
}

func (u *Usecase) Close(ctx context.Context, code string) error {
	if err := u.repository.Close(ctx, code, time.Now().UTC()); err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return ErrResourceNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}

func (u *Usecase) Users(ctx context.Context, code string) ([]model.User, error) {
	session, err := u.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	users, err := u.repository.Users(ctx, session.ID)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return users, nil
}
