//go:build integration

package integrationtest

import (
	"context"
	"testing"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra_pg_init "github.com/avoronov/quorum/core/internal/infra/postgres/init"
	infra_postgres_card "github.com/avoronov/quorum/core/internal/infra/postgres/card"
	infra_postgres_session "github.com/avoronov/quorum/core/internal/infra/postgres/session"
	infra_postgres_vote "github.com/avoronov/quorum/core/internal/infra/postgres/vote"
	infra_accesscode_cache "github.com/avoronov/quorum/core/internal/infra/redis/accesscode"
	infra_redis_init "github.com/avoronov/quorum/core/internal/infra/redis/init"
	"github.com/avoronov/quorum/core/internal/model"
	usecase_card "github.com/avoronov/quorum/core/internal/usecase/card"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	usecase_vote "github.com/avoronov/quorum/core/internal/usecase/vote"
)

type SessionIntegrationSuite struct {
	suite.Suite

	sessions *usecase_session.Usecase
	cards    *usecase_card.Usecase
	votes    *usecase_vote.Usecase
}

func (s *SessionIntegrationSuite) BeforeAll(t provider.T) {
	cfg := getConfig()

	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)

	sessionRepo := infra_postgres_session.New(pgConn)
	cardRepo := infra_postgres_card.New(pgConn)
	voteRepo := infra_postgres_vote.New(pgConn)
	codeCache := infra_accesscode_cache.New(redisConn, "access_code")

	s.sessions = usecase_session.New(sessionRepo, codeCache)
	s.cards = usecase_card.New(cardRepo, s.sessions)
	s.votes = usecase_vote.New(voteRepo, s.sessions)
}

func (s *SessionIntegrationSuite) TestIntegrationSessionLifecycle(t provider.T) {
	ctx := context.Background()

	session, err := s.sessions.Create(ctx)
	require.NoError(t, err)
	assert.Len(t, session.AccessCode, model.AccessCodeLen)
	assert.True(t, session.Active)

	defer s.sessions.Close(ctx, session.AccessCode)

	resolved, err := s.sessions.Resolve(ctx, session.AccessCode)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)

	user, err := s.sessions.Join(ctx, session.AccessCode, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, session.ID, user.SessionID)

	users, err := s.sessions.Users(ctx, session.AccessCode)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.sessions.Close(ctx, session.AccessCode))

	closed, err := s.sessions.Resolve(ctx, session.AccessCode)
	require.NoError(t, err)
	assert.False(t, closed.Active)

	_, err = s.sessions.Join(ctx, session.AccessCode, "bob", false)
	assert.ErrorIs(t, err, usecase_session.ErrSessionClosed)
}

func (s *SessionIntegrationSuite) TestIntegrationVotingFlow(t provider.T) {
	ctx := context.Background()

	session, err := s.sessions.Create(ctx)
	require.NoError(t, err)
	defer s.sessions.Close(ctx, session.AccessCode)

	user, err := s.sessions.Join(ctx, session.AccessCode, "carol", false)
	require.NoError(t, err)

	card, err := s.cards.Add(ctx, session.AccessCode, "proposal", "details")
	require.NoError(t, err)

	cards, err := s.cards.List(ctx, session.AccessCode)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	_, err = s.votes.Find(ctx, session.AccessCode, card.ID, user.ID)
	assert.ErrorIs(t, err, usecase_session.ErrResourceNotFound)

	vote, err := s.votes.Insert(ctx, session.AccessCode, card.ID, user.ID, model.ChoiceYes)
	require.NoError(t, err)

	found, err := s.votes.Find(ctx, session.AccessCode, card.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, vote.ID, found.ID)
	assert.Equal(t, model.ChoiceYes, found.Choice)

	require.NoError(t, s.votes.UpdateChoice(ctx, session.AccessCode, vote.ID, model.ChoiceNo))

	updated, err := s.votes.Find(ctx, session.AccessCode, card.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, vote.ID, updated.ID)
	assert.Equal(t, model.ChoiceNo, updated.Choice)

	all, err := s.votes.Votes(ctx, session.AccessCode, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionIntegrationSuite(t *testing.T) {
	suite.RunSuite(t, new(SessionIntegrationSuite))
}
