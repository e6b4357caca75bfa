package app

import (
	"log/slog"

	"github.com/avoronov/quorum/core/internal/config"
	http_card "github.com/avoronov/quorum/core/internal/delivery/http/card"
	http_init "github.com/avoronov/quorum/core/internal/delivery/http/init"
	http_session "github.com/avoronov/quorum/core/internal/delivery/http/session"
	http_vote "github.com/avoronov/quorum/core/internal/delivery/http/vote"
	ws_session "github.com/avoronov/quorum/core/internal/delivery/ws/session"
	infra_postgres_card "github.com/avoronov/quorum/core/internal/infra/postgres/card"
	infra_pg_init "github.com/avoronov/quorum/core/internal/infra/postgres/init"
	infra_postgres_session "github.com/avoronov/quorum/core/internal/infra/postgres/session"
	infra_postgres_vote "github.com/avoronov/quorum/core/internal/infra/postgres/vote"
	infra_accesscode_cache "github.com/avoronov/quorum/core/internal/infra/redis/accesscode"
	infra_redis_init "github.com/avoronov/quorum/core/internal/infra/redis/init"
	usecase_card "github.com/avoronov/quorum/core/internal/usecase/card"
	usecase_session "github.com/avoronov/quorum/core/internal/usecase/session"
	usecase_vote "github.com/avoronov/quorum/core/internal/usecase/vote"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	sessionRepository := infra_postgres_session.New(pgConn)
	cardRepository := infra_postgres_card.New(pgConn)
	voteRepository := infra_postgres_vote.New(pgConn)

	codeCache := infra_accesscode_cache.New(redisConn, "access_code")

	sessionUC := usecase_session.New(sessionRepository, codeCache)
	cardUC := usecase_card.New(cardRepository, sessionUC)
	voteUC := usecase_vote.New(voteRepository, sessionUC)

	hub := ws_session.NewHub(slog.Default())
	go hub.Run()

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_session.New(sessionUC))
	controllerPool.Add(http_card.New(cardUC, hub))
	controllerPool.Add(http_vote.New(voteUC))
	controllerPool.Add(ws_session.NewController(hub))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
