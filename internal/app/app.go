package app

import (
	"github.com/quipstack/core/internal/config"
	http_auth "github.com/quipstack/core/internal/delivery/http/auth"
	http_deck "github.com/quipstack/core/internal/delivery/http/deck"
	http_init "github.com/quipstack/core/internal/delivery/http/init"
	http_auth_middleware "github.com/quipstack/core/internal/delivery/http/middleware/auth"
	http_room "github.com/quipstack/core/internal/delivery/http/room"
	http_round "github.com/quipstack/core/internal/delivery/http/round"
	http_swagger "github.com/quipstack/core/internal/delivery/http/swagger"
	ws_room "github.com/quipstack/core/internal/delivery/ws/room"
	infra_postgres_deck "github.com/quipstack/core/internal/infra/postgres/deck"
	infra_pg_init "github.com/quipstack/core/internal/infra/postgres/init"
	infra_postgres_room "github.com/quipstack/core/internal/infra/postgres/room"
	infra_postgres_round "github.com/quipstack/core/internal/infra/postgres/round"
	infra_postgres_view "github.com/quipstack/core/internal/infra/postgres/view"
	infra_redis_events "github.com/quipstack/core/internal/infra/redis/events"
	infra_redis_init "github.com/quipstack/core/internal/infra/redis/init"
	infra_session_cache "github.com/quipstack/core/internal/infra/redis/session"
	service_guest_auth "github.com/quipstack/core/internal/service/auth/guest"
	usecase_room "github.com/quipstack/core/internal/usecase/room"
	usecase_round "github.com/quipstack/core/internal/usecase/round"
)

func Go(cfg *config.Config) {
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)

	roomRepository := infra_postgres_room.New(pgConn)
	roundRepository := infra_postgres_round.New(pgConn)
	deckCatalog := infra_postgres_deck.New(pgConn)
	stateReader := infra_postgres_view.New(pgConn)

	eventBus := infra_redis_events.New(redisConn)

	roomUC := usecase_room.New(roomRepository, eventBus)
	roundUC := usecase_round.New(roundRepository, roomRepository, deckCatalog, eventBus)

	sessionCache := infra_session_cache.New(redisConn, "session_cache")
	authService := service_guest_auth.New(sessionCache, cfg.Engine.SessionTTL)
	authMiddleware := http_auth_middleware.New(authService)

	hub := ws_room.NewHub(stateReader, eventBus, cfg.Engine.SweepInterval)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_swagger.New())
	controllerPool.Add(http_auth.New(authService))
	controllerPool.Add(http_deck.New(deckCatalog))
	controllerPool.Add(http_room.New(roomUC, authMiddleware))
	controllerPool.Add(http_round.New(roundUC, roomUC, authMiddleware))
	controllerPool.Add(ws_room.NewController(hub, roomUC, authMiddleware))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}
