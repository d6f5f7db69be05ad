package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IhuzaApp/groceryrw-backend/api/controllers"
	"github.com/IhuzaApp/groceryrw-backend/api/middleware"
	walletsvc "github.com/IhuzaApp/groceryrw-backend/internal/wallet"
	"github.com/IhuzaApp/groceryrw-backend/pkg/config"
	"github.com/IhuzaApp/groceryrw-backend/pkg/logger"
	pkgredis "github.com/IhuzaApp/groceryrw-backend/pkg/redis"
)

// Deps carries everything the router mounts. Redis doubles as the
// idempotency store; the pingers feed the readiness probe.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB     controllers.Pinger
	Redis  *pkgredis.Client
	PubSub controllers.Pinger

	Wallet walletsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	health := controllers.HealthDeps{DB: deps.DB, PubSub: deps.PubSub}
	if deps.Redis != nil {
		health.Redis = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, health, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	r.Route("/api/v1/shopper", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireShopper(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(deps.Wallet, logg))
			r.Post("/operations", controllers.WalletOperation(deps.Wallet, logg))
			r.Post("/payouts", controllers.WalletPayout(deps.Wallet, logg))
			r.Get("/payouts", controllers.WalletPayouts(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
		})
	})

	return r
}
