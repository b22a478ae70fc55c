package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amoura-app/amoura-backend/api/controllers"
	authcontrollers "github.com/amoura-app/amoura-backend/api/controllers/auth"
	bookingcontrollers "github.com/amoura-app/amoura-backend/api/controllers/bookings"
	walletcontrollers "github.com/amoura-app/amoura-backend/api/controllers/wallets"
	"github.com/amoura-app/amoura-backend/api/middleware"
	"github.com/amoura-app/amoura-backend/internal/admins"
	internalbookings "github.com/amoura-app/amoura-backend/internal/bookings"
	"github.com/amoura-app/amoura-backend/internal/ledger"
	"github.com/amoura-app/amoura-backend/internal/settlement"
	internalwallets "github.com/amoura-app/amoura-backend/internal/wallets"
	"github.com/amoura-app/amoura-backend/pkg/auth/session"
	"github.com/amoura-app/amoura-backend/pkg/config"
	"github.com/amoura-app/amoura-backend/pkg/enums"
	"github.com/amoura-app/amoura-backend/pkg/logger"
	"github.com/amoura-app/amoura-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil optional members
// degrade gracefully: a nil redis client disables rate limiting and
// idempotency replay, a nil metrics handler drops the /metrics route.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      controllers.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	Admins     admins.Service
	Settlement settlement.Service
	Bookings   internalbookings.Repository
	Ledger     ledger.Service
	Wallets    internalwallets.Service

	Metrics http.Handler
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.AuthRateLimit, rateLimitStore(deps.Redis), logg)).
			Post("/login", authcontrollers.Login(deps.Admins, logg))
		r.Post("/refresh", authcontrollers.Refresh(deps.Admins, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
			r.Post("/logout", authcontrollers.Logout(deps.Admins, logg))
			r.Get("/me", authcontrollers.Me(deps.Admins, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))
		r.Use(middleware.RequireRole(logg, enums.AdminRoleAdmin, enums.AdminRoleSuperadmin))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), cfg.Settlement.IdempotencyTTL, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingcontrollers.List(deps.Bookings, logg))
			r.Get("/{bookingId}", bookingcontrollers.Detail(deps.Bookings, logg))
			r.Get("/{bookingId}/transactions", bookingcontrollers.Transactions(deps.Ledger, logg))
			r.Post("/{bookingId}/complete", bookingcontrollers.Complete(deps.Settlement, logg))
			r.Post("/{bookingId}/refund", bookingcontrollers.Refund(deps.Settlement, logg))
			r.Post("/{bookingId}/resolve-dispute", bookingcontrollers.ResolveDispute(deps.Settlement, logg))
			r.Post("/{bookingId}/reject", bookingcontrollers.Reject(deps.Settlement, logg))
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/{walletId}", walletcontrollers.Detail(deps.Wallets, logg))
			r.Get("/{walletId}/transactions", walletcontrollers.Transactions(deps.Wallets, logg))
			r.Get("/{walletId}/recalculate", walletcontrollers.Recalculate(deps.Wallets, logg))
		})
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}

// idempotencyStore keeps the typed-nil pitfall out of the middleware: a nil
// *redis.Client must become a nil interface.
func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func rateLimitStore(client *redis.Client) middleware.RateLimiterStore {
	if client == nil {
		return nil
	}
	return client
}
