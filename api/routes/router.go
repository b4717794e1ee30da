package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aidanjnn/lost-found-app/api/controllers"
	"github.com/aidanjnn/lost-found-app/api/middleware"
	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/internal/claims"
	"github.com/aidanjnn/lost-found-app/internal/items"
	"github.com/aidanjnn/lost-found-app/internal/notifications"
	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/config"
	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/metrics"
	"github.com/aidanjnn/lost-found-app/pkg/redis"
)

// NewRouter mounts every HTTP route. redisPinger, idempotencyStore and
// limiter are nil when redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisPinger db.Pinger,
	idempotencyStore redis.IdempotencyStore,
	limiter redis.RateLimiter,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	claimsService claims.Service,
	itemsService items.Service,
	notificationsService notifications.Service,
	activityService activity.Service,
	usersService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisPinger))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	// Routes are registered flat so the idempotency middleware sees the
	// full pattern.
	idempotent := middleware.Idempotency(idempotencyStore, logg)
	staffOnly := middleware.RequireStaff(logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.Me(usersService, logg))
		r.Patch("/me", controllers.UpdateMe(usersService, logg))

		r.With(middleware.ClaimSubmitRateLimit(cfg.RateLimit, limiter, logg), idempotent).
			Post("/claims", controllers.SubmitClaim(claimsService, logg))
		r.Get("/claims", controllers.ListClaims(claimsService, logg))
		r.Get("/claims/{claimId}", controllers.GetClaim(claimsService, logg))
		r.With(staffOnly, idempotent).Patch("/claims/{claimId}", controllers.TransitionClaim(claimsService, logg))

		r.Get("/items", controllers.ListItems(itemsService, logg))
		r.With(staffOnly, idempotent).Post("/items", controllers.CreateItem(itemsService, logg))
		r.With(staffOnly).Get("/items/archived", controllers.ListArchivedItems(claimsService, logg))
		r.Get("/items/{itemId}", controllers.GetItem(itemsService, logg))
		r.With(staffOnly, idempotent).Put("/items/{itemId}", controllers.UpdateItem(itemsService, logg))
		r.With(staffOnly).Delete("/items/{itemId}", controllers.DeleteItem(itemsService, logg))

		r.Get("/notifications", controllers.ListNotifications(notificationsService, logg))
		r.With(idempotent).Post("/notifications/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
		r.With(idempotent).Post("/notifications/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))

		r.With(staffOnly).Get("/activity", controllers.ListActivity(activityService, logg))
	})

	return r
}
