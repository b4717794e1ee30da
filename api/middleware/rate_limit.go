package middleware

import (
	"net/http"

	"github.com/aidanjnn/lost-found-app/api/responses"
	"github.com/aidanjnn/lost-found-app/pkg/config"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	pkgredis "github.com/aidanjnn/lost-found-app/pkg/redis"
)

// ClaimSubmitRateLimit caps how many claims one user may file per window.
// It must run after Auth.
func ClaimSubmitRateLimit(cfg config.RateLimitConfig, limiter pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || cfg.ClaimSubmitLimit <= 0 || cfg.ClaimSubmitWindow <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := ActorFromContext(ctx)
			scope := "claims:submit:" + actor.UserID.String()

			allowed, count, err := limiter.FixedWindowAllow(ctx, scope, int64(cfg.ClaimSubmitLimit), cfg.ClaimSubmitWindow)
			if err != nil {
				// fail open on cache errors
				logError(ctx, logg, "rate_limit.check_failed", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"attempts":       count,
						"limit":          cfg.ClaimSubmitLimit,
						"window_seconds": int(cfg.ClaimSubmitWindow.Seconds()),
					})
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many claim submissions, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
