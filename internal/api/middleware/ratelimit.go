package middleware

import (
	"errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
)

var errRateLimited = errors.New("rate limit exceeded")

// NewRateLimiter returns middleware that admits at most perSecond requests
// per second with the given burst across all clients. It is a pass-through
// when either value is not positive.
func NewRateLimiter(perSecond float64, burst int) func(http.Handler) http.Handler {
	if perSecond <= 0 || burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
					"Too many requests", errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
