package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	h "conferencegateway/internal/delivery/http/helpers"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests beyond rps requests per second (with the given
// burst) with 429 and a Retry-After header. The limit is shared by all clients.
// rps <= 0 disables limiting.
func RateLimit(rps float64, burst int, logger *slog.Logger, next http.Handler) http.Handler {
	if rps <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	retryAfter := strconv.Itoa(max(int(math.Ceil(1/rps)), 1))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			logger.WarnContext(r.Context(), "rate limit exceeded",
				"request_id", RequestIDFromContext(r.Context()),
				"path", r.URL.Path,
			)
			w.Header().Set("Retry-After", retryAfter)
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooManyRequests, "too many requests, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}
