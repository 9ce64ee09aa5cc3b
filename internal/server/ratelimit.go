package server

import (
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// newRateLimiter builds a middleware that throttles a handler using the
// limiter formatted-rate notation, e.g. "20-M" for twenty requests a minute
// per client IP. The credential endpoints are wrapped with it so password
// guessing cannot run unthrottled.
func newRateLimiter(format string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memory.NewStore(), rate)
	middleware := stdlib.NewMiddleware(instance)

	return func(next http.Handler) http.Handler {
		return middleware.Handler(next)
	}, nil
}
