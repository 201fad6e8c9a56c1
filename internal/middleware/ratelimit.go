package middleware

import (
	"fmt"
	"net/http"

	"jersey-stock-api/pkg/apierror"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter limits requests per client IP. rate uses the
// "<limit>-<period>" notation, e.g. "300-M".
func NewRateLimiter(rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, parsed, limiter.WithTrustForwardHeader(true))

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, apierror.TooManyRequests("Too many requests, slow down"))
		}),
	)
	return mw.Handler, nil
}
