package mw

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/gateway/apierror"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/ratelimit"
)

// RateLimit throttles per authenticated user. Unauthenticated requests
// share the anonymous bucket, which keeps the sign-in endpoints covered.
func RateLimit(limiter *ratelimit.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UIDFrom(r.Context())
		d := limiter.AllowRequest(uid, time.Now())
		if !d.Allowed {
			reqID, _ := RequestIDFrom(r.Context())
			w.Header().Set("Retry-After", strconv.Itoa(d.RetryAfter))
			WriteError(w, http.StatusTooManyRequests, &apierror.Error{
				Code:      apierror.CodeRateLimited,
				Message:   "too many requests",
				RequestID: reqID,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
