package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/gateway/apierror"
)

// TokenResolver maps a session token to the user it belongs to.
type TokenResolver interface {
	Resolve(token string) (uid string, ok bool)
}

type ctxKeyUID struct{}

func UIDFrom(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxKeyUID{}).(string)
	return uid, ok && uid != ""
}

func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUID{}, uid)
}

// ParseBearer extracts the token from an Authorization: Bearer header.
func ParseBearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}

// Auth requires a valid session token on every route except the ones in
// skip (exact path match).
func Auth(sessions TokenResolver, skip map[string]struct{}, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		reqID, _ := RequestIDFrom(r.Context())

		token, ok := ParseBearer(r)
		if !ok {
			// Browsers cannot set headers on websocket dials; /v1/live
			// carries the token as a query parameter instead.
			token = strings.TrimSpace(r.URL.Query().Get("token"))
		}
		if token == "" {
			WriteError(w, http.StatusUnauthorized, &apierror.Error{
				Code:      apierror.CodeUnauthorized,
				Message:   "missing session token",
				Param:     "Authorization",
				RequestID: reqID,
			})
			return
		}
		uid, ok := sessions.Resolve(token)
		if !ok {
			WriteError(w, http.StatusUnauthorized, &apierror.Error{
				Code:      apierror.CodeUnauthorized,
				Message:   "invalid or expired session token",
				RequestID: reqID,
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUID(r.Context(), uid)))
	})
}
