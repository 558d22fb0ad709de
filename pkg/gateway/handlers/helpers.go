// Package handlers holds the REST and websocket endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dhozzi-app/dhozzi/pkg/gateway/apierror"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies a domain error into the wire envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	e, status := apierror.FromError(err, reqID)
	mw.WriteError(w, status, e)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message, param string) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	mw.WriteError(w, http.StatusBadRequest, &apierror.Error{
		Code:      apierror.CodeBadRequest,
		Message:   message,
		Param:     param,
		RequestID: reqID,
	})
}

// writeGenerationFailed reports an upstream generation failure.
func writeGenerationFailed(w http.ResponseWriter, r *http.Request, message string) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	mw.WriteError(w, http.StatusBadGateway, &apierror.Error{
		Code:      apierror.CodeGenerationFailed,
		Message:   message,
		RequestID: reqID,
	})
}

// readJSON decodes the request body into dst; on failure it writes the
// error response and reports false.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeBadRequest(w, r, "invalid json body", "")
		return false
	}
	return true
}

// uidFrom pulls the authenticated user out of the request context. The auth
// middleware guarantees it on every protected route.
func uidFrom(r *http.Request) string {
	uid, _ := mw.UIDFrom(r.Context())
	return uid
}
