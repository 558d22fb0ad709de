package handlers

import (
	"net/http"

	"github.com/dhozzi-app/dhozzi/pkg/gateway/apierror"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
)

type NotFoundHandler struct{}

func (NotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID, _ := mw.RequestIDFrom(r.Context())
	mw.WriteError(w, http.StatusNotFound, &apierror.Error{
		Code:      apierror.CodeNotFound,
		Message:   "no such endpoint",
		RequestID: reqID,
	})
}
