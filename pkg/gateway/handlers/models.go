package handlers

import (
	"net/http"

	"github.com/dhozzi-app/dhozzi/pkg/core/catalog"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// ModelsHandler lists the models the caller's plan can use.
type ModelsHandler struct {
	Users store.Users
}

func (h ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.Get(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models":        catalog.Available(user.Plan),
		"default_model": catalog.DefaultModel,
	})
}
