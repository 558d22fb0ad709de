package handlers

import (
	"net/http"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// HistoryHandler reads and replaces the caller's chat tree. The client owns
// folder structure, renames, and deletes; the server just persists the
// document.
type HistoryHandler struct {
	Histories store.Histories
}

func (h HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	items, err := h.Histories.Load(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []types.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string][]types.HistoryItem{"items": items})
}

func (h HistoryHandler) Put(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []types.HistoryItem `json:"items"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := h.Histories.Save(r.Context(), uidFrom(r), body.Items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
