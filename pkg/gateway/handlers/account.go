package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/auth"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/gateway/mw"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

// AccountHandler serves sign-up, sign-in, sign-out, and the profile.
type AccountHandler struct {
	Auth   *auth.Service
	Users  store.Users
	Logger *slog.Logger
}

type credentialsBody struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

func (h AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !readJSON(w, r, &body) {
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeBadRequest(w, r, "a valid email is required", "email")
		return
	}
	user, token, err := h.Auth.SignUp(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if !readJSON(w, r, &body) {
		return
	}
	email := strings.TrimSpace(body.Email)
	if email == "" {
		writeBadRequest(w, r, "email is required", "email")
		return
	}
	user, token, err := h.Auth.SignIn(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (h AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token, ok := mw.ParseBearer(r); ok {
		h.Auth.SignOut(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated profile after settling the daily login
// reward, so a client opened across midnight sees the fresh balance.
func (h AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.DailyLogin(r.Context(), uidFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]types.User{"user": user})
}
