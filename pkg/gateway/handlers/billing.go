package handlers

import (
	"net/http"
	"strings"

	"github.com/dhozzi-app/dhozzi/pkg/billing"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

// BillingHandler sells plan time and opens KRX checkouts.
type BillingHandler struct {
	Billing *billing.Service
}

// ActivatePlan debits the daily cost of a paid tier.
func (h BillingHandler) ActivatePlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Plan string `json:"plan"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	plan := types.Plan(strings.TrimSpace(body.Plan))
	user, err := h.Billing.ActivatePlan(r.Context(), uidFrom(r), plan)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]types.User{"user": user})
}

// Checkout opens a hosted Stripe page for a KRX pack.
func (h BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount int `json:"amount"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	url, err := h.Billing.CreateKRXCheckout(r.Context(), uidFrom(r), body.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}
