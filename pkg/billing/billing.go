// Package billing sells plan time and KRX credit. Plans are activated by
// debiting the KRX balance for 24 hours of access; KRX itself is bought with
// a card through Stripe Checkout and credited on completion.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

const (
	// Daily activation cost per plan, in KRX.
	premiumDailyCost  = 40
	platinumDailyCost = 120

	// An activation buys 24 hours.
	planDuration = 24 * time.Hour

	// One KRX costs A$5.00 at checkout.
	krxUnitAmountCents = 500

	maxKRXPerCheckout = 10000
)

var (
	// ErrInsufficientKRX reports a plan activation the balance cannot cover.
	ErrInsufficientKRX = errors.New("billing: insufficient KRX balance")
	// ErrUnknownPlan reports an activation against basic or an unknown tier.
	ErrUnknownPlan = errors.New("billing: plan cannot be activated")
	// ErrInvalidAmount reports a KRX purchase outside the allowed range.
	ErrInvalidAmount = errors.New("billing: invalid KRX amount")
)

// Config wires the Stripe account and redirect targets.
type Config struct {
	StripeKey  string
	SuccessURL string
	CancelURL  string
}

// Service executes purchases against the profile store.
type Service struct {
	users  store.Users
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds the billing layer. nowFn defaults to time.Now.
func NewService(users store.Users, cfg Config, logger *slog.Logger, nowFn func() time.Time) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	stripe.Key = cfg.StripeKey
	return &Service{users: users, cfg: cfg, logger: logger, now: nowFn}
}

// PlanCost returns the daily KRX price of an activatable plan.
func PlanCost(plan types.Plan) (int, error) {
	switch plan {
	case types.PlanPremium:
		return premiumDailyCost, nil
	case types.PlanPlatinum:
		return platinumDailyCost, nil
	default:
		return 0, ErrUnknownPlan
	}
}

// ActivatePlan debits the plan's daily cost and grants 24 hours of access.
func (s *Service) ActivatePlan(ctx context.Context, uid string, plan types.Plan) (types.User, error) {
	cost, err := PlanCost(plan)
	if err != nil {
		return types.User{}, err
	}
	until := s.now().Add(planDuration)
	user, err := s.users.Update(ctx, uid, func(u *types.User) error {
		if u.KRXBalance < cost {
			return ErrInsufficientKRX
		}
		u.KRXBalance -= cost
		u.Plan = plan
		u.PlanActiveUntil = &until
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	s.logger.Info("plan activated", "uid", uid, "plan", string(plan), "until", until)
	return user, nil
}

// CreateKRXCheckout opens a Stripe Checkout session for a KRX pack and
// returns the hosted payment page URL. The uid rides along as the client
// reference for the completion webhook.
func (s *Service) CreateKRXCheckout(ctx context.Context, uid string, amount int) (string, error) {
	if amount <= 0 || amount > maxKRXPerCheckout {
		return "", ErrInvalidAmount
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("aud"),
				UnitAmount: stripe.Int64(krxUnitAmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Dhozzi KRX credit"),
				},
			},
			Quantity: stripe.Int64(int64(amount)),
		}},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(uid),
	}
	params.Context = ctx
	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	s.logger.Info("checkout session created", "uid", uid, "krx", amount, "session", sess.ID)
	return sess.URL, nil
}

// CreditKRX applies a completed purchase to the balance.
func (s *Service) CreditKRX(ctx context.Context, uid string, amount int) (types.User, error) {
	if amount <= 0 || amount > maxKRXPerCheckout {
		return types.User{}, ErrInvalidAmount
	}
	user, err := s.users.Update(ctx, uid, func(u *types.User) error {
		u.KRXBalance += amount
		return nil
	})
	if err != nil {
		return types.User{}, err
	}
	s.logger.Info("krx credited", "uid", uid, "krx", amount, "balance", user.KRXBalance)
	return user, nil
}
