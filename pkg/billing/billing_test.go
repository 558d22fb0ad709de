package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, balance int) (*Service, store.Users) {
	t.Helper()
	st := store.NewMemory(nil)
	users := st.Users()
	if err := users.Put(context.Background(), types.User{
		UID: "u1", Email: "a@b.c", Plan: types.PlanBasic, KRXBalance: balance,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewService(users, Config{}, nil, fixedNow), users
}

func TestPlanCost(t *testing.T) {
	if cost, err := PlanCost(types.PlanPremium); err != nil || cost != 40 {
		t.Errorf("premium = (%d, %v), want (40, nil)", cost, err)
	}
	if cost, err := PlanCost(types.PlanPlatinum); err != nil || cost != 120 {
		t.Errorf("platinum = (%d, %v), want (120, nil)", cost, err)
	}
	if _, err := PlanCost(types.PlanBasic); !errors.Is(err, ErrUnknownPlan) {
		t.Errorf("basic err = %v, want ErrUnknownPlan", err)
	}
}

func TestActivatePlan_DebitsAndSetsExpiry(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, 100)

	user, err := svc.ActivatePlan(ctx, "u1", types.PlanPremium)
	if err != nil {
		t.Fatalf("ActivatePlan: %v", err)
	}
	if user.Plan != types.PlanPremium {
		t.Errorf("plan = %s", user.Plan)
	}
	if user.KRXBalance != 60 {
		t.Errorf("balance = %d, want 60", user.KRXBalance)
	}
	want := fixedNow().Add(24 * time.Hour)
	if user.PlanActiveUntil == nil || !user.PlanActiveUntil.Equal(want) {
		t.Errorf("until = %v, want %v", user.PlanActiveUntil, want)
	}

	stored, _ := users.Get(ctx, "u1")
	if stored.KRXBalance != 60 {
		t.Errorf("debit not persisted: %d", stored.KRXBalance)
	}
}

func TestActivatePlan_InsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t, 100)

	if _, err := svc.ActivatePlan(ctx, "u1", types.PlanPlatinum); !errors.Is(err, ErrInsufficientKRX) {
		t.Fatalf("err = %v, want ErrInsufficientKRX", err)
	}
	stored, _ := users.Get(ctx, "u1")
	if stored.KRXBalance != 100 || stored.Plan != types.PlanBasic {
		t.Errorf("failed activation mutated user: %+v", stored)
	}
}

func TestCreditKRX(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 10)

	user, err := svc.CreditKRX(ctx, "u1", 250)
	if err != nil {
		t.Fatalf("CreditKRX: %v", err)
	}
	if user.KRXBalance != 260 {
		t.Errorf("balance = %d, want 260", user.KRXBalance)
	}

	if _, err := svc.CreditKRX(ctx, "u1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero credit err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.CreditKRX(ctx, "u1", maxKRXPerCheckout+1); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("oversized credit err = %v, want ErrInvalidAmount", err)
	}
}

func TestCreateKRXCheckout_ValidatesAmount(t *testing.T) {
	svc, _ := newTestService(t, 0)
	if _, err := svc.CreateKRXCheckout(context.Background(), "u1", -5); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}
