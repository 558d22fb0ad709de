package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, store.Store) {
	st := store.NewMemory(nil)
	return NewService(st, nil, fixedNow), st
}

func TestSignUp_SeedsAccountAndWelcomeChat(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService()

	user, token, err := svc.SignUp(ctx, "new@dhozzi.app")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if token == "" {
		t.Error("no session token")
	}
	if user.Plan != types.PlanBasic {
		t.Errorf("plan = %s, want basic", user.Plan)
	}
	// 30 welcome + 30 base + 1 streak bonus for the first login.
	if user.KRXBalance != 61 {
		t.Errorf("balance = %d, want 61", user.KRXBalance)
	}
	if user.Streak != 1 {
		t.Errorf("streak = %d, want 1", user.Streak)
	}

	items, err := st.Histories().Load(ctx, user.UID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Welcome Chat" || items[0].Type != types.ItemChat {
		t.Errorf("seeded history = %+v", items)
	}

	if uid, ok := svc.Resolve(token); !ok || uid != user.UID {
		t.Errorf("Resolve(%s) = (%s, %v)", token, uid, ok)
	}

	if _, _, err := svc.SignUp(ctx, "NEW@dhozzi.app"); !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("duplicate sign-up err = %v, want ErrEmailTaken", err)
	}
}

func TestSignIn_UnknownEmail(t *testing.T) {
	svc, _ := newTestService()
	if _, _, err := svc.SignIn(context.Background(), "ghost@dhozzi.app"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSignOut_InvalidatesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, token, err := svc.SignUp(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	svc.SignOut(token)
	if _, ok := svc.Resolve(token); ok {
		t.Error("token still valid after sign-out")
	}
	svc.SignOut(token) // no-op
}

func TestApplyDailyLogin_StreakMath(t *testing.T) {
	now := fixedNow()
	tests := []struct {
		name        string
		user        types.User
		wantStreak  int
		wantBalance int
	}{
		{
			name:        "first login ever",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "1970-01-01", KRXBalance: 30},
			wantStreak:  1,
			wantBalance: 30 + 30 + 1,
		},
		{
			name:        "consecutive day extends streak",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "2026-03-09", Streak: 4, KRXBalance: 0},
			wantStreak:  5,
			wantBalance: 30 + 5,
		},
		{
			name:        "gap resets streak",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "2026-03-07", Streak: 12, KRXBalance: 0},
			wantStreak:  1,
			wantBalance: 30 + 1,
		},
		{
			name:        "seventh day adds weekly bonus",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "2026-03-09", Streak: 6, KRXBalance: 0},
			wantStreak:  7,
			wantBalance: 30 + 7 + 90,
		},
		{
			name:        "streak bonus caps at 30",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "2026-03-09", Streak: 44, KRXBalance: 0},
			wantStreak:  45,
			wantBalance: 30 + 30,
		},
		{
			name:        "same-day login is a no-op",
			user:        types.User{Plan: types.PlanBasic, LastLoginDate: "2026-03-10", Streak: 3, KRXBalance: 77},
			wantStreak:  3,
			wantBalance: 77,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			applyDailyLogin(&u, now)
			if u.Streak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", u.Streak, tt.wantStreak)
			}
			if u.KRXBalance != tt.wantBalance {
				t.Errorf("balance = %d, want %d", u.KRXBalance, tt.wantBalance)
			}
			if u.LastLoginDate != "2026-03-10" && tt.name != "same-day login is a no-op" {
				t.Errorf("last login = %s", u.LastLoginDate)
			}
		})
	}
}

func TestApplyDailyLogin_PlanExpiry(t *testing.T) {
	now := fixedNow()

	expired := now.Add(-time.Hour)
	u := types.User{Plan: types.PlanPremium, PlanActiveUntil: &expired, LastLoginDate: "2026-03-10"}
	applyDailyLogin(&u, now)
	if u.Plan != types.PlanBasic || u.PlanActiveUntil != nil {
		t.Errorf("expired plan not downgraded: %+v", u)
	}

	active := now.Add(time.Hour)
	u = types.User{Plan: types.PlanPremium, PlanActiveUntil: &active, LastLoginDate: "2026-03-10"}
	applyDailyLogin(&u, now)
	if u.Plan != types.PlanPremium {
		t.Errorf("active plan downgraded: %+v", u)
	}
}
