// Package auth is the local account layer: email-only sign-up and sign-in,
// bearer-token sessions held in memory, and the daily login reward. There is
// no password verification; accounts are a device-local convenience, not a
// security boundary.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dhozzi-app/dhozzi/pkg/core/catalog"
	"github.com/dhozzi-app/dhozzi/pkg/core/types"
	"github.com/dhozzi-app/dhozzi/pkg/store"
)

const (
	signupKRX = 30

	dailyBaseKRX   = 30
	dailyMaxBonus  = 30
	weeklyBonusKRX = 90

	// neverLoggedIn is the zero value of LastLoginDate.
	neverLoggedIn = "1970-01-01"
)

// Service owns accounts and live sessions.
type Service struct {
	users     store.Users
	histories store.Histories
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]string // token -> uid
}

// NewService wires the auth layer over a store. nowFn defaults to time.Now.
func NewService(st store.Store, logger *slog.Logger, nowFn func() time.Time) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		users:     st.Users(),
		histories: st.Histories(),
		logger:    logger,
		now:       nowFn,
		sessions:  make(map[string]string),
	}
}

// SignUp creates a basic-plan account with the welcome balance, seeds an
// empty starter chat, and opens a session. The first login reward is applied
// immediately.
func (s *Service) SignUp(ctx context.Context, email string) (types.User, string, error) {
	user := types.User{
		UID:           uuid.NewString(),
		Email:         email,
		Plan:          types.PlanBasic,
		KRXBalance:    signupKRX,
		LastLoginDate: neverLoggedIn,
		Streak:        0,
	}
	if err := s.users.Put(ctx, user); err != nil {
		return types.User{}, "", err
	}

	welcome := []types.HistoryItem{{
		ID:    uuid.NewString(),
		Name:  "Welcome Chat",
		Type:  types.ItemChat,
		Model: catalog.DefaultModel,
		Date:  s.now(),
	}}
	if err := s.histories.Save(ctx, user.UID, welcome); err != nil {
		return types.User{}, "", fmt.Errorf("seed history: %w", err)
	}

	user, err := s.DailyLogin(ctx, user.UID)
	if err != nil {
		return types.User{}, "", err
	}

	token := s.openSession(user.UID)
	s.logger.Info("user signed up", "uid", user.UID)
	return user, token, nil
}

// SignIn looks the account up by email, applies the daily login reward, and
// opens a session.
func (s *Service) SignIn(ctx context.Context, email string) (types.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return types.User{}, "", err
	}
	user, err = s.DailyLogin(ctx, user.UID)
	if err != nil {
		return types.User{}, "", err
	}
	token := s.openSession(user.UID)
	return user, token, nil
}

// SignOut invalidates a session token. Unknown tokens are ignored.
func (s *Service) SignOut(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Resolve maps a bearer token to its uid.
func (s *Service) Resolve(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.sessions[token]
	return uid, ok
}

// DailyLogin settles plan expiry and the once-per-day streak reward. Calling
// it again on the same day only re-checks plan expiry.
func (s *Service) DailyLogin(ctx context.Context, uid string) (types.User, error) {
	return s.users.Update(ctx, uid, func(u *types.User) error {
		applyDailyLogin(u, s.now())
		return nil
	})
}

func (s *Service) openSession(uid string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = uid
	s.mu.Unlock()
	return token
}

// applyDailyLogin mutates u for a login at now: expired paid plans drop to
// basic, and the first login of a calendar day earns KRX scaled by the
// consecutive-day streak.
func applyDailyLogin(u *types.User, now time.Time) {
	if u.Plan != types.PlanBasic && u.PlanActiveUntil != nil && now.After(*u.PlanActiveUntil) {
		u.Plan = types.PlanBasic
		u.PlanActiveUntil = nil
	}

	today := now.Format(time.DateOnly)
	if u.LastLoginDate == today {
		return
	}

	yesterday := now.AddDate(0, 0, -1).Format(time.DateOnly)
	if u.LastLoginDate == yesterday {
		u.Streak++
	} else {
		u.Streak = 1
	}

	bonus := u.Streak
	if bonus > dailyMaxBonus {
		bonus = dailyMaxBonus
	}
	u.KRXBalance += dailyBaseKRX + bonus

	if u.Streak%7 == 0 {
		u.KRXBalance += weeklyBonusKRX
	}

	u.LastLoginDate = today
}
