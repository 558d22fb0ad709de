// Package store persists user profiles and chat history. Two backends share
// one repository contract: an in-process memory store for single-node and
// test use, and Postgres for durable deployments.
package store

import (
	"context"
	"errors"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

var (
	// ErrNotFound reports a missing user.
	ErrNotFound = errors.New("store: not found")
	// ErrEmailTaken reports a sign-up against an existing email.
	ErrEmailTaken = errors.New("store: email already registered")
)

// Users is the profile repository.
type Users interface {
	Get(ctx context.Context, uid string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	// Put inserts a new user; ErrEmailTaken if the email exists.
	Put(ctx context.Context, user types.User) error
	// Update applies fn to the stored user atomically and returns the result.
	Update(ctx context.Context, uid string, fn func(*types.User) error) (types.User, error)
}

// Histories is the chat-history repository. The history is stored as one
// document per user and replaced wholesale on every save.
type Histories interface {
	// Load returns the user's history, top level sorted newest-first. A
	// missing or unreadable document loads as an empty history.
	Load(ctx context.Context, uid string) ([]types.HistoryItem, error)
	Save(ctx context.Context, uid string, items []types.HistoryItem) error
}

// Store bundles both repositories over one backend.
type Store interface {
	Users() Users
	Histories() Histories
	Close()
}
