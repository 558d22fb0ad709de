package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dhozzi-app/dhozzi/pkg/core/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres is the durable backend. History documents live in a JSONB column,
// one row per user, replaced wholesale on save.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres connects, migrates, and returns the store.
func NewPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrate(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return goose.Up(db, "migrations")
}

func (p *Postgres) Users() Users         { return (*postgresUsers)(p) }
func (p *Postgres) Histories() Histories { return (*postgresHistories)(p) }
func (p *Postgres) Close()               { p.pool.Close() }

type postgresUsers Postgres

const userColumns = `uid, email, plan, krx_balance, last_login_date, streak, plan_active_until`

func scanUser(row pgx.Row) (types.User, error) {
	var u types.User
	err := row.Scan(&u.UID, &u.Email, &u.Plan, &u.KRXBalance, &u.LastLoginDate, &u.Streak, &u.PlanActiveUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.User{}, ErrNotFound
	}
	if err != nil {
		return types.User{}, err
	}
	return u, nil
}

func (p *postgresUsers) Get(ctx context.Context, uid string) (types.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	return scanUser(row)
}

func (p *postgresUsers) GetByEmail(ctx context.Context, email string) (types.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	return scanUser(row)
}

func (p *postgresUsers) Put(ctx context.Context, user types.User) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (uid, email, plan, krx_balance, last_login_date, streak, plan_active_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING`,
		user.UID, normalizeEmail(user.Email), user.Plan, user.KRXBalance,
		user.LastLoginDate, user.Streak, user.PlanActiveUntil)
	if err != nil {
		return err
	}
	// Distinguish insert from conflict.
	existing, err := p.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing.UID != user.UID {
		return ErrEmailTaken
	}
	return nil
}

func (p *postgresUsers) Update(ctx context.Context, uid string, fn func(*types.User) error) (types.User, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return types.User{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1 FOR UPDATE`, uid)
	u, err := scanUser(row)
	if err != nil {
		return types.User{}, err
	}
	if err := fn(&u); err != nil {
		return types.User{}, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE users
		SET email = $2, plan = $3, krx_balance = $4, last_login_date = $5, streak = $6, plan_active_until = $7
		WHERE uid = $1`,
		u.UID, normalizeEmail(u.Email), u.Plan, u.KRXBalance,
		u.LastLoginDate, u.Streak, u.PlanActiveUntil)
	if err != nil {
		return types.User{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.User{}, err
	}
	return u, nil
}

type postgresHistories Postgres

func (p *postgresHistories) Load(ctx context.Context, uid string) ([]types.HistoryItem, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx, `SELECT items FROM histories WHERE uid = $1`, uid).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []types.HistoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		p.logger.Warn("history document unreadable, starting empty", "uid", uid, "error", err)
		return nil, nil
	}
	types.SortByDateDesc(items)
	return items, nil
}

func (p *postgresHistories) Save(ctx context.Context, uid string, items []types.HistoryItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO histories (uid, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (uid) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`,
		uid, raw)
	return err
}
