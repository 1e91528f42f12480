package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"fireenrich/internal/config"
)

// NewDB opens the pool backing the wizard session store and verifies the
// wizard_sessions table exists, so a missing migration fails at startup
// instead of on the first request.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to session store at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	var present bool
	if err := db.GetContext(ctx, &present, "SELECT to_regclass('public.wizard_sessions') IS NOT NULL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("checking session schema: %w", err)
	}
	if !present {
		_ = db.Close()
		return nil, fmt.Errorf("session store: table wizard_sessions missing; run `migrate up`")
	}
	return db, nil
}
