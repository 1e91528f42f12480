package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"fireenrich/internal/config"
	"fireenrich/internal/logger"
)

const usage = `Usage: migrate [up|down|steps N|version]

Manages the wizard_sessions schema used when FIREENRICH_SESSION_STORE=postgres.
Migrations are read from db/migrations (override with FIREENRICH_MIGRATIONS_DIR).`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.Session.Store != "postgres" {
		log.Warn("session store is not postgres; the schema will be migrated but not used by the server",
			"session_store", cfg.Session.Store)
	}

	dir := os.Getenv("FIREENRICH_MIGRATIONS_DIR")
	if dir == "" {
		dir = "db/migrations"
	}

	m, err := migrate.New("file://"+dir, cfg.DB.DSN())
	if err != nil {
		log.Fatal("failed to open session schema migrations", "dir", dir, "db_host", cfg.DB.Host, "error", err)
	}
	defer m.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("session schema migration up failed", "error", err)
		}
		log.Info("session schema is up to date")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("session schema migration down failed", "error", err)
		}
		log.Info("session schema reverted; wizard_sessions dropped")

	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("steps requires a number argument")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("invalid steps argument", "value", os.Args[2], "error", err)
		}
		if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("session schema migration steps failed", "steps", n, "error", err)
		}
		log.Info("applied session schema migration steps", "steps", n)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("session schema: no migrations applied")
			return
		}
		if err != nil {
			log.Fatal("failed to read session schema version", "error", err)
		}
		fmt.Printf("session schema version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Printf("unknown command: %s\n\n%s\n", cmd, usage)
		os.Exit(1)
	}
}
