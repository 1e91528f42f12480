package postgres_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fireenrich/internal/config"
	"fireenrich/internal/repository/postgres"
)

func TestNewDB_UnreachableFailsAtStartup(t *testing.T) {
	cfg := &config.DBConfig{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "fireenrich",
		Password:       "x",
		Name:           "fireenrich_db",
		SSLMode:        "disable",
		MaxOpen:        1,
		MaxIdle:        1,
		ConnectTimeout: 2 * time.Second,
	}

	db, err := postgres.NewDB(cfg)

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "connecting to session store at 127.0.0.1:1")
}
