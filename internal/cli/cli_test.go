package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"ctchen222/tictactoe-grid/internal/config"
	"ctchen222/tictactoe-grid/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, Version+"\n", out.String())
}

func TestServeRejectsMissingConfigFile(t *testing.T) {
	root := Root()
	root.SetArgs([]string{"serve", "--config", filepath.Join(t.TempDir(), "missing.yml")})

	assert.Error(t, root.Execute())
}

func TestNewSessionRepository(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		store      config.Store
		wantPurger bool
	}{
		{
			name:       "Memory",
			store:      config.Store{Backend: config.StoreMemory, SessionTTL: time.Hour},
			wantPurger: true,
		},
		{
			name:       "SQLite",
			store:      config.Store{Backend: config.StoreSQLite, SessionTTL: time.Hour, SQLitePath: filepath.Join(t.TempDir(), "sessions.db")},
			wantPurger: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, closeStore, err := newSessionRepository(ctx, tt.store)
			require.NoError(t, err)
			defer closeStore()

			_, ok := repo.(repository.Purger)
			assert.Equal(t, tt.wantPurger, ok)

			_, err = repo.FindByID(ctx, "missing")
			assert.ErrorIs(t, err, repository.ErrSessionNotFound)
		})
	}
}

func TestNewSessionRepository_RedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := newSessionRepository(ctx, config.Store{
		Backend: config.StoreRedis,
		Redis:   config.Redis{Host: "127.0.0.1", Port: "1"},
	})
	assert.Error(t, err)
}
