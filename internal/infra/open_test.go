package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/infra/sqlite"
	"github.com/dvloznov/statement-ledger/internal/ledger/memory"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Store: config.StoreConfig{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}}
		s, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)
	})

	t.Run("memory", func(t *testing.T) {
		s, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: "memory"}})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStore(ctx, &config.Config{Store: config.StoreConfig{Backend: "postgres"}})
		assert.Error(t, err)
	})
}
