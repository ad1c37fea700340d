package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := New("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5*time.Second, cfg.Rates.Timeout)
	assert.Equal(t, 3, cfg.Rates.ProbeDays)
	assert.Equal(t, []string{"7575", "4479"}, cfg.Import.QuorumCards)
	assert.Equal(t, []string{"RENT", "O2", "D-TICKET", "RUNDFUNK"}, cfg.Import.EUBillMarkers)
	assert.Len(t, cfg.Categorizer.FuzzyRules, len(DefaultFuzzyRules()))
	assert.Equal(t, 2, cfg.Categorizer.BootstrapMinCount)
}

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
store:
  backend: memory
rates:
  probe_days: 1
  timeout: 2s
import:
  quorum_cards: ["1111"]
categorizer:
  fuzzy_rules:
    - keyword: kaufland
      subcategory: Supermarket
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 1, cfg.Rates.ProbeDays)
	assert.Equal(t, 2*time.Second, cfg.Rates.Timeout)
	assert.Equal(t, []string{"1111"}, cfg.Import.QuorumCards)
	require.Len(t, cfg.Categorizer.FuzzyRules, 1)
	assert.Equal(t, FuzzyRule{Keyword: "kaufland", Subcategory: "Supermarket"}, cfg.Categorizer.FuzzyRules[0])
}

func TestNew_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_SQLITE_PATH", "/tmp/other.db")

	cfg, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Store.SQLitePath)
}

func TestNew_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEDGER_STORE_BACKEND", "postgres")

	_, err := New("")
	assert.Error(t, err)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
