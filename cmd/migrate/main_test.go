package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-ledger/internal/config"
)

func TestResolveTarget(t *testing.T) {
	cfg := &config.Config{BigQuery: config.BigQueryConfig{Project: "cfg-proj", Dataset: "ledger"}}

	t.Run("config only", func(t *testing.T) {
		got, err := resolveTarget(cfg, "", "")
		require.NoError(t, err)
		assert.Equal(t, target{Project: "cfg-proj", Dataset: "ledger"}, got)
	})

	t.Run("flags override", func(t *testing.T) {
		got, err := resolveTarget(cfg, "flag-proj", "staging")
		require.NoError(t, err)
		assert.Equal(t, target{Project: "flag-proj", Dataset: "staging"}, got)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := resolveTarget(&config.Config{BigQuery: config.BigQueryConfig{Dataset: "ledger"}}, "", "")
		assert.Error(t, err)
	})

	t.Run("missing dataset", func(t *testing.T) {
		_, err := resolveTarget(&config.Config{}, "p", "")
		assert.Error(t, err)
	})
}
