package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunner_CreatesLedgerTables(t *testing.T) {
	ctx := context.Background()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	runner := NewRunner()
	require.NoError(t, runner.Run(ctx, db))
	// idempotent
	require.NoError(t, runner.Run(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"model_evaluations", "pipeline_runs", "stage_results"}, tables)
	assert.Equal(t, "1.0.0", runner.Version())
}
