package container

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mlpipe/internal/errors"
	"mlpipe/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_WiresPipeline(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewTestKit()
	cfg := kit.Config(t.TempDir(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	cfg.Schema.Path = filepath.Join(t.TempDir(), "missing.yaml")

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Personality", c.Schema.TargetColumn)

	require.Error(t, c.InitPipeline("test"))

	require.NoError(t, c.InitWithDatabase(ctx))
	require.NoError(t, c.InitStore(ctx))
	require.NoError(t, c.InitSource(ctx, kit.Source()))
	require.NoError(t, c.InitPipeline("test"))
	assert.NotNil(t, c.Pipeline)

	outcome, err := c.Pipeline.Run(ctx)
	require.NoError(t, err)

	runs, err := c.Ledger.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, outcome.Manifest.RunID, runs[0].RunID)

	require.NoError(t, c.Shutdown(ctx))
	assert.True(t, kit.Source().Closed)
}

func TestContainer_BadLedgerDriver(t *testing.T) {
	kit := testkit.NewTestKit()
	cfg := kit.Config(t.TempDir(), time.Now())
	cfg.Ledger.Driver = "oracle"

	c, err := New(cfg)
	require.NoError(t, err)

	err = c.InitWithDatabase(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
