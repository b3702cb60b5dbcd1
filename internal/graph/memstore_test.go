package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		t.Helper()
		s := NewMemStore()
		require.NoError(t, s.InitSchema(context.Background()))
		return s
	})
}

func TestMemStore_AddModuleReplaces(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.AddModule(ctx, ModuleRecord{Path: "a.py", RiskScore: 1}))
	require.NoError(t, s.AddModule(ctx, ModuleRecord{Path: "a.py", RiskScore: 7}))

	got, err := s.GetModule(ctx, "a.py")
	require.NoError(t, err)
	assert.InDelta(t, 7.0, got.RiskScore, 1e-9)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ModuleCount)
}

func TestMemStore_DuplicateDependency(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.AddDependency(ctx, "a.py", "b.py"))
	require.NoError(t, s.AddDependency(ctx, "a.py", "b.py"))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EdgeCount)
}
