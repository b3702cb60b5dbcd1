package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory returns a fresh Store with an initialized schema.
type storeFactory func(t *testing.T) Store

// seedChain stores a -> b -> c -> d plus a -> c.
func seedChain(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []string{"a.go", "b.go", "c.go", "d.go"} {
		require.NoError(t, s.AddModule(ctx, ModuleRecord{Path: p, Language: LangGo, LOC: 10}))
	}
	for _, e := range [][2]string{{"a.go", "b.go"}, {"b.go", "c.go"}, {"c.go", "d.go"}, {"a.go", "c.go"}} {
		require.NoError(t, s.AddDependency(ctx, e[0], e[1]))
	}
}

func terminals(chains []DependencyChain) []string {
	out := make([]string, 0, len(chains))
	for _, c := range chains {
		out = append(out, c.Nodes[len(c.Nodes)-1])
	}
	return out
}

// runStoreContract exercises the behaviour every Store implementation
// shares.
func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("module round trip", func(t *testing.T) {
		s := newStore(t)
		rec := ModuleRecord{
			Path: "internal/core/engine.ts", Language: LangTypeScript, LOC: 420,
			Ca: 4, Ce: 1, Instability: 0.2, RiskScore: 3.4,
		}
		require.NoError(t, s.AddModule(ctx, rec))

		got, err := s.GetModule(ctx, rec.Path)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, rec.Path, got.Path)
		assert.Equal(t, rec.Language, got.Language)
		assert.Equal(t, rec.LOC, got.LOC)
		assert.Equal(t, rec.Ca, got.Ca)
		assert.Equal(t, rec.Ce, got.Ce)
		assert.InDelta(t, rec.Instability, got.Instability, 1e-9)
		assert.InDelta(t, rec.RiskScore, got.RiskScore, 1e-9)
	})

	t.Run("missing module", func(t *testing.T) {
		s := newStore(t)
		got, err := s.GetModule(ctx, "nope.go")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("upstream traversal", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)

		chains, err := s.GetDependencies(ctx, "a.go", DirectionUpstream, 1)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"b.go", "c.go"}, terminals(chains))

		chains, err = s.GetDependencies(ctx, "a.go", DirectionUpstream, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"b.go", "c.go", "d.go"}, terminals(chains))
		for _, c := range chains {
			assert.Equal(t, "a.go", c.Nodes[0])
			assert.Equal(t, len(c.Nodes)-1, c.Depth)
		}
	})

	t.Run("downstream traversal", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)

		chains, err := s.GetDependencies(ctx, "c.go", DirectionDownstream, 10)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.go", "b.go"}, terminals(chains))

		chains, err = s.GetDependencies(ctx, "a.go", DirectionDownstream, 10)
		require.NoError(t, err)
		assert.Empty(t, chains)
	})

	t.Run("zero depth", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)
		chains, err := s.GetDependencies(ctx, "a.go", DirectionUpstream, 0)
		require.NoError(t, err)
		assert.Empty(t, chains)
	})

	t.Run("assess impact", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)

		res, err := s.AssessImpact(ctx, []string{"c.go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.go", "b.go"}, res.DirectlyAffected)
		assert.Equal(t, []string{"a.go", "b.go"}, res.TransitivelyAffected)
		assert.InDelta(t, 0.5, res.RiskScore, 1e-9)

		res, err = s.AssessImpact(ctx, []string{"d.go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c.go"}, res.DirectlyAffected)
		assert.Equal(t, []string{"a.go", "b.go", "c.go"}, res.TransitivelyAffected)
		assert.InDelta(t, 0.75, res.RiskScore, 1e-9)
	})

	t.Run("assess impact excludes changed modules", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)

		res, err := s.AssessImpact(ctx, []string{"c.go", "b.go"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a.go"}, res.DirectlyAffected)
		assert.Equal(t, []string{"a.go"}, res.TransitivelyAffected)
	})

	t.Run("assess impact of a leaf importer", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)

		res, err := s.AssessImpact(ctx, []string{"a.go"})
		require.NoError(t, err)
		assert.Empty(t, res.DirectlyAffected)
		assert.Empty(t, res.TransitivelyAffected)
		assert.Zero(t, res.RiskScore)
	})

	t.Run("stats", func(t *testing.T) {
		s := newStore(t)
		seedChain(t, s)
		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, stats.ModuleCount)
		assert.Equal(t, 4, stats.EdgeCount)
	})

	t.Run("populate from graph", func(t *testing.T) {
		s := newStore(t)
		g := buildTestGraph(map[string][]string{
			"src/a.ts": {"./b"},
			"src/b.ts": {"./c"},
			"src/c.ts": nil,
		})
		records := map[string]ModuleRecord{
			"src/c.ts": {Language: LangTypeScript, LOC: 12, Ca: 1, RiskScore: 0.5},
		}
		require.NoError(t, Populate(ctx, s, g, records))

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.ModuleCount)
		assert.Equal(t, 2, stats.EdgeCount)

		c, err := s.GetModule(ctx, "src/c.ts")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "src/c.ts", c.Path)
		assert.Equal(t, 12, c.LOC)

		a, err := s.GetModule(ctx, "src/a.ts")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, 0, a.Ca)
		assert.Equal(t, 1, a.Ce)

		res, err := s.AssessImpact(ctx, []string{"src/c.ts"})
		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.ts", "src/b.ts"}, res.TransitivelyAffected)
	})
}
