//go:build cgo

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/graph"
)

func init() {
	extraCommands = append(extraCommands, newExportKuzuCmd)
}

func newExportKuzuCmd(a *app) *cobra.Command {
	var (
		configPath string
		out        string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "export-kuzu [path]",
		Short: "Analyze a repository and write its module graph to a KuzuDB database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportKuzu(cmd.Context(), a, rootArg(args), configPath, out, force)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: archlint.yml in the analyzed path)")
	cmd.Flags().StringVar(&out, "out", ".archlint/graph", "database path")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing database at --out")
	return cmd
}

func runExportKuzu(ctx context.Context, a *app, root, configPath, out string, force bool) error {
	if err := checkExportTarget(root, out, force); err != nil {
		return err
	}

	cfg, err := loadConfig(root, analyzeFlags{configPath: configPath})
	if err != nil {
		return err
	}

	an := analyzer.New(analyzer.WithLogger(a.logger()))
	defer an.Close()

	res, err := an.Analyze(ctx, root, cfg)
	if err != nil {
		return err
	}

	// A stale write-ahead log would be replayed into the new database.
	for _, p := range []string{out, out + ".wal"} {
		if err := os.RemoveAll(p); err != nil {
			return fmt.Errorf("remove old graph: %w", err)
		}
	}
	store, err := graph.NewKuzuFileStore(out)
	if err != nil {
		return fmt.Errorf("open graph: %w", err)
	}
	defer store.Close()

	if err := graph.Populate(ctx, store, res.Graph, res.ModuleRecords()); err != nil {
		return err
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d modules and %d dependencies to %s\n", stats.ModuleCount, stats.EdgeCount, out)
	return nil
}

// checkExportTarget refuses to replace an existing path without force, and
// never replaces the analyzed tree or a directory containing it.
func checkExportTarget(root, out string, force bool) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve --out: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", root, err)
	}
	if rel, err := filepath.Rel(absOut, absRoot); err == nil && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("--out %s contains the analyzed path %s", out, root)
	}

	if _, err := os.Stat(out); err == nil {
		if !force {
			return fmt.Errorf("--out %s already exists; pass --force to replace it", out)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat --out: %w", err)
	}
	return nil
}
