package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/report"
	"github.com/dusk-indust/archlint/internal/rules"
)

func newGraphCmd(a *app) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Print the module dependency graph as a Mermaid diagram",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), a, rootArg(args), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: archlint.yml in the analyzed path)")
	return cmd
}

func runGraph(ctx context.Context, a *app, root, configPath string) error {
	cfg, err := loadConfig(root, analyzeFlags{configPath: configPath})
	if err != nil {
		return err
	}
	// Rules and coupling do not affect the diagram.
	off := false
	cfg.Coupling = &off
	cfg.DisabledRules = nil

	an := analyzer.New(
		analyzer.WithLogger(a.logger()),
		analyzer.WithRegistry(emptyRegistry()),
	)
	defer an.Close()

	res, err := an.Analyze(ctx, root, cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.stdout, report.Mermaid(res.Graph))
	return err
}

// emptyRegistry runs no rules.
func emptyRegistry() *rules.Registry {
	reg, _ := rules.NewRegistry()
	return reg
}
