package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/archlint/internal/analyzer"
	"github.com/dusk-indust/archlint/internal/mcptools"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the MCP tool server on stdio, or on HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	return cmd
}

func runServe(ctx context.Context, a *app, addr string) error {
	logger := a.logger()
	an := analyzer.New(analyzer.WithLogger(logger))
	defer an.Close()

	svc := mcptools.NewArchService(an, mcptools.WithServiceLogger(logger))
	defer svc.Close()

	server := mcptools.NewMCPServer(svc)
	if addr != "" {
		logger.Info("serving MCP over HTTP", "addr", addr)
		return mcptools.RunHTTP(ctx, server, addr)
	}
	return mcptools.RunStdio(ctx, server)
}
