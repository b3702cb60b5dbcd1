package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the architecture tools registered.
func NewMCPServer(svc *ArchService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "archlint",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_architecture",
		Description: "Analyze a repository: parse its sources with tree-sitter, build the module dependency graph, run the architecture rules and return the health score, top risks and dependency cycles. Must be called before the other tools.",
	}, svc.AnalyzeArchitecture)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_coupling_risk",
		Description: "Return the coupling risk model of the last analysis: high-risk, hub and unstable modules, or the metrics of a single module.",
	}, svc.GetCouplingRisk)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the dependency graph upstream or downstream from a module. Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of modifying a set of modules. Returns directly and transitively affected modules with a risk score.",
	}, svc.AssessImpact)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
