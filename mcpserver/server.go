// Package mcpserver exposes issue triage as MCP tools.
//
// Example:
//
//	reg := workflow.NewRegistry()
//	reg.Register(wf)
//
//	if err := mcpserver.ServeStdio(reg, mcpserver.WithHistory(history)); err != nil {
//	    log.Fatal(err)
//	}
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetersoncode/triage"
	"github.com/spetersoncode/triage/pipeline"
	"github.com/spetersoncode/triage/store"
	"github.com/spetersoncode/triage/workflow"
)

// Tool names.
const (
	ToolTriageIssue = "triage_issue"
	ToolListRuns    = "list_runs"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
	history *store.Store
	runOpts []workflow.RunOption
	logger  *slog.Logger
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithHistory enables the list_runs tool.
func WithHistory(s *store.Store) ServerOption {
	return func(c *serverConfig) {
		c.history = s
	}
}

// WithRunOptions applies opts to every triage run.
func WithRunOptions(opts ...workflow.RunOption) ServerOption {
	return func(c *serverConfig) {
		c.runOpts = append(c.runOpts, opts...)
	}
}

// WithLogger sets the logger for tool calls.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// NewServer creates an MCP server backed by the triage workflows in reg.
// pipeline.WorkflowID must be registered; pipeline.PreviewWorkflowID is used
// for dry runs when present.
func NewServer(reg *workflow.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "triage",
		version: "1.0.0",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(triageTool(), triageHandler(reg, cfg))
	if cfg.history != nil {
		s.AddTool(listRunsTool(), listRunsHandler(cfg.history))
	}
	return s
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
func ServeStdio(reg *workflow.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(reg, opts...))
}

func triageTool() mcp.Tool {
	return mcp.NewTool(ToolTriageIssue,
		mcp.WithDescription("Recommend labels for a GitHub issue from the repository's label catalog and optionally apply them"),
		mcp.WithString("owner", mcp.Required(), mcp.Description("Repository owner")),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository name")),
		mcp.WithNumber("issueNumber", mcp.Required(), mcp.Description("Issue number")),
		mcp.WithBoolean("dryRun", mcp.Description("Recommend labels without applying them")),
	)
}

func triageHandler(reg *workflow.Registry, cfg *serverConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		owner, err := req.RequireString("owner")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		repo, err := req.RequireString("repo")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		number, err := req.RequireInt("issueNumber")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		id := pipeline.WorkflowID
		if req.GetBool("dryRun", false) {
			id = pipeline.PreviewWorkflowID
		}
		wf := reg.Get(id)
		if wf == nil {
			return mcp.NewToolResultError(fmt.Sprintf("workflow %q is not available", id)), nil
		}

		ref := triage.IssueReference{Owner: owner, Repo: repo, Number: number}
		log := cfg.logger.With("tool", ToolTriageIssue, "issue", ref.String(), "workflow", id)
		log.Info("tool call started")

		out, res, err := pipeline.Triage(ctx, wf, ref, cfg.runOpts...)
		if err != nil {
			log.Warn("tool call failed", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		log.Info("tool call completed", "run_id", res.RunID, "labels", len(out.Labels))

		data, err := json.Marshal(out)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func listRunsTool() mcp.Tool {
	return mcp.NewTool(ToolListRuns,
		mcp.WithDescription("List recent triage runs, most recent first"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs to return (default 20)")),
		mcp.WithString("status", mcp.Description("Only return runs with this status"), mcp.Enum("success", "failed", "suspended")),
	)
}

func listRunsHandler(history *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := history.List(ctx, store.ListOptions{
			Limit:  req.GetInt("limit", 20),
			Status: req.GetString("status", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if records == nil {
			records = []store.RunRecord{}
		}
		data, err := json.Marshal(records)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
