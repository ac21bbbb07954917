// Package server exposes the task messager as MCP tools over stdio or SSE.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/bryan-cox/taskmessager/internal/domain"
	"github.com/bryan-cox/taskmessager/internal/model"
	"github.com/bryan-cox/taskmessager/internal/request"
	"github.com/bryan-cox/taskmessager/internal/service"
	"github.com/bryan-cox/taskmessager/internal/webhook"
)

// Tool names.
const (
	ToolSendMessage = "send_google_chat_message"
	ToolListDomains = "list_domains"
)

const serverName = "task-mcp"

const instructions = `You are a helpful assistant that formats support investigation tasks
into structured messages and sends them to a Google Chat space via webhook.

Available domains / task types:
  - backend   : API, database, queue, microservice issues
  - frontend  : UI bug, rendering, performance, browser compatibility
  - devops    : CI/CD, infrastructure, Docker, cloud, deployment
  - mobile    : iOS/Android crash, build, store submission
  - data      : Data pipeline, ETL, analytics, reporting issues
  - business  : Non-technical tasks like documentation, process improvement, etc.
  - general   : Catch-all when domain is unclear

When the user describes a task, pick the most suitable domain so that
domain-specific investigation steps and acceptance criteria are pre-filled.
The user can override any field explicitly.

task_owner is the single person the task is assigned to; when the user does not
name one it defaults to the configured owner. participants are observers only
and are never the assignee.

Always confirm the filled-in card details before sending unless the user
explicitly says "gönder" or "send directly".`

// shutdownTimeout bounds graceful shutdown of the HTTP listener.
const shutdownTimeout = 5 * time.Second

// Server wires the task messager tools into an MCP server.
type Server struct {
	mcp      *server.MCPServer
	svc      *service.Service
	catalog  domain.Catalog
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// New builds the MCP server and registers its tools. gatherer may be nil, in
// which case no /metrics endpoint is served.
func New(svc *service.Service, catalog domain.Catalog, logger *slog.Logger, gatherer prometheus.Gatherer) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer(serverName, webhook.Version,
			server.WithToolCapabilities(false),
			server.WithInstructions(instructions),
			server.WithRecovery(),
		),
		svc:      svc,
		catalog:  catalog,
		logger:   logger,
		gatherer: gatherer,
	}

	sendTool, err := sendMessageTool()
	if err != nil {
		return nil, err
	}
	s.mcp.AddTool(sendTool, s.handleSendMessage)
	s.mcp.AddTool(listDomainsTool(), s.handleListDomains)
	return s, nil
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// InputSchema returns the JSON schema of the send tool's arguments.
func InputSchema() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	schema := reflector.Reflect(&model.TaskReportInput{})
	schema.Version = ""
	schema.ID = ""
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to encode input schema: %w", err)
	}
	return data, nil
}

func sendMessageTool() (mcp.Tool, error) {
	schema, err := InputSchema()
	if err != nil {
		return mcp.Tool{}, err
	}
	tool := mcp.NewToolWithRawSchema(ToolSendMessage,
		"Send a structured investigation task message to Google Chat space via webhook. "+
			"Pick the correct domain so that investigation steps and acceptance criteria are "+
			"automatically pre-filled: 'backend', 'frontend', 'devops', 'mobile', 'data', 'business', or 'general'.",
		schema)
	tool.Annotations.Title = "Send Google Chat Message"
	return tool, nil
}

func listDomainsTool() mcp.Tool {
	return mcp.NewTool(ToolListDomains,
		mcp.WithDescription("List all available task domains with their labels and default steps. Useful to understand what domain to pick."),
		mcp.WithTitleAnnotation("List Available Domains"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func (s *Server) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := request.Decode(req.GetArguments())
	if err != nil {
		s.logger.Error("failed to decode tool arguments", "tool", ToolSendMessage, "error", err)
		return jsonResult(model.WebhookResult{Success: false, Message: "Invalid input: " + err.Error()}, true)
	}

	res, _ := s.svc.SendTaskReport(ctx, in)
	return jsonResult(res, !res.Success)
}

func (s *Server) handleListDomains(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Summaries(), false)
}

func jsonResult(v any, isError bool) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(data))},
		IsError: isError,
	}, nil
}

// ServeStdio serves MCP over newline-delimited JSON-RPC on in and out until
// ctx is cancelled or in is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler for the SSE transport, including the
// health and metrics endpoints.
func (s *Server) Handler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcp, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sse)
	mux.Handle("/message", sse)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// ServeSSE listens on addr and serves the SSE transport until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting MCP server", "transport", "sse", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("sse server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			// Open SSE streams keep connections active past the deadline.
			s.logger.Warn("graceful shutdown timed out, closing connections", "error", err)
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}
