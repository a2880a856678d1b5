package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/citeline/chronology-core/internal/config"
	"github.com/citeline/chronology-core/internal/domain"
	"github.com/citeline/chronology-core/internal/pipeline"
)

// runStore keeps completed pipeline outputs addressable by run_id for the
// lifetime of the MCP process, mirroring the teacher's in-memory caching
// pattern for a server with no external database dependency.
type runStore struct {
	mu      sync.RWMutex
	outputs map[string]*domain.PipelineOutputs
}

func newRunStore() *runStore {
	return &runStore{outputs: make(map[string]*domain.PipelineOutputs)}
}

func (s *runStore) put(runID string, out *domain.PipelineOutputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[runID] = out
}

func (s *runStore) get(runID string) (*domain.PipelineOutputs, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, ok := s.outputs[runID]
	return out, ok
}

// runChronologyParams is the tool input contract: the acquired source
// documents and their already-OCR'd pages (§6 PipelineInputs, plus the
// page text an upstream OCR collaborator has already resolved).
type runChronologyParams struct {
	SourceDocuments []domain.SourceDocument  `json:"source_documents"`
	Pages           map[string][]domain.Page `json:"pages"`
	Config          *domain.RunConfig        `json:"config,omitempty"`
}

type getRunStatusParams struct {
	RunID string `json:"run_id"`
}

type getChecklistParams struct {
	RunID string `json:"run_id"`
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	configManager, err := config.NewManager()
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if err := configManager.Validate(); err != nil {
		logger.WithError(err).Fatal("configuration validation failed")
	}
	if level, err := logrus.ParseLevel(configManager.GetConfig().Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	mcpCfg := configManager.GetConfig().MCP
	orchestrator := pipeline.NewOrchestrator(logger)
	store := newRunStore()

	serverInfo := &mcp.Implementation{
		Name:    mcpCfg.ServerName,
		Version: mcpCfg.ServerVersion,
	}
	server := mcp.NewServer(serverInfo, nil)

	server.AddTool(&mcp.Tool{
		Name:        "run_chronology",
		Description: "Build a litigation-grade medical chronology from acquired source documents and return the run_id.",
	}, handleRunChronology(logger, orchestrator, store, mcpCfg.RequestTimeout))

	server.AddTool(&mcp.Tool{
		Name:        "get_run_status",
		Description: "Report a chronology run's current lifecycle status.",
	}, handleGetRunStatus(store))

	server.AddTool(&mcp.Tool{
		Name:        "get_checklist",
		Description: "Retrieve the master litigation checklist result for a completed chronology run.",
	}, handleGetChecklist(store))

	logger.WithField("server_name", mcpCfg.ServerName).Info("starting chronology MCP server")

	ctx := context.Background()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.WithError(err).Fatal("mcp server failed")
	}

	logger.Info("chronology MCP server stopped")
}

func handleRunChronology(logger *logrus.Logger, orchestrator *pipeline.Orchestrator, store *runStore, timeout time.Duration) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger.WithField("tool", "run_chronology").Info("tool invoked")

		var params runChronologyParams
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return toolError("invalid parameters", err), nil
		}
		if len(params.SourceDocuments) == 0 {
			return toolError("missing required parameter", fmt.Errorf("source_documents must contain at least one document")), nil
		}

		cfg := domain.DefaultRunConfig()
		if params.Config != nil {
			cfg = *params.Config
		}

		run := &domain.Run{
			RunID:     uuid.New().String(),
			Status:    domain.RunPending,
			StartedAt: time.Now().UTC(),
			Config:    cfg,
		}

		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		out, err := orchestrator.Run(runCtx, run, pipeline.Input{SourceDocuments: params.SourceDocuments, Pages: params.Pages})
		if err != nil {
			logger.WithError(err).WithField("run_id", run.RunID).Error("chronology run failed")
			return toolError("chronology run failed", err), nil
		}
		store.put(run.RunID, out)

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Chronology run %s completed with status %s.", run.RunID, out.Run.Status)},
			},
			Meta: map[string]any{"run_id": run.RunID, "status": out.Run.Status, "event_count": len(out.EvidenceGraph.Events)},
		}, nil
	}
}

func handleGetRunStatus(store *runStore) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params getRunStatusParams
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return toolError("invalid parameters", err), nil
		}

		out, ok := store.get(params.RunID)
		if !ok {
			return toolError("run not found", fmt.Errorf("no completed run for run_id %s", params.RunID)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Run %s status: %s", params.RunID, out.Run.Status)},
			},
			Meta: map[string]any{"run": out.Run},
		}, nil
	}
}

func handleGetChecklist(store *runStore) func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params getChecklistParams
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return toolError("invalid parameters", err), nil
		}

		out, ok := store.get(params.RunID)
		if !ok {
			return toolError("run not found", fmt.Errorf("no completed run for run_id %s", params.RunID)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Checklist for run %s: pass=%t score=%d", params.RunID, out.Chronology.Checklist.Pass, out.Chronology.Checklist.Score)},
			},
			Meta: map[string]any{"checklist": out.Chronology.Checklist},
		}, nil
	}
}

func toolError(message string, err error) *mcp.CallToolResult {
	text := fmt.Sprintf("Error: %s", message)
	if err != nil {
		text += fmt.Sprintf(" - %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
