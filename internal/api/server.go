package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/citeline/chronology-core/internal/domain"
	"github.com/citeline/chronology-core/internal/middleware"
	"github.com/citeline/chronology-core/internal/pipeline"
)

// Server is the thin HTTP wrapper around the chronology pipeline: it
// accepts a run's already-acquired source documents and pages, drives the
// orchestrator in the background, and exposes polling + artifact retrieval.
type Server struct {
	configManager domain.ConfigManager
	repo          domain.Repository
	orchestrator  *pipeline.Orchestrator
	log           *logrus.Logger
	router        *gin.Engine
	server        *http.Server

	mu       sync.RWMutex
	outputs  map[string]*domain.PipelineOutputs
	progress *progressBroadcaster
}

// NewServer creates a new HTTP server instance.
func NewServer(configManager domain.ConfigManager, repo domain.Repository, orchestrator *pipeline.Orchestrator, log *logrus.Logger) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.RequestTimeout(cfg.Server.WriteTimeout))
	router.Use(corsMiddleware())

	server := &Server{
		configManager: configManager,
		repo:          repo,
		orchestrator:  orchestrator,
		log:           log,
		router:        router,
		outputs:       make(map[string]*domain.PipelineOutputs),
		progress:      newProgressBroadcaster(),
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("server listener stopped unexpectedly")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/runs", s.handleCreateRun)
		v1.GET("/runs/:id", s.handleGetRun)
		v1.GET("/runs/:id/artifacts/:kind", s.handleGetArtifact)
		v1.GET("/runs/:id/stream", s.handleStreamRun)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "0.1.0",
	})
}

// createRunRequest is the §6 PipelineInputs contract plus the pre-acquired
// page text the OCR collaborator (a black box outside the core) has already
// resolved for each source document.
type createRunRequest struct {
	SourceDocuments []domain.SourceDocument    `json:"source_documents" binding:"required,min=1"`
	Pages           map[string][]domain.Page   `json:"pages" binding:"required"`
	Config          *domain.RunConfig          `json:"config"`
}

// handleCreateRun starts a new chronology run. The run executes in the
// background; callers poll GET /runs/:id for its terminal status.
func (s *Server) handleCreateRun(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := domain.DefaultRunConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	run := &domain.Run{
		RunID:     uuid.New().String(),
		Status:    domain.RunPending,
		StartedAt: time.Now().UTC(),
		Config:    cfg,
	}

	if err := s.repo.SaveRun(c.Request.Context(), run); err != nil {
		s.log.WithError(err).WithField("run_id", run.RunID).Error("failed to persist pending run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create run"})
		return
	}

	go s.runInBackground(run, pipeline.Input{
		SourceDocuments: req.SourceDocuments,
		Pages:           req.Pages,
		Progress:        func(stage string) { s.progress.publish(run.RunID, stage) },
	})

	c.JSON(http.StatusAccepted, gin.H{"run_id": run.RunID, "status": run.Status})
}

func (s *Server) runInBackground(run *domain.Run, input pipeline.Input) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	out, err := s.orchestrator.Run(ctx, run, input)
	if err != nil {
		s.log.WithError(err).WithField("run_id", run.RunID).Error("run failed")
		s.progress.publish(run.RunID, "completed")
	}

	if saveErr := s.repo.SaveRun(ctx, run); saveErr != nil {
		s.log.WithError(saveErr).WithField("run_id", run.RunID).Error("failed to persist completed run")
	}
	if out == nil {
		return
	}
	if saveErr := s.repo.SaveEvidenceGraph(ctx, run.RunID, &out.EvidenceGraph); saveErr != nil {
		s.log.WithError(saveErr).WithField("run_id", run.RunID).Error("failed to persist evidence graph")
	}
	if saveErr := s.repo.SaveArtifactRefs(ctx, run.RunID, out.Chronology.Exports); saveErr != nil {
		s.log.WithError(saveErr).WithField("run_id", run.RunID).Error("failed to persist artifact refs")
	}

	s.mu.Lock()
	s.outputs[run.RunID] = out
	s.mu.Unlock()
}

// handleGetRun reports a run's current lifecycle status plus, once
// terminal, its checklist result and render manifest.
func (s *Server) handleGetRun(c *gin.Context) {
	runID := c.Param("id")

	run, err := s.repo.LoadRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	resp := gin.H{"run": run}

	s.mu.RLock()
	out, ok := s.outputs[runID]
	s.mu.RUnlock()
	if ok {
		resp["checklist"] = out.Chronology.Checklist
		resp["render_manifest"] = out.Chronology.RenderManifest
		resp["claim_edges"] = out.EvidenceGraph.ClaimEdges
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetArtifact returns the ArtifactRef (uri, sha256, byte count) of one
// rendered export from the in-process output cache. It does not serve the
// export's bytes, and it answers 404 when the run's output is not cached.
func (s *Server) handleGetArtifact(c *gin.Context) {
	runID := c.Param("id")
	kind := c.Param("kind")

	s.mu.RLock()
	out, ok := s.outputs[runID]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run output not available"})
		return
	}

	var ref domain.ArtifactRef
	switch kind {
	case "pdf":
		ref = out.Chronology.Exports.PDF
	case "csv":
		ref = out.Chronology.Exports.CSV
	case "docx":
		ref = out.Chronology.Exports.DOCX
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown artifact kind"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": ref})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
