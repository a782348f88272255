// Package api exposes spec.md §6's nine operations over HTTP, one
// gin.HandlerFunc per operation.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/dpa/pkg/pipeline"
	"github.com/codeready-toolchain/dpa/pkg/progress"
	"github.com/codeready-toolchain/dpa/pkg/qa"
	"github.com/codeready-toolchain/dpa/pkg/retriever"
	"github.com/codeready-toolchain/dpa/pkg/services"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
	"github.com/codeready-toolchain/dpa/pkg/version"
)

// Server wires gin's router to the DPA core: document ingestion,
// pipeline orchestration, the progress bus, the retriever, and the QA
// orchestrator.
type Server struct {
	Engine *gin.Engine
	Logger *slog.Logger

	Documents   *services.DocumentService
	Blob        blob.Store
	Pipelines   *pipeline.Runner
	ProgressBus *progress.Bus
	Artifacts   *services.ArtifactWriterService
	Retriever   *retriever.Retriever
	QA          *qa.Orchestrator

	DB *sql.DB

	httpServer *http.Server
}

// NewServer builds a Server with its middleware chain installed; call
// RegisterRoutes once its service fields are populated.
func NewServer(logger *slog.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(securityHeaders())

	return &Server{
		Engine: engine,
		Logger: logger,
	}
}

// RegisterRoutes wires the nine spec.md §6 operations plus a health
// check, mapping each onto exactly one gin.HandlerFunc.
func (s *Server) RegisterRoutes() {
	s.Engine.GET("/health", s.healthHandler)

	v1 := s.Engine.Group("/api/v1")
	{
		v1.POST("/documents", s.uploadDocumentHandler)
		v1.POST("/documents/:doc_id/process", s.startProcessingHandler)
		v1.GET("/pipelines/:pipeline_id/progress", s.getPipelineProgressHandler)
		v1.GET("/pipelines/:pipeline_id/subscribe", s.subscribePipelineHandler)
		v1.POST("/pipelines/:pipeline_id/interrupt", s.interruptPipelineHandler)
		v1.POST("/pipelines/:pipeline_id/resume", s.resumePipelineHandler)
		v1.GET("/documents/:doc_id/artifacts/:type", s.getArtifactHandler)
		v1.POST("/ask", s.askHandler)
		v1.POST("/retrieve", s.retrieveHandler)
	}
}

// Start runs the HTTP server on addr until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errCh:
		return err
	}
}

// Shutdown drains in-flight requests with a bounded grace period.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	checks := gin.H{}
	status := "healthy"

	if s.DB != nil {
		dbHealth, err := healthCheckDB(c.Request.Context(), s.DB)
		if err != nil {
			status = "unhealthy"
			checks["database"] = gin.H{"status": "unhealthy", "message": err.Error()}
		} else {
			checks["database"] = gin.H{"status": dbHealth}
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"version": version.Full(),
		"checks":  checks,
	})
}
