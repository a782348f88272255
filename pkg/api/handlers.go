package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/codeready-toolchain/dpa/ent/artifact"
	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/pipeline"
	"github.com/codeready-toolchain/dpa/pkg/progress"
	"github.com/codeready-toolchain/dpa/pkg/services"
)

// uploadDocumentRequest is the multipart-free JSON-plus-base64 shape
// used by upload_document. A raw multipart/form-data endpoint would
// need its own binding logic; this JSON shape keeps the handler
// symmetric with the other eight operations.
type uploadDocumentRequest struct {
	Filename  string                `json:"filename" binding:"required"`
	Mime      string                `json:"mime"`
	ProjectID string                `json:"project_id" binding:"required"`
	Content   []byte                `json:"content" binding:"required"`
	Options   models.ProcessOptions `json:"options"`
}

// uploadDocumentHandler implements spec.md §6's
// upload_document(bytes, filename, project_id, owner_id, options).
func (s *Server) uploadDocumentHandler(c *gin.Context) {
	var req uploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownerID := extractOwner(c)
	ctx := c.Request.Context()

	blobRef := uuid.New().String()
	if err := s.Blob.Put(ctx, blobRef, bytes.NewReader(req.Content), int64(len(req.Content)), req.Mime); err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}

	doc, err := s.Documents.CreateDocument(ctx, models.UploadDocumentRequest{
		Filename:  req.Filename,
		Mime:      req.Mime,
		OwnerID:   ownerID,
		ProjectID: req.ProjectID,
		Options:   req.Options,
	}, blobRef)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}

	result := models.UploadDocumentResult{DocID: doc.ID}
	opts := processOptionsToPipeline(req.Options)
	if !req.Options.UploadOnly && (opts.Summary || opts.Index || opts.Graph || opts.Analysis) {
		rec, err := s.Pipelines.Start(ctx, doc.ID, opts)
		if err != nil {
			writeServiceError(c, s.Logger, err)
			return
		}
		result.PipelineID = &rec.ID
	}

	c.JSON(http.StatusCreated, result)
}

// startProcessingHandler implements start_processing(doc_id, options).
func (s *Server) startProcessingHandler(c *gin.Context) {
	docID := c.Param("doc_id")

	var opts models.ProcessOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.Pipelines.Start(c.Request.Context(), docID, processOptionsToPipeline(opts))
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"pipeline_id": rec.ID})
}

// getPipelineProgressHandler implements get_pipeline_progress(pipeline_id).
func (s *Server) getPipelineProgressHandler(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	rec, err := s.Pipelines.Snapshot(c.Request.Context(), pipelineID)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, progress.Snapshot(*rec))
}

// interruptPipelineHandler implements interrupt_pipeline(pipeline_id).
func (s *Server) interruptPipelineHandler(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	if err := s.Pipelines.Interrupt(c.Request.Context(), pipelineID); err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, models.InterruptResult{OK: true})
}

// resumePipelineHandler implements resume_pipeline(pipeline_id).
func (s *Server) resumePipelineHandler(c *gin.Context) {
	pipelineID := c.Param("pipeline_id")

	rec, err := s.Pipelines.Snapshot(c.Request.Context(), pipelineID)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}

	if err := s.Pipelines.Resume(c.Request.Context(), pipelineID, stagesToOptions(rec.Stages)); err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, models.ResumeResult{OK: true})
}

// getArtifactHandler implements get_artifact(doc_id, type).
func (s *Server) getArtifactHandler(c *gin.Context) {
	docID := c.Param("doc_id")
	artifactType := c.Param("type")
	if !artifactTypeValid(artifactType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown artifact type"})
		return
	}

	a, err := s.Artifacts.GetLatest(c.Request.Context(), docID, artifactType)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
			return
		}
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, models.ArtifactResponse{Artifact: a})
}

// askHandler implements ask(question, project_id, conversation_id?).
func (s *Server) askHandler(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := s.QA.Answer(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

// retrieveHandler implements retrieve(query, project_id, options).
func (s *Server) retrieveHandler(c *gin.Context) {
	var req struct {
		Query     string                 `json:"query" binding:"required"`
		ProjectID string                 `json:"project_id" binding:"required"`
		Options   models.RetrieveOptions `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.Retriever.Retrieve(c.Request.Context(), req.Query, req.ProjectID, req.Options)
	if err != nil {
		writeServiceError(c, s.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// stagesToOptions rebuilds the stage selection a pipeline was originally
// started with from its persisted Stage rows, so resume_pipeline doesn't
// need the caller to resend the original options.
func stagesToOptions(stages []pipeline.StageRecord) pipeline.Options {
	var opts pipeline.Options
	for _, st := range stages {
		switch st.Type {
		case pipeline.StageSummary:
			opts.Summary = true
		case pipeline.StageIndex:
			opts.Index = true
		case pipeline.StageGraph:
			opts.Graph = true
		case pipeline.StageAnalysis:
			opts.Analysis = true
		}
	}
	return opts
}

func processOptionsToPipeline(opts models.ProcessOptions) pipeline.Options {
	return pipeline.Options{
		Summary:       opts.GenerateSummary,
		Index:         opts.CreateIndex,
		Graph:         opts.BuildGraph,
		Analysis:      opts.DeepAnalysis,
		AnalysisDepth: opts.AnalysisDepth,
	}
}

// artifactTypeValid guards getArtifactHandler's :type path param against
// values ent's enum doesn't recognize, surfacing a 400 instead of a
// confusing not-found.
func artifactTypeValid(t string) bool {
	switch artifact.Type(t) {
	case artifact.TypeSummary, artifact.TypeOutline, artifact.TypeAnalysisReport, artifact.TypeKnowledgeGraph:
		return true
	default:
		return false
	}
}
