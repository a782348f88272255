package models

import (
	"github.com/codeready-toolchain/dpa/ent"
)

// UploadDocumentRequest contains fields for uploading a new document.
type UploadDocumentRequest struct {
	Filename  string         `json:"filename"`
	Mime      string         `json:"mime"`
	OwnerID   string         `json:"owner_id"`
	ProjectID string         `json:"project_id"`
	Options   ProcessOptions `json:"options"`
}

// ProcessOptions enumerates which pipeline stages an upload or
// start_processing call should enable, per spec.md §6.
type ProcessOptions struct {
	UploadOnly      bool   `json:"upload_only"`
	GenerateSummary bool   `json:"generate_summary,omitempty"`
	CreateIndex     bool   `json:"create_index,omitempty"`
	BuildGraph      bool   `json:"build_graph,omitempty"`
	DeepAnalysis    bool   `json:"deep_analysis,omitempty"`
	AnalysisDepth   string `json:"analysis_depth,omitempty"` // basic|standard|deep|expert|comprehensive
}

// DocumentFilters filters a document listing.
type DocumentFilters struct {
	ProjectID string `json:"project_id,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// DocumentResponse wraps a Document with optional loaded edges.
type DocumentResponse struct {
	*ent.Document
}

// DocumentListResponse contains a paginated document list.
type DocumentListResponse struct {
	Documents  []*ent.Document `json:"documents"`
	TotalCount int             `json:"total_count"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// UploadDocumentResult is the result of upload_document per spec.md §6:
// a pipeline is only created when options enables a stage beyond upload.
type UploadDocumentResult struct {
	DocID      string  `json:"doc_id"`
	PipelineID *string `json:"pipeline_id,omitempty"`
}
