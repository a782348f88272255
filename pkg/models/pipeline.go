package models

import (
	"github.com/codeready-toolchain/dpa/ent"
)

// PipelineResponse wraps a Pipeline with optional loaded edges.
type PipelineResponse struct {
	*ent.Pipeline
}

// ProgressSnapshot is the response of get_pipeline_progress (spec.md §6):
// a read-path computed from persisted Stages, used both for polling and
// as the initial state sent to a new subscriber.
type ProgressSnapshot struct {
	PipelineID      string          `json:"pipeline_id"`
	DocID           string          `json:"doc_id"`
	CurrentStage    string          `json:"current_stage,omitempty"`
	OverallProgress float64         `json:"overall_progress"`
	Interrupted     bool            `json:"interrupted"`
	Completed       bool            `json:"completed"`
	CanResume       bool            `json:"can_resume"`
	Stages          []StageSnapshot `json:"stages"`
}

// StageSnapshot is the per-stage status view embedded in ProgressSnapshot
// and in the event payload shape of spec.md §6.
type StageSnapshot struct {
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Progress   int     `json:"progress"`
	Message    string  `json:"message,omitempty"`
	ErrorCode  string  `json:"error_code,omitempty"`
	DurationS  *int    `json:"duration_seconds,omitempty"`
}

// InterruptResult is the response of interrupt_pipeline.
type InterruptResult struct {
	OK bool `json:"ok"`
}

// ResumeResult is the response of resume_pipeline.
type ResumeResult struct {
	OK bool `json:"ok"`
}
