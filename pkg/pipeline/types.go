// Package pipeline implements the Processing Pipeline (spec.md §4.G):
// given a document and a requested subset of {SUMMARY, INDEX, GRAPH,
// ANALYSIS}, drives those Stages in fixed order with checkpointing,
// interrupt/resume, and a bounded per-stage timeout.
package pipeline

import "time"

// StageType is one of spec.md §4.G's four delegated stage kinds, fixed
// execution order SUMMARY < INDEX < GRAPH < ANALYSIS (mirrors the ent
// Stage.type enum — see ent/schema/stage.go).
type StageType string

const (
	StageSummary  StageType = "SUMMARY"
	StageIndex    StageType = "INDEX"
	StageGraph    StageType = "GRAPH"
	StageAnalysis StageType = "ANALYSIS"
)

// stageOrder is the Pipeline's fixed stage sequence.
var stageOrder = []StageType{StageSummary, StageIndex, StageGraph, StageAnalysis}

// stageWeights are the fixed per-type weights for the overall-progress
// weighted mean, per spec.md §4.G ("weights fixed per stage type, INDEX
// heaviest").
var stageWeights = map[StageType]float64{
	StageSummary:  1,
	StageIndex:    4,
	StageGraph:    2,
	StageAnalysis: 3,
}

// StageStatus mirrors ent.Stage.status.
type StageStatus string

const (
	StatusPending   StageStatus = "pending"
	StatusRunning   StageStatus = "running"
	StatusCompleted StageStatus = "completed"
	StatusFailed    StageStatus = "failed"
	StatusCancelled StageStatus = "cancelled"
)

func (s StageStatus) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// DefaultStageTimeout is spec.md §4.G's "overall stage timeout (default
// 10 minutes)".
const DefaultStageTimeout = 10 * time.Minute

// ProgressFunc reports a stage's progress; implementations must treat
// percent as monotonically non-decreasing (the runner enforces this
// regardless — see clampProgress in pipeline.go).
type ProgressFunc func(percent int, message string)

// Options is the subset of stages a pipeline run should execute, plus the
// analysis depth to use if ANALYSIS is included — mirrors
// models.ProcessOptions but scoped to what the runner needs.
type Options struct {
	Summary       bool
	Index         bool
	Graph         bool
	Analysis      bool
	AnalysisDepth string
}

// requestedStages returns stageOrder filtered to what Options enabled.
func (o Options) requestedStages() []StageType {
	enabled := map[StageType]bool{
		StageSummary:  o.Summary,
		StageIndex:    o.Index,
		StageGraph:    o.Graph,
		StageAnalysis: o.Analysis,
	}
	var out []StageType
	for _, t := range stageOrder {
		if enabled[t] {
			out = append(out, t)
		}
	}
	return out
}
