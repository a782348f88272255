package pipeline

import "context"

// StageRecord is the runner's view of one ent.Stage row.
type StageRecord struct {
	ID          string
	PipelineID  string
	Type        StageType
	Status      StageStatus
	Progress    int
	Message     string
	CanInterrupt bool
	CanResume   bool
	Result      map[string]any
	ErrorCode   string
	ErrorMessage string
}

// PipelineRecord is the runner's view of one ent.Pipeline row plus its
// ordered stages.
type PipelineRecord struct {
	ID              string
	DocumentID      string
	Stages          []StageRecord
	CurrentStage    StageType
	OverallProgress float64
	Interrupted     bool
	Completed       bool
	CanResume       bool
}

func (p *PipelineRecord) stage(t StageType) *StageRecord {
	for i := range p.Stages {
		if p.Stages[i].Type == t {
			return &p.Stages[i]
		}
	}
	return nil
}

// Store is the capability port over the relational Pipeline/Stage
// tables, per the Design Note in spec.md §9 (DI'd capability ports with
// mocks instead of a global *ent.Client).
type Store interface {
	CreatePipeline(ctx context.Context, docID string, stages []StageType) (*PipelineRecord, error)
	GetPipeline(ctx context.Context, pipelineID string) (*PipelineRecord, error)
	UpdateStage(ctx context.Context, pipelineID string, stageType StageType, mutate func(*StageRecord)) error
	UpdatePipeline(ctx context.Context, pipelineID string, mutate func(*PipelineRecord)) error
}
