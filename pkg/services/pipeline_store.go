package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/pipeline"
	"github.com/codeready-toolchain/dpa/ent/stage"
	pipelinepkg "github.com/codeready-toolchain/dpa/pkg/pipeline"
)

// PipelineStore implements pipeline.Store over ent, the concrete
// persistence pkg/pipeline.Runner was built to sit on top of via a
// capability port rather than a direct *ent.Client dependency (see
// DESIGN.md's pkg/pipeline entry), applying per-row status transitions
// via UpdateOneID to the Stage row found by its pipeline id and its fixed
// SUMMARY/INDEX/GRAPH/ANALYSIS type.
type PipelineStore struct {
	client *ent.Client
}

// NewPipelineStore returns a PipelineStore.
func NewPipelineStore(client *ent.Client) *PipelineStore {
	return &PipelineStore{client: client}
}

func (s *PipelineStore) CreatePipeline(ctx context.Context, docID string, stages []pipelinepkg.StageType) (*pipelinepkg.PipelineRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline store: begin tx: %w", err)
	}

	id := uuid.New().String()
	_, err = tx.Pipeline.Create().
		SetID(id).
		SetDocumentID(docID).
		SetOptions(map[string]interface{}{"stages": stageNames(stages)}).
		Save(ctx)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("pipeline store: create pipeline: %w", err)
	}

	rec := &pipelinepkg.PipelineRecord{ID: id, DocumentID: docID}
	for _, t := range stages {
		stageID := uuid.New().String()
		_, err = tx.Stage.Create().
			SetID(stageID).
			SetPipelineID(id).
			SetType(stage.Type(t)).
			Save(ctx)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("pipeline store: create stage %s: %w", t, err)
		}
		rec.Stages = append(rec.Stages, pipelinepkg.StageRecord{
			ID: stageID, PipelineID: id, Type: t,
			Status: pipelinepkg.StatusPending, CanInterrupt: true,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pipeline store: commit: %w", err)
	}
	return rec, nil
}

func (s *PipelineStore) GetPipeline(ctx context.Context, pipelineID string) (*pipelinepkg.PipelineRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := s.client.Pipeline.Query().
		Where(pipeline.ID(pipelineID)).
		WithStages().
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("pipeline store: %s not found", pipelineID)
		}
		return nil, fmt.Errorf("pipeline store: get: %w", err)
	}
	return toPipelineRecord(p), nil
}

func (s *PipelineStore) UpdateStage(ctx context.Context, pipelineID string, stageType pipelinepkg.StageType, mutate func(*pipelinepkg.StageRecord)) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	st, err := s.client.Stage.Query().
		Where(stage.PipelineID(pipelineID), stage.TypeEQ(stage.Type(stageType))).
		Only(ctx)
	if err != nil {
		return fmt.Errorf("pipeline store: load stage %s/%s: %w", pipelineID, stageType, err)
	}

	rec := toStageRecord(st)
	mutate(&rec)

	upd := s.client.Stage.UpdateOneID(st.ID).
		SetStatus(stage.Status(rec.Status)).
		SetProgress(rec.Progress).
		SetCanInterrupt(rec.CanInterrupt)
	if rec.Message != "" {
		upd = upd.SetMessage(rec.Message)
	}
	if rec.ErrorCode != "" {
		upd = upd.SetErrorCode(rec.ErrorCode)
	}
	if rec.ErrorMessage != "" {
		upd = upd.SetErrorMessage(rec.ErrorMessage)
	}
	if rec.Result != nil {
		upd = upd.SetResult(rec.Result)
	}
	if err := upd.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline store: update stage: %w", err)
	}
	return nil
}

func (s *PipelineStore) UpdatePipeline(ctx context.Context, pipelineID string, mutate func(*pipelinepkg.PipelineRecord)) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := s.client.Pipeline.Query().Where(pipeline.ID(pipelineID)).WithStages().Only(ctx)
	if err != nil {
		return fmt.Errorf("pipeline store: load pipeline: %w", err)
	}

	rec := toPipelineRecord(p)
	mutate(rec)

	upd := s.client.Pipeline.UpdateOneID(pipelineID).
		SetInterrupted(rec.Interrupted).
		SetCompleted(rec.Completed).
		SetCanResume(rec.CanResume).
		SetOverallProgress(rec.OverallProgress)
	if rec.CurrentStage != "" {
		upd = upd.SetCurrentStage(rec.CurrentStage)
	}
	if err := upd.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline store: update pipeline: %w", err)
	}
	return nil
}

func stageNames(stages []pipelinepkg.StageType) []string {
	out := make([]string, len(stages))
	for i, t := range stages {
		out[i] = string(t)
	}
	return out
}

func toStageRecord(st *ent.Stage) pipelinepkg.StageRecord {
	rec := pipelinepkg.StageRecord{
		ID:           st.ID,
		PipelineID:   st.PipelineID,
		Type:         pipelinepkg.StageType(st.Type),
		Status:       pipelinepkg.StageStatus(st.Status),
		Progress:     st.Progress,
		CanInterrupt: st.CanInterrupt,
	}
	if st.Message != nil {
		rec.Message = *st.Message
	}
	if st.ErrorCode != nil {
		rec.ErrorCode = *st.ErrorCode
	}
	if st.ErrorMessage != nil {
		rec.ErrorMessage = *st.ErrorMessage
	}
	if st.Result != nil {
		rec.Result = st.Result
	}
	return rec
}

func toPipelineRecord(p *ent.Pipeline) *pipelinepkg.PipelineRecord {
	rec := &pipelinepkg.PipelineRecord{
		ID:              p.ID,
		DocumentID:      p.DocumentID,
		OverallProgress: p.OverallProgress,
		Interrupted:     p.Interrupted,
		Completed:       p.Completed,
		CanResume:       p.CanResume,
	}
	if p.CurrentStage != nil {
		rec.CurrentStage = *p.CurrentStage
	}
	for _, st := range p.Edges.Stages {
		rec.Stages = append(rec.Stages, toStageRecord(st))
	}
	return rec
}

var _ pipelinepkg.Store = (*PipelineStore)(nil)
