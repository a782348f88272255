package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/pipeline"
	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/progress"
)

// ProgressPersister implements progress.Persister: RecordEvent persists
// a ProgressEvent row and issues pg_notify in the same transaction
// (pg_notify is transactional — held until COMMIT). Snapshot reads the
// current Pipeline+Stages state for polling and for seeding a new
// subscriber.
//
// RecordEvent talks to Postgres directly over db rather than through the
// ent client's fluent builders: it needs the INSERT and the pg_notify to
// share one transaction, and ent's generated Tx type doesn't expose a raw
// ExecContext escape hatch for arbitrary SQL alongside its builders.
type ProgressPersister struct {
	db     *sql.DB
	client *ent.Client
}

// NewProgressPersister returns a ProgressPersister. db must share the
// same Postgres connection target as client — the generated ent client's
// migrations own the progress_events table this writes into directly.
func NewProgressPersister(db *sql.DB, client *ent.Client) *ProgressPersister {
	return &ProgressPersister{db: db, client: client}
}

// RecordEvent persists event and notifies subscribers listening on its
// pipeline's channel, atomically.
func (p *ProgressPersister) RecordEvent(ctx context.Context, pipelineID string, event progress.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("progress persister: marshal event: %w", err)
	}
	channel := progress.ChannelName(pipelineID)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("progress persister: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO progress_events (pipeline_id, channel, payload, created_at) VALUES ($1, $2, $3, $4)`,
		pipelineID, channel, payload, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("progress persister: insert event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", channel, payload); err != nil {
		return fmt.Errorf("progress persister: pg_notify: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("progress persister: commit: %w", err)
	}
	return nil
}

// Snapshot builds a ProgressSnapshot from the current Pipeline+Stage
// rows, the same read path get_progress uses for polling clients.
func (p *ProgressPersister) Snapshot(ctx context.Context, pipelineID string) (models.ProgressSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pl, err := p.client.Pipeline.Query().
		Where(pipeline.ID(pipelineID)).
		WithStages().
		Only(ctx)
	if err != nil {
		return models.ProgressSnapshot{}, fmt.Errorf("progress persister: load pipeline: %w", err)
	}

	snap := models.ProgressSnapshot{
		PipelineID:      pl.ID,
		DocID:           pl.DocumentID,
		OverallProgress: pl.OverallProgress,
		Interrupted:     pl.Interrupted,
		Completed:       pl.Completed,
		CanResume:       pl.CanResume,
	}
	if pl.CurrentStage != nil {
		snap.CurrentStage = *pl.CurrentStage
	}
	for _, st := range pl.Edges.Stages {
		stageSnap := models.StageSnapshot{
			Type:     string(st.Type),
			Status:   string(st.Status),
			Progress: st.Progress,
		}
		if st.Message != nil {
			stageSnap.Message = *st.Message
		}
		if st.ErrorCode != nil {
			stageSnap.ErrorCode = *st.ErrorCode
		}
		if st.DurationSeconds != nil {
			stageSnap.DurationS = st.DurationSeconds
		}
		snap.Stages = append(snap.Stages, stageSnap)
	}
	return snap, nil
}

var _ progress.Persister = (*ProgressPersister)(nil)
