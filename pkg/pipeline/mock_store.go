package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// MockStore is an in-memory Store for tests — same style as
// pkg/store/{vector,graph,kv,blob}.Mock.
type MockStore struct {
	mu        sync.Mutex
	pipelines map[string]*PipelineRecord
	nextID    int
}

// NewMockStore returns an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{pipelines: make(map[string]*PipelineRecord)}
}

func (m *MockStore) CreatePipeline(ctx context.Context, docID string, stages []StageType) (*PipelineRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("pipeline-%d", m.nextID)

	rec := &PipelineRecord{ID: id, DocumentID: docID}
	for _, t := range stages {
		rec.Stages = append(rec.Stages, StageRecord{
			ID: fmt.Sprintf("%s-%s", id, t), PipelineID: id, Type: t,
			Status: StatusPending, CanInterrupt: true,
		})
	}
	cp := *rec
	cp.Stages = append([]StageRecord(nil), rec.Stages...)
	m.pipelines[id] = rec
	return &cp, nil
}

func (m *MockStore) GetPipeline(ctx context.Context, pipelineID string) (*PipelineRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.pipelines[pipelineID]
	if !ok {
		return nil, fmt.Errorf("pipeline: %s not found", pipelineID)
	}
	cp := *rec
	cp.Stages = append([]StageRecord(nil), rec.Stages...)
	return &cp, nil
}

func (m *MockStore) UpdateStage(ctx context.Context, pipelineID string, stageType StageType, mutate func(*StageRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.pipelines[pipelineID]
	if !ok {
		return fmt.Errorf("pipeline: %s not found", pipelineID)
	}
	s := rec.stage(stageType)
	if s == nil {
		return fmt.Errorf("pipeline: stage %s not found on %s", stageType, pipelineID)
	}
	mutate(s)
	return nil
}

func (m *MockStore) UpdatePipeline(ctx context.Context, pipelineID string, mutate func(*PipelineRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.pipelines[pipelineID]
	if !ok {
		return fmt.Errorf("pipeline: %s not found", pipelineID)
	}
	mutate(rec)
	return nil
}

var _ Store = (*MockStore)(nil)
