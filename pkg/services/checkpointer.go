package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/dpa/pkg/analyzer"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
)

// BlobCheckpointer implements analyzer.Checkpointer over the blob store,
// per spec.md §4.F: "after every stage the state object is serialized to
// a durable checkpoint". Keyed by (doc_id, run_id) so a resumed run finds
// its own history without colliding with a concurrent run on the same
// document.
type BlobCheckpointer struct {
	store blob.Store
}

// NewBlobCheckpointer returns a BlobCheckpointer.
func NewBlobCheckpointer(store blob.Store) *BlobCheckpointer {
	return &BlobCheckpointer{store: store}
}

func checkpointKey(docID, runID string) string {
	return fmt.Sprintf("checkpoints/%s/%s.json", docID, runID)
}

// SaveCheckpoint serializes state to JSON and writes it to the blob
// store, overwriting any prior checkpoint for this run.
func (c *BlobCheckpointer) SaveCheckpoint(ctx context.Context, state *analyzer.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpointer: marshal: %w", err)
	}
	key := checkpointKey(state.DocID, state.RunID)
	if err := c.store.Put(ctx, key, bytes.NewReader(b), int64(len(b)), "application/json"); err != nil {
		return fmt.Errorf("checkpointer: put %s: %w", key, err)
	}
	return nil
}

// LoadCheckpoint reads back the last saved state for (docID, runID). The
// caller is responsible for re-populating State.Text, which is never
// checkpointed (see analyzer.State.Text's json:"-" tag).
func (c *BlobCheckpointer) LoadCheckpoint(ctx context.Context, docID, runID string) (*analyzer.State, error) {
	key := checkpointKey(docID, runID)
	r, _, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checkpointer: get %s: %w", key, err)
	}
	defer r.Close()

	var state analyzer.State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("checkpointer: decode %s: %w", key, err)
	}
	return &state, nil
}

var _ analyzer.Checkpointer = (*BlobCheckpointer)(nil)
