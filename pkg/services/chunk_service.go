package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/chunk"
	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
)

// ChunkService owns Chunk persistence and the document-text load path
// the Index/Analysis stages both need: read the original upload from
// (D)'s blob adapter, then hand it to (B) the Hybrid Chunker.
type ChunkService struct {
	client  *ent.Client
	Blob    blob.Store
	Chunker *chunker.Chunker
}

// NewChunkService returns a ChunkService.
func NewChunkService(client *ent.Client, blobStore blob.Store, ch *chunker.Chunker) *ChunkService {
	return &ChunkService{client: client, Blob: blobStore, Chunker: ch}
}

// LoadDocumentText reads doc's original upload from the blob store and
// returns its bytes as text. No format conversion happens here or at
// upload time (the upload handler stores the bytes it receives), so only
// plain-text and markdown sources yield usable text.
func (s *ChunkService) LoadDocumentText(ctx context.Context, doc *ent.Document) (string, error) {
	if doc.BlobRef == nil || *doc.BlobRef == "" {
		return "", fmt.Errorf("chunk service: document %s has no blob_ref", doc.ID)
	}
	r, _, err := s.Blob.Get(ctx, *doc.BlobRef)
	if err != nil {
		return "", fmt.Errorf("chunk service: get blob %s: %w", *doc.BlobRef, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("chunk service: read blob %s: %w", *doc.BlobRef, err)
	}
	return string(data), nil
}

// PersistChunks replaces docID's Chunk rows with the freshly produced
// set, keyed by content_hash for idempotent re-indexing.
func (s *ChunkService) PersistChunks(ctx context.Context, docID string, chunks []chunker.Chunk) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("chunk service: begin tx: %w", err)
	}

	if _, err := tx.Chunk.Delete().Where(chunk.DocumentID(docID)).Exec(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("chunk service: clear existing chunks: %w", err)
	}

	for _, c := range chunks {
		_, err := tx.Chunk.Create().
			SetID(c.ContentHash).
			SetDocumentID(docID).
			SetStartChar(c.StartChar).
			SetEndChar(c.EndChar).
			SetContentHash(c.ContentHash).
			SetCharCount(len(c.Text)).
			SetText(c.Text).
			SetChunkType(chunk.ChunkType(c.ChunkType)).
			SetStrategy(string(c.Strategy)).
			SetQualityScore(c.QualityScore).
			Save(ctx)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("chunk service: create chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("chunk service: commit: %w", err)
	}
	return nil
}

// ListChunks returns a document's chunks in source order.
func (s *ChunkService) ListChunks(ctx context.Context, docID string) ([]*ent.Chunk, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	chunks, err := s.client.Chunk.Query().
		Where(chunk.DocumentID(docID)).
		Order(ent.Asc(chunk.FieldStartChar)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("chunk service: list: %w", err)
	}
	return chunks, nil
}
