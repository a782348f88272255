package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/document"
	"github.com/codeready-toolchain/dpa/pkg/models"
)

// DocumentService owns the Document entity's lifecycle — the corpus
// root every Pipeline, Chunk, and Artifact hangs off. Each method opens
// a request-scoped timeout, validates, then calls into ent.
type DocumentService struct {
	client *ent.Client
}

// NewDocumentService returns a DocumentService.
func NewDocumentService(client *ent.Client) *DocumentService {
	return &DocumentService{client: client}
}

// CreateDocument records an uploaded document's metadata (the blob
// itself goes through pkg/store/blob; blob_ref is set once that upload
// completes).
func (s *DocumentService) CreateDocument(ctx context.Context, req models.UploadDocumentRequest, blobRef string) (*ent.Document, error) {
	if req.Filename == "" {
		return nil, NewValidationError("filename", "required")
	}
	if req.ProjectID == "" {
		return nil, NewValidationError("project_id", "required")
	}
	if req.OwnerID == "" {
		return nil, NewValidationError("owner_id", "required")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	id := uuid.New().String()
	builder := s.client.Document.Create().
		SetID(id).
		SetFilename(req.Filename).
		SetMime(req.Mime).
		SetOwnerID(req.OwnerID).
		SetProjectID(req.ProjectID)
	if blobRef != "" {
		builder = builder.SetBlobRef(blobRef)
	}

	doc, err := builder.Save(ctx)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// GetDocument loads a Document by id.
func (s *DocumentService) GetDocument(ctx context.Context, docID string) (*ent.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc, err := s.client.Document.Get(ctx, docID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns a filtered, paginated document listing per
// spec.md §6's list_documents.
func (s *DocumentService) ListDocuments(ctx context.Context, filters models.DocumentFilters) (models.DocumentListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := s.client.Document.Query()
	if filters.ProjectID != "" {
		q = q.Where(document.ProjectID(filters.ProjectID))
	}
	if filters.OwnerID != "" {
		q = q.Where(document.OwnerID(filters.OwnerID))
	}
	if filters.Status != "" {
		q = q.Where(document.CurrentStatusEQ(document.CurrentStatus(filters.Status)))
	}

	total, err := q.Clone().Count(ctx)
	if err != nil {
		return models.DocumentListResponse{}, fmt.Errorf("count documents: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	docs, err := q.Order(ent.Desc(document.FieldCreatedAt)).Limit(limit).Offset(filters.Offset).All(ctx)
	if err != nil {
		return models.DocumentListResponse{}, fmt.Errorf("list documents: %w", err)
	}

	return models.DocumentListResponse{
		Documents:  docs,
		TotalCount: total,
		Limit:      limit,
		Offset:     filters.Offset,
	}, nil
}

// UpdateStatus transitions Document.current_status, e.g. when a
// pipeline's first stage starts or its last stage completes.
func (s *DocumentService) UpdateStatus(ctx context.Context, docID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.client.Document.UpdateOneID(docID).
		SetCurrentStatus(document.CurrentStatus(status)).
		Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// DeleteDocument removes a Document and, via cascading edges, its
// pipelines/chunks/artifacts.
func (s *DocumentService) DeleteDocument(ctx context.Context, docID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.client.Document.DeleteOneID(docID).Exec(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
