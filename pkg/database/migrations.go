package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// CreateGINIndexes creates full-text search GIN indexes for PostgreSQL.
// pkg/retriever's keyword leg scores in-process (BM25 over the project's
// chunk rows), but a GIN index on chunk text still pays for itself as a
// cheap pre-filter for large projects and for operator ad-hoc search.
func CreateGINIndexes(ctx context.Context, driver *sql.Driver) error {
	db := driver.DB()

	_, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_chunks_text_gin
		ON chunks USING gin(to_tsvector('english', text))`)
	if err != nil {
		return fmt.Errorf("failed to create chunk text GIN index: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_documents_filename_gin
		ON documents USING gin(to_tsvector('english', filename))`)
	if err != nil {
		return fmt.Errorf("failed to create document filename GIN index: %w", err)
	}

	return nil
}
