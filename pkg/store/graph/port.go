// Package graph implements the Graph Store capability port (spec.md
// §4.D): the Advanced Document Analyzer's explore stage writes extracted
// entities/relations here, and the Hybrid Retriever's graph-fusion leg
// reads neighborhoods back out.
package graph

import "context"

// Entity is a node extracted from a document (a person, concept, term...).
type Entity struct {
	ID         string
	DocID      string
	Label      string
	Type       string
	Properties map[string]any
}

// Relation is a directed edge between two entities.
type Relation struct {
	FromID     string
	ToID       string
	Type       string
	Properties map[string]any
}

// Neighborhood is the result of a traversal query: a seed entity plus its
// directly connected entities and the relations connecting them.
type Neighborhood struct {
	Seed      Entity
	Entities  []Entity
	Relations []Relation
}

// Store is the capability port over a property graph.
type Store interface {
	UpsertEntities(ctx context.Context, entities []Entity) error
	UpsertRelations(ctx context.Context, relations []Relation) error
	Neighborhood(ctx context.Context, entityID string, depth int) (Neighborhood, error)
	// FindByLabel returns entities among docIDs whose label contains term
	// (case-insensitive), for the Hybrid Retriever's graph-fusion leg
	// (spec.md §4.E step 2: "match query terms to graph entities").
	FindByLabel(ctx context.Context, docIDs []string, term string, limit int) ([]Entity, error)
	DeleteDocument(ctx context.Context, docID string) error
	Close() error
}
