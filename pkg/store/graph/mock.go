package graph

import (
	"context"
	"strings"
	"sync"
)

// Mock is an in-memory Store for tests — entities kept in a map and
// relations in a slice instead of a real traversal engine, sufficient for
// exercising the
// Analyzer's explore stage without a live Neo4j instance.
type Mock struct {
	mu        sync.Mutex
	entities  map[string]Entity
	relations []Relation
}

func NewMock() *Mock {
	return &Mock{entities: make(map[string]Entity)}
}

func (m *Mock) UpsertEntities(ctx context.Context, entities []Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entities {
		m.entities[e.ID] = e
	}
	return nil
}

func (m *Mock) UpsertRelations(ctx context.Context, relations []Relation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.relations = append(m.relations, relations...)
	return nil
}

func (m *Mock) Neighborhood(ctx context.Context, entityID string, depth int) (Neighborhood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seed, ok := m.entities[entityID]
	if !ok {
		return Neighborhood{}, nil
	}

	n := Neighborhood{Seed: seed}
	frontier := map[string]bool{entityID: true}
	visited := map[string]bool{entityID: true}

	for i := 0; i < depth; i++ {
		next := map[string]bool{}
		for _, r := range m.relations {
			if frontier[r.FromID] && !visited[r.ToID] {
				next[r.ToID] = true
				n.Relations = append(n.Relations, r)
			}
			if frontier[r.ToID] && !visited[r.FromID] {
				next[r.FromID] = true
				n.Relations = append(n.Relations, r)
			}
		}
		for id := range next {
			visited[id] = true
			if e, ok := m.entities[id]; ok {
				n.Entities = append(n.Entities, e)
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return n, nil
}

func (m *Mock) FindByLabel(ctx context.Context, docIDs []string, term string, limit int) ([]Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	allowed := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		allowed[id] = true
	}
	term = strings.ToLower(term)

	var out []Entity
	for _, e := range m.entities {
		if !allowed[e.DocID] {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Label), term) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Mock) DeleteDocument(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entities {
		if e.DocID == docID {
			delete(m.entities, id)
		}
	}
	return nil
}

func (m *Mock) Close() error { return nil }

var _ Store = (*Mock)(nil)
var _ Store = (*Neo4jStore)(nil)
