package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Mock is an in-memory Store for unit tests that don't need a live
// Qdrant instance — zero-dependency since vector search here is simple
// enough to model directly.
type Mock struct {
	mu          sync.Mutex
	collections map[string]map[string]Point
}

// NewMock returns an empty Mock store.
func NewMock() *Mock {
	return &Mock{collections: make(map[string]map[string]Point)}
}

func (m *Mock) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Point)
	}
	return nil
}

func (m *Mock) Upsert(ctx context.Context, collection string, points []Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Point)
	}
	for _, p := range points {
		m.collections[collection][p.ID] = p
	}
	return nil
}

func (m *Mock) Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]ScoredPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	var scored []ScoredPoint
	for _, p := range m.collections[collection] {
		if !matchesFilter(p.Payload, opts.Filter) {
			continue
		}
		score := float32(cosine(query, p.Vector))
		if score < opts.ScoreThreshold {
			continue
		}
		sp := ScoredPoint{Point: p, Score: score}
		if !opts.WithVectors {
			sp.Vector = nil
		}
		scored = append(scored, sp)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (m *Mock) Delete(ctx context.Context, collection string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.collections[collection], id)
	}
	return nil
}

func (m *Mock) CollectionExists(ctx context.Context, collection string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.collections[collection]
	return ok, nil
}

func (m *Mock) Close() error { return nil }

func matchesFilter(payload map[string]any, filter map[string]any) bool {
	for k, v := range filter {
		if payload[k] != v {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Store = (*Mock)(nil)
var _ Store = (*QdrantStore)(nil)
