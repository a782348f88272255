package vector

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore implements Store against a real Qdrant instance. Method set
// grounded on vasic-digital-SuperAgent/internal/adapters/vectordb/qdrant's
// adapter (Upsert/Search/Delete/CollectionExists), wired here directly
// against github.com/qdrant/go-client instead of that repo's fabricated
// digital.vasic.vectordb wrapper module.
type QdrantStore struct {
	client *qdrant.Client
}

// Config holds Qdrant connection parameters.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// NewQdrantStore dials addr and returns a ready Store.
func NewQdrantStore(cfg Config) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("vector: connect qdrant: %w", err)
	}
	return &QdrantStore{client: client}, nil
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("vector: create collection %q: %w", collection, err)
	}
	return nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	pbPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		pbPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(p.Payload),
		}
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         pbPoints,
	})
	if err != nil {
		return fmt.Errorf("vector: upsert into %q: %w", collection, err)
	}
	return nil
}

func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]ScoredPoint, error) {
	limit := uint64(opts.Limit)
	if limit == 0 {
		limit = 10
	}

	req := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if opts.WithVectors {
		req.WithVectors = qdrant.NewWithVectors(true)
	}
	if opts.ScoreThreshold > 0 {
		threshold := opts.ScoreThreshold
		req.ScoreThreshold = &threshold
	}
	if len(opts.Filter) > 0 {
		req.Filter = filterFromMap(opts.Filter)
	}

	results, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vector: search %q: %w", collection, err)
	}

	out := make([]ScoredPoint, len(results))
	for i, r := range results {
		out[i] = ScoredPoint{
			Point: Point{
				ID:      pointIDString(r.Id),
				Payload: valueMapToAny(r.Payload),
			},
			Score: r.Score,
		}
		if opts.WithVectors && r.Vectors != nil {
			out[i].Vector = r.Vectors.GetVector().GetData()
		}
	}
	return out, nil
}

func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("vector: delete from %q: %w", collection, err)
	}
	return nil
}

func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("vector: collection exists %q: %w", collection, err)
	}
	return exists, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func filterFromMap(m map[string]any) *qdrant.Filter {
	var must []*qdrant.Condition
	for k, v := range m {
		must = append(must, qdrant.NewMatch(k, fmt.Sprintf("%v", v)))
	}
	return &qdrant.Filter{Must: must}
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return fmt.Sprintf("%d", id.GetNum())
}

func valueMapToAny(m map[string]*qdrant.Value) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.AsInterface()
	}
	return out
}
