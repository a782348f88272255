package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements Store against a real Neo4j instance. Grounded on
// vasic-digital-SuperAgent's go.mod carrying neo4j-go-driver as an unwired
// dependency — DPA gives it a concrete home as the Graph Store adapter.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore dials uri with basic auth.
func NewNeo4jStore(ctx context.Context, uri, username, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("graph: connect neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graph: verify connectivity: %w", err)
	}
	return &Neo4jStore{driver: driver}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
}

func (s *Neo4jStore) UpsertEntities(ctx context.Context, entities []Entity) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, e := range entities {
			_, err := tx.Run(ctx,
				`MERGE (n:Entity {id: $id})
				 SET n.doc_id = $doc_id, n.label = $label, n.type = $type, n.properties = $properties`,
				map[string]any{
					"id":         e.ID,
					"doc_id":     e.DocID,
					"label":      e.Label,
					"type":       e.Type,
					"properties": e.Properties,
				})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: upsert entities: %w", err)
	}
	return nil
}

func (s *Neo4jStore) UpsertRelations(ctx context.Context, relations []Relation) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, r := range relations {
			_, err := tx.Run(ctx,
				`MATCH (a:Entity {id: $from_id}), (b:Entity {id: $to_id})
				 MERGE (a)-[rel:RELATES {type: $type}]->(b)
				 SET rel.properties = $properties`,
				map[string]any{
					"from_id":    r.FromID,
					"to_id":      r.ToID,
					"type":       r.Type,
					"properties": r.Properties,
				})
			if err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: upsert relations: %w", err)
	}
	return nil
}

// Neighborhood fills Seed and Entities; Relations is left empty. A seed
// with no relations yields an error, since the MATCH returns no row.
func (s *Neo4jStore) Neighborhood(ctx context.Context, entityID string, depth int) (Neighborhood, error) {
	if depth <= 0 {
		depth = 1
	}
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(
			`MATCH (seed:Entity {id: $id})-[rel:RELATES*1..%d]-(neighbor:Entity)
			 RETURN seed, collect(DISTINCT neighbor) AS neighbors, collect(DISTINCT rel) AS rels`,
			depth)
		res, err := tx.Run(ctx, query, map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	if err != nil {
		return Neighborhood{}, fmt.Errorf("graph: neighborhood of %q: %w", entityID, err)
	}

	record, ok := result.(*neo4j.Record)
	if !ok {
		return Neighborhood{}, fmt.Errorf("graph: unexpected result type for neighborhood of %q", entityID)
	}
	return recordToNeighborhood(record)
}

func (s *Neo4jStore) FindByLabel(ctx context.Context, docIDs []string, term string, limit int) ([]Entity, error) {
	if limit <= 0 {
		limit = 10
	}
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			`MATCH (n:Entity)
			 WHERE n.doc_id IN $doc_ids AND toLower(n.label) CONTAINS toLower($term)
			 RETURN n LIMIT $limit`,
			map[string]any{"doc_ids": docIDs, "term": term, "limit": limit})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("graph: find by label %q: %w", term, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("graph: unexpected result type for find by label %q", term)
	}

	entities := make([]Entity, 0, len(records))
	for _, record := range records {
		node, _, err := neo4j.GetRecordValue[neo4j.Node](record, "n")
		if err != nil {
			continue
		}
		entities = append(entities, nodeToEntity(node))
	}
	return entities, nil
}

func (s *Neo4jStore) DeleteDocument(ctx context.Context, docID string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, `MATCH (n:Entity {doc_id: $doc_id}) DETACH DELETE n`, map[string]any{"doc_id": docID})
	})
	if err != nil {
		return fmt.Errorf("graph: delete document %q: %w", docID, err)
	}
	return nil
}

func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func recordToNeighborhood(record *neo4j.Record) (Neighborhood, error) {
	seedNode, _, err := neo4j.GetRecordValue[neo4j.Node](record, "seed")
	if err != nil {
		return Neighborhood{}, fmt.Errorf("graph: missing seed node: %w", err)
	}

	neighbors, _, err := neo4j.GetRecordValue[[]any](record, "neighbors")
	if err != nil {
		return Neighborhood{}, fmt.Errorf("graph: missing neighbors: %w", err)
	}

	n := Neighborhood{Seed: nodeToEntity(seedNode)}
	for _, raw := range neighbors {
		if node, ok := raw.(neo4j.Node); ok {
			n.Entities = append(n.Entities, nodeToEntity(node))
		}
	}
	return n, nil
}

func nodeToEntity(node neo4j.Node) Entity {
	e := Entity{Properties: map[string]any{}}
	if v, ok := node.Props["id"].(string); ok {
		e.ID = v
	}
	if v, ok := node.Props["doc_id"].(string); ok {
		e.DocID = v
	}
	if v, ok := node.Props["label"].(string); ok {
		e.Label = v
	}
	if v, ok := node.Props["type"].(string); ok {
		e.Type = v
	}
	if v, ok := node.Props["properties"].(map[string]any); ok {
		e.Properties = v
	}
	return e
}
