package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/document"
	"github.com/codeready-toolchain/dpa/pkg/retriever"
	"github.com/codeready-toolchain/dpa/pkg/store/graph"
)

// chunkTextByID loads a chunk's text for a resolved keyword hit, since
// retriever.KeywordHit only carries an id+score.
func (s *GraphSearcherService) chunkTextByID(ctx context.Context, chunkID string) string {
	c, err := s.client.Chunk.Get(ctx, chunkID)
	if err != nil {
		return ""
	}
	return c.Text
}

// GraphSearcherService implements retriever.GraphSearcher: it matches
// query terms against extracted entity labels, then reads each match's
// neighborhood, and maps the resulting entities back to representative
// chunks via a keyword lookup on the entity's label — entities don't
// themselves carry a source chunk id (see analyzer.Entity), so this is
// an approximation of spec.md §4.E step 2 rather than an exact join.
type GraphSearcherService struct {
	client   *ent.Client
	graph    graph.Store
	keywords *KeywordSearcherService
}

// NewGraphSearcherService returns a GraphSearcherService.
func NewGraphSearcherService(client *ent.Client, store graph.Store, keywords *KeywordSearcherService) *GraphSearcherService {
	return &GraphSearcherService{client: client, graph: store, keywords: keywords}
}

// Search finds entities in projectID's documents whose label matches a
// query term, expands one hop via Neighborhood, and resolves each
// distinct label to its best-matching chunk.
func (s *GraphSearcherService) Search(ctx context.Context, query, projectID string, limit int) ([]retriever.GraphHit, error) {
	docIDs, err := s.client.Document.Query().
		Where(document.ProjectID(projectID)).
		IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph searcher: load document ids: %w", err)
	}
	if len(docIDs) == 0 {
		return nil, nil
	}

	seen := map[string]bool{}
	var hits []retriever.GraphHit

	for _, term := range queryTerms(query) {
		matches, err := s.graph.FindByLabel(ctx, docIDs, term, limit)
		if err != nil {
			return nil, fmt.Errorf("graph searcher: find by label %q: %w", term, err)
		}
		for _, entity := range matches {
			neighborhood, err := s.graph.Neighborhood(ctx, entity.ID, 1)
			if err != nil {
				continue
			}
			labels := []string{neighborhood.Seed.Label}
			for _, n := range neighborhood.Entities {
				labels = append(labels, n.Label)
			}
			for i, label := range labels {
				if label == "" || seen[label] {
					continue
				}
				seen[label] = true
				kwHits, err := s.keywords.Search(ctx, label, projectID, 1)
				if err != nil || len(kwHits) == 0 {
					continue
				}
				score := 1.0 / float64(i+1)
				hits = append(hits, retriever.GraphHit{
					ChunkID: kwHits[0].ChunkID,
					Text:    s.chunkTextByID(ctx, kwHits[0].ChunkID),
					Score:   score,
				})
			}
			if limit > 0 && len(hits) >= limit {
				return hits[:limit], nil
			}
		}
	}
	return hits, nil
}

func queryTerms(query string) []string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}

var _ retriever.GraphSearcher = (*GraphSearcherService)(nil)
