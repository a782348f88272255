package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/store/graph"
)

// entityTypes and relationTypes are spec.md §4.F's fixed taxonomies.
var entityTypes = map[string]bool{
	"person": true, "org": true, "concept": true, "tech": true,
	"place": true, "event": true, "product": true,
}

var relationTypes = map[string]bool{
	"defines": true, "contains": true, "influences": true, "contrasts": true,
	"uses": true, "creates": true, "belongs_to": true, "related_to": true,
}

// exploreMode picks extraction depth from the analyzer's overall depth,
// per spec.md §4.F ("mode = quick/focused/comprehensive based on depth").
func exploreMode(d Depth) string {
	switch d {
	case DepthStandard:
		return "focused"
	case DepthDeep, DepthExpert, DepthComprehensive:
		return "comprehensive"
	default:
		return "quick"
	}
}

// explore builds the knowledge graph: extracts typed entities/relations,
// deduplicates and normalizes them, and writes them through (D).
func (a *Analyzer) explore(ctx context.Context, s *State) (Node, error) {
	mode := exploreMode(s.Depth)

	text, err := a.Completer.Complete(ctx, []Message{
		{Role: "system", Content: exploreSystemPrompt(mode)},
		{Role: "user", Content: documentExcerpt(s)},
	})
	if err != nil {
		return "", fmt.Errorf("explore: extract: %w", err)
	}

	entities, relations := parseGraph(s.DocID, text)
	entities = normalizeEntities(entities)

	s.Entities = entities
	s.Relations = relations

	if a.GraphWriter != nil && len(entities) > 0 {
		if err := a.GraphWriter.UpsertEntities(ctx, toGraphEntities(s.DocID, entities)); err != nil {
			return "", fmt.Errorf("explore: upsert entities: %w", err)
		}
		if len(relations) > 0 {
			if err := a.GraphWriter.UpsertRelations(ctx, toGraphRelations(relations)); err != nil {
				return "", fmt.Errorf("explore: upsert relations: %w", err)
			}
		}
	}

	if s.Depth == DepthDeep || s.Depth == DepthExpert || s.Depth == DepthComprehensive {
		return NodeCritique, nil
	}
	return NodeIntegrate, nil
}

func exploreSystemPrompt(mode string) string {
	return fmt.Sprintf(
		"Extract %s entities (types: person, org, concept, tech, place, event, product) "+
			"and relations between them (types: defines, contains, influences, contrasts, "+
			"uses, creates, belongs_to, related_to). One per line as "+
			"ENTITY:<type>:<label> or RELATION:<type>:<from label>:<to label>.",
		mode,
	)
}

func parseGraph(docID, text string) ([]Entity, []Relation) {
	var entities []Entity
	var relations []Relation
	labelToID := make(map[string]string)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ENTITY:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "ENTITY:"), ":", 2)
			if len(parts) != 2 || !entityTypes[parts[0]] {
				continue
			}
			label := strings.TrimSpace(parts[1])
			if label == "" {
				continue
			}
			id := fmt.Sprintf("%s:%s", docID, label)
			if _, exists := labelToID[normalizeLabel(label)]; exists {
				continue
			}
			labelToID[normalizeLabel(label)] = id
			entities = append(entities, Entity{ID: id, Label: label, Type: parts[0]})

		case strings.HasPrefix(line, "RELATION:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "RELATION:"), ":", 3)
			if len(parts) != 3 || !relationTypes[parts[0]] {
				continue
			}
			fromID, fromOK := labelToID[normalizeLabel(strings.TrimSpace(parts[1]))]
			toID, toOK := labelToID[normalizeLabel(strings.TrimSpace(parts[2]))]
			if !fromOK || !toOK {
				continue
			}
			relations = append(relations, Relation{FromID: fromID, ToID: toID, Type: parts[0]})
		}
	}
	return entities, relations
}

// normalizeEntities deduplicates entities whose labels normalize to the
// same key, keeping the first occurrence.
func normalizeEntities(entities []Entity) []Entity {
	seen := make(map[string]bool, len(entities))
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		key := normalizeLabel(e.Label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func toGraphEntities(docID string, entities []Entity) []graph.Entity {
	out := make([]graph.Entity, len(entities))
	for i, e := range entities {
		out[i] = graph.Entity{ID: e.ID, DocID: docID, Label: e.Label, Type: e.Type}
	}
	return out
}

func toGraphRelations(relations []Relation) []graph.Relation {
	out := make([]graph.Relation, len(relations))
	for i, r := range relations {
		out[i] = graph.Relation{FromID: r.FromID, ToID: r.ToID, Type: r.Type}
	}
	return out
}
