package analyzer

import (
	"context"
	"fmt"
)

// output persists an analysis_report Artifact with the full state view
// and terminates the run, per spec.md §4.F.
func (a *Analyzer) output(ctx context.Context, s *State) (Node, error) {
	if a.ArtifactWriter != nil {
		if err := a.ArtifactWriter.WriteAnalysisReport(ctx, s); err != nil {
			return "", fmt.Errorf("output: write analysis report: %w", err)
		}
	}
	return NodeDone, nil
}
