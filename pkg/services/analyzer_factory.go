package services

import (
	"github.com/codeready-toolchain/dpa/pkg/analyzer"
	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/store/graph"
)

// AnalyzerFactory builds a fresh *analyzer.Analyzer per run, wiring (B)
// the Hybrid Chunker, (C) the Gateway (through GatewayAdapter), (D)'s
// graph store and blob-backed checkpointer, and the ArtifactWriter — the
// five capability ports analyzer.New takes, assembled once here instead
// of at every call site.
type AnalyzerFactory struct {
	chunker      *chunker.Chunker
	completer    *GatewayAdapter
	graphWriter  graph.Store
	checkpointer *BlobCheckpointer
	artifacts    *ArtifactWriterService
}

// NewAnalyzerFactory returns an AnalyzerFactory.
func NewAnalyzerFactory(ch *chunker.Chunker, completer *GatewayAdapter, graphWriter graph.Store, checkpointer *BlobCheckpointer, artifacts *ArtifactWriterService) *AnalyzerFactory {
	return &AnalyzerFactory{
		chunker:      ch,
		completer:    completer,
		graphWriter:  graphWriter,
		checkpointer: checkpointer,
		artifacts:    artifacts,
	}
}

// New returns a fresh Analyzer instance. A fresh instance per run keeps
// the state machine's nodes map free of cross-run state.
func (f *AnalyzerFactory) New() *analyzer.Analyzer {
	return analyzer.New(f.chunker, f.completer, f.graphWriter, f.checkpointer, f.artifacts)
}
