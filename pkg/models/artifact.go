package models

import "github.com/codeready-toolchain/dpa/ent"

// ArtifactResponse wraps an Artifact for get_artifact (spec.md §6).
type ArtifactResponse struct {
	*ent.Artifact
}

// ChunkResponse wraps a Chunk, used by retrieval results and chunk listings.
type ChunkResponse struct {
	*ent.Chunk
}
