package config

import (
	"time"

	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/database"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
	"github.com/codeready-toolchain/dpa/pkg/store/kv"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
)

// Config is the root configuration object assembled by Load, covering
// every externally tunable component named in SPEC_FULL.md §4.J: the
// HTTP server, the object/vector/graph/kv stores, the LLM gateway, the
// chunker, the retriever's fusion weights and the worker queue.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  database.Config `yaml:"database"`
	Vector    vector.Config   `yaml:"vector"`
	Blob      blob.Config     `yaml:"blob"`
	KV        kv.Config       `yaml:"kv"`
	Graph     GraphConfig     `yaml:"graph"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Chunker   chunker.Config  `yaml:"chunker"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Queue     QueueConfig     `yaml:"queue"`
}

// ServerConfig controls the gin HTTP listener in cmd/dpa.
type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // gin.DebugMode / gin.ReleaseMode / gin.TestMode
}

// GraphConfig addresses the Neo4j driver, which takes a bare URI/user/pass
// triple rather than a Config struct of its own.
type GraphConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// GatewayConfig addresses the LLM/embedding gateway. Per-call tuning
// (model names, temperature, rate limit) is read by pkg/gateway itself
// from GATEWAY_* env vars at construction time; Config carries the dial
// target and the embedding model name that cmd/dpa hands to the stage
// executor.
type GatewayConfig struct {
	Addr           string `yaml:"addr"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// RetrieverConfig mirrors models.RetrieveOptions' defaults so they can be
// overridden per-deployment without touching code.
type RetrieverConfig struct {
	TopKFinal        int     `yaml:"top_k_final"`
	TopKIntermediate int     `yaml:"top_k_intermediate"`
	WeightVector     float64 `yaml:"weight_vector"`
	WeightKeyword    float64 `yaml:"weight_keyword"`
	WeightGraph      float64 `yaml:"weight_graph"`
	Rerank           bool    `yaml:"rerank"`
}

// QueueConfig holds the per-stage timeout that cmd/dpa sets on the
// pipeline Runner. Workers and QueueSize are validated but not read
// anywhere else; the Runner starts one goroutine per pipeline.
type QueueConfig struct {
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	StageTimeout time.Duration `yaml:"stage_timeout"`
}
