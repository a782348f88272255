package config

import (
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/database"
	"github.com/codeready-toolchain/dpa/pkg/store/blob"
	"github.com/codeready-toolchain/dpa/pkg/store/kv"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in configuration, used as the merge base so
// an operator's YAML file only has to specify what it wants to override.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "release",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			User:            "dpa",
			Database:        "dpa",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 15 * time.Minute,
		},
		Vector: vector.Config{
			Host: "localhost",
			Port: 6334,
		},
		Blob: blob.Config{
			Endpoint: "localhost:9000",
			Bucket:   "dpa-documents",
		},
		KV: kv.Config{
			Addr: "localhost:6379",
		},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
		},
		Gateway: GatewayConfig{
			Addr:           "localhost:50051",
			EmbeddingModel: "text-embedding-3-small",
		},
		Chunker: chunker.DefaultConfig(),
		Retriever: RetrieverConfig{
			TopKFinal:        20,
			TopKIntermediate: 50,
			WeightVector:     0.4,
			WeightKeyword:    0.35,
			WeightGraph:      0.25,
			Rerank:           true,
		},
		Queue: QueueConfig{
			Workers:      4,
			QueueSize:    64,
			StageTimeout: 10 * time.Minute,
		},
	}
}

// Load reads the YAML file at path, expands ${VAR} environment
// references, merges the result onto Defaults(), applies the environment
// overrides and validates. An empty or missing path is not an error by
// itself: Load then starts from Defaults() plus the environment
// overrides. Defaults() leaves the database password empty, so
// validation fails unless DB_PASSWORD is set.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path == "" {
		if err := applyEnvOverrides(&cfg); err != nil {
			return nil, err
		}
		return &cfg, validate(&cfg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if envErr := applyEnvOverrides(&cfg); envErr != nil {
				return nil, envErr
			}
			return &cfg, validate(&cfg)
		}
		return nil, NewLoadError(path, err)
	}

	var file Config
	if err := yaml.Unmarshal(ExpandEnv(data), &file); err != nil {
		return nil, NewLoadError(path, err)
	}

	if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
		return nil, NewLoadError(path, err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validate(&cfg)
}

// applyEnvOverrides lets the handful of secrets that should never sit in
// a checked-in YAML file (even behind ${VAR} expansion, since the file
// itself might be committed with the expansion already baked in) be set
// purely through the environment.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Blob.SecretKey = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Blob.AccessKey = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Vector.APIKey = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.KV.Password = v
	}
	if v := os.Getenv("GATEWAY_ADDR"); v != "" {
		cfg.Gateway.Addr = v
	}
	if v := os.Getenv("GATEWAY_EMBED_MODEL"); v != "" {
		cfg.Gateway.EmbeddingModel = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		cfg.Server.Port = v
	}
	return nil
}
