package config

// validate checks the assembled configuration for internal consistency,
// delegating to each component's own Validate where one exists and
// adding the cross-field checks that are config's alone to make.
func validate(cfg *Config) error {
	if err := cfg.Database.Validate(); err != nil {
		return NewValidationError("database", "", err)
	}

	if err := cfg.Chunker.Validate(); err != nil {
		return NewValidationError("chunker", "", err)
	}

	if cfg.Retriever.TopKFinal <= 0 {
		return NewValidationError("retriever", "top_k_final", ErrInvalidValue)
	}
	if cfg.Retriever.TopKIntermediate < cfg.Retriever.TopKFinal {
		return NewValidationError("retriever", "top_k_intermediate", ErrInvalidValue)
	}
	if w := cfg.Retriever.WeightVector + cfg.Retriever.WeightKeyword + cfg.Retriever.WeightGraph; w <= 0 {
		return NewValidationError("retriever", "weight_vector+weight_keyword+weight_graph", ErrInvalidValue)
	}

	if cfg.Queue.Workers <= 0 {
		return NewValidationError("queue", "workers", ErrInvalidValue)
	}
	if cfg.Queue.QueueSize <= 0 {
		return NewValidationError("queue", "queue_size", ErrInvalidValue)
	}
	if cfg.Queue.StageTimeout <= 0 {
		return NewValidationError("queue", "stage_timeout", ErrInvalidValue)
	}

	if cfg.Gateway.Addr == "" {
		return NewValidationError("gateway", "addr", ErrMissingRequiredField)
	}

	return nil
}
