package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// returns the pipeline defaults
func DefaultPipeline() Pipeline {
	return Pipeline{
		TopK:             30,
		ImportanceWeight: 0.15,
		ContextLimit:     8,
		EvidenceLimit:    5,
		RerankMaxDocs:    20,
		RerankTopN:       8,
		CallTimeout:      30 * time.Second,
		ChunkWindow:      1,
		ChunkMaxChars:    1200,
	}
}

// loads pipeline overrides from a YAML file on top of the defaults.
// keys absent from the file keep their default value.
func LoadPipelineFile(path string) (Pipeline, error) {
	pipeline := DefaultPipeline()

	if path == "" {
		return pipeline, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return Pipeline{}, fmt.Errorf("failed to read pipeline config: %w", err)
	}

	if err := yaml.Unmarshal(data, &pipeline); err != nil {
		return Pipeline{}, fmt.Errorf("failed to parse pipeline config: %w", err)
	}

	if err := pipeline.Validate(); err != nil {
		return Pipeline{}, err
	}

	return pipeline, nil
}

// checks that every tuning value is usable
func (p Pipeline) Validate() error {
	switch {
	case p.TopK < 1:
		return fmt.Errorf("invalid pipeline config: top_k must be >= 1")
	case p.ImportanceWeight < 0 || p.ImportanceWeight > 1:
		return fmt.Errorf("invalid pipeline config: importance_weight must be within [0,1]")
	case p.ContextLimit < 1:
		return fmt.Errorf("invalid pipeline config: context_limit must be >= 1")
	case p.EvidenceLimit < 1:
		return fmt.Errorf("invalid pipeline config: evidence_limit must be >= 1")
	case p.RerankMaxDocs < 1:
		return fmt.Errorf("invalid pipeline config: rerank_max_docs must be >= 1")
	case p.RerankTopN < 1:
		return fmt.Errorf("invalid pipeline config: rerank_top_n must be >= 1")
	case p.CallTimeout <= 0:
		return fmt.Errorf("invalid pipeline config: call_timeout must be positive")
	case p.ChunkWindow < 0:
		return fmt.Errorf("invalid pipeline config: chunk_window must be >= 0")
	case p.ChunkMaxChars < 1:
		return fmt.Errorf("invalid pipeline config: chunk_max_chars must be >= 1")
	}

	return nil
}
