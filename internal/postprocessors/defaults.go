package postprocessors

import (
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate-cli/internal/postprocessors/chunker"
	"github.com/custodia-labs/coursemate-cli/internal/postprocessors/cleaner"
	"github.com/custodia-labs/coursemate-cli/internal/postprocessors/headings"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("cleaner", func(map[string]any) (driven.PostProcessor, error) {
		return cleaner.New(), nil
	})
	r.Register("headings", func(map[string]any) (driven.PostProcessor, error) {
		return headings.New(), nil
	})
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_size (int): Maximum characters per chunk (default: 2000)
//   - overlap (int): Overlap budget in characters (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "max_size"); ok {
		opts = append(opts, chunker.WithMaxSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
