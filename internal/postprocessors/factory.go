package postprocessors

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.PipelineFactory = (*Factory)(nil)

// Factory builds and caches one pipeline per document type from a PipelineConfig.
type Factory struct {
	registry *Registry
	config   domain.PipelineConfig

	mu        sync.Mutex
	pipelines map[domain.DocumentType]*Pipeline
}

// NewFactory creates a pipeline factory. A nil registry uses the defaults.
func NewFactory(registry *Registry, config domain.PipelineConfig) *Factory {
	if registry == nil {
		registry = NewRegistry()
		RegisterDefaults(registry)
	}
	return &Factory{
		registry:  registry,
		config:    config,
		pipelines: make(map[domain.DocumentType]*Pipeline),
	}
}

// PipelineFor returns the pipeline configured for the document type.
func (f *Factory) PipelineFor(docType domain.DocumentType) (driven.PostProcessorPipeline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p, ok := f.pipelines[docType]; ok {
		return p, nil
	}

	names := f.config.ProcessorsFor(docType)
	if len(names) == 0 {
		return nil, fmt.Errorf("no pipeline configured for %s", docType)
	}
	p, err := f.registry.BuildPipeline(names, f.config.GetProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("build %s pipeline: %w", docType, err)
	}
	f.pipelines[docType] = p
	return p, nil
}
