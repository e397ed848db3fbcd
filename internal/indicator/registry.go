package indicator

import (
	"fmt"
	"sort"
	"sync"
)

// IndicatorRegistry maps indicator names to calculator factories
type IndicatorRegistry struct {
	mu        sync.RWMutex
	factories map[string]CalculatorFactory
	metadata  map[string]IndicatorMetadata
}

// IndicatorMetadata contains information about an indicator
type IndicatorMetadata struct {
	Name        string                 `json:"name"`
	Type        string                 `json:"type"` // "core" or "techan"
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
	Category    string                 `json:"category"` // "momentum", "trend", "volatility", "volume"
	Outputs     []string               `json:"outputs"`
}

// NewIndicatorRegistry creates a new indicator registry
func NewIndicatorRegistry() *IndicatorRegistry {
	return &IndicatorRegistry{
		factories: make(map[string]CalculatorFactory),
		metadata:  make(map[string]IndicatorMetadata),
	}
}

// Register registers an indicator factory. The factory is invoked once to
// check that it can build a calculator with the registered name.
func (r *IndicatorRegistry) Register(name string, factory CalculatorFactory, metadata IndicatorMetadata) error {
	probe, err := factory()
	if err != nil {
		return fmt.Errorf("indicator %q: %w", name, err)
	}
	if probe.Name() != name {
		return fmt.Errorf("indicator %q: factory builds %q", name, probe.Name())
	}
	if len(metadata.Outputs) == 0 {
		for output := range probe.Values() {
			metadata.Outputs = append(metadata.Outputs, output)
		}
		sort.Strings(metadata.Outputs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("indicator %q already registered", name)
	}

	r.factories[name] = factory
	r.metadata[name] = metadata
	return nil
}

// GetFactory returns a factory for an indicator
func (r *IndicatorRegistry) GetFactory(name string) (CalculatorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, exists := r.factories[name]
	return factory, exists
}

// ListAvailable returns all registered indicator names, sorted
func (r *IndicatorRegistry) ListAvailable() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetMetadata returns metadata for an indicator
func (r *IndicatorRegistry) GetMetadata(name string) (IndicatorMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	metadata, exists := r.metadata[name]
	return metadata, exists
}

// GetAllMetadata returns all indicator metadata
func (r *IndicatorRegistry) GetAllMetadata() map[string]IndicatorMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]IndicatorMetadata, len(r.metadata))
	for name, metadata := range r.metadata {
		result[name] = metadata
	}
	return result
}
