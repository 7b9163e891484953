package indicator

import (
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-features/internal/types"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// Factory creates a fresh, default-configured indicator.
type Factory func() Indicator

// IndicatorRegistry manages all available indicators.
type IndicatorRegistry interface {
	RegisterIndicator(name types.IndicatorType, factory Factory) error
	// GetIndicator returns a new instance so callers can configure it independently.
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// IndicatorRegistryV1 manages all available indicators.
type IndicatorRegistryV1 struct {
	factories map[types.IndicatorType]Factory
	mu        sync.RWMutex
}

// NewIndicatorRegistry creates a new, empty indicator registry.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		factories: make(map[types.IndicatorType]Factory),
		mu:        sync.RWMutex{},
	}
}

// DefaultRegistry returns a registry with the moving average, Bollinger Bands and RSI.
func DefaultRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()

	for name, factory := range map[types.IndicatorType]Factory{
		types.IndicatorTypeMA:             NewWeightedMovingAverage,
		types.IndicatorTypeBollingerBands: NewBollingerBands,
		types.IndicatorTypeRSI:            NewRSI,
	} {
		// names are distinct, registration cannot fail
		_ = registry.RegisterIndicator(name, factory)
	}

	return registry
}

// RegisterIndicator adds an indicator factory to the registry.
func (r *IndicatorRegistryV1) RegisterIndicator(name types.IndicatorType, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return errors.Newf(errors.ErrCodeInvalidParameter, "RegisterIndicator: nil factory for %s", name)
	}

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// GetIndicator creates an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetIndicator: indicator with name %s not found", name)
	}

	return factory(), nil
}

// ListIndicators returns the registered indicator names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *IndicatorRegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.factories, name)

	return nil
}
