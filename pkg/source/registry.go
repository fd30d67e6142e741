package source

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
	"go.uber.org/zap"
)

// Factory creates an Opener for a scheme from the shared backend config.
type Factory func(cfg Config) (Opener, error)

// Info describes a registered scheme.
type Info struct {
	Scheme      string `json:"scheme"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Registry manages opener registration and instantiation by URI scheme.
type Registry struct {
	factories map[string]Factory
	infos     map[string]*Info
	mu        sync.RWMutex
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		infos:     make(map[string]*Info),
	}
}

// log returns a child of the current global logger.
func (r *Registry) log() *zap.Logger {
	return logger.Get().With(zap.String("component", "source_registry"))
}

// Register registers an opener factory for a scheme.
func (r *Registry) Register(info Info, factory Factory) error {
	if info.Scheme == "" {
		return errors.New(errors.ErrorTypeConfig, "scheme is required")
	}
	if factory == nil {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source %s has no factory", info.Scheme))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[info.Scheme]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source %s already registered", info.Scheme))
	}

	r.factories[info.Scheme] = factory
	r.infos[info.Scheme] = &info
	r.log().Debug("source registered", zap.String("scheme", info.Scheme))
	return nil
}

// Create instantiates the opener for a scheme.
func (r *Registry) Create(scheme string, cfg Config) (Opener, error) {
	r.mu.RLock()
	factory, exists := r.factories[scheme]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("source %s not found", scheme)).
			WithDetail("scheme", scheme)
	}

	opener, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, fmt.Sprintf("failed to create source %s", scheme))
	}
	return opener, nil
}

// Open parses uri, creates the opener for its scheme and opens it.
func (r *Registry) Open(ctx context.Context, uri string, cfg Config) (io.ReadCloser, error) {
	loc, err := ParseLocation(uri)
	if err != nil {
		return nil, err
	}

	opener, err := r.Create(loc.Scheme, cfg)
	if err != nil {
		return nil, err
	}

	r.log().Debug("opening source",
		zap.String("scheme", loc.Scheme),
		zap.String("uri", loc.URI))
	return opener.Open(ctx, loc)
}

// List returns registered schemes in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Has checks if a scheme is registered.
func (r *Registry) Has(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[scheme]
	return exists
}

// Info returns the metadata registered for a scheme.
func (r *Registry) Info(scheme string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[scheme]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// Infos returns metadata for every scheme, sorted by scheme.
func (r *Registry) Infos() []Info {
	schemes := r.List()
	infos := make([]Info, 0, len(schemes))
	for _, scheme := range schemes {
		if info, ok := r.Info(scheme); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// Global registry functions

// Register registers an opener factory in the global registry
func Register(info Info, factory Factory) error {
	return globalRegistry.Register(info, factory)
}

// Open opens uri using the global registry
func Open(ctx context.Context, uri string, cfg Config) (io.ReadCloser, error) {
	return globalRegistry.Open(ctx, uri, cfg)
}

// List returns registered schemes from the global registry
func List() []string {
	return globalRegistry.List()
}

// Has checks if a scheme is registered in the global registry
func Has(scheme string) bool {
	return globalRegistry.Has(scheme)
}

// Infos returns metadata for every scheme in the global registry
func Infos() []Info {
	return globalRegistry.Infos()
}

// Default returns the global registry instance.
func Default() *Registry {
	return globalRegistry
}
