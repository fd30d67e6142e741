package roster

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/cohortdata/pkg/compression"
	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
	"github.com/ajitpratap0/cohortdata/pkg/source"
)

// DefaultDataFile is the roster file read when no path is configured.
const DefaultDataFile = "cohort_data.txt"

type loadOptions struct {
	compression compression.Algorithm
	source      source.Config
	registry    *source.Registry
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithCompression forces a decompression algorithm instead of detecting it
// from the file extension.
func WithCompression(alg compression.Algorithm) LoadOption {
	return func(o *loadOptions) {
		o.compression = alg
	}
}

// WithSourceConfig sets backend settings (region, credentials) for remote URIs.
func WithSourceConfig(cfg source.Config) LoadOption {
	return func(o *loadOptions) {
		o.source = cfg
	}
}

// WithRegistry uses r instead of the default source registry.
func WithRegistry(r *source.Registry) LoadOption {
	return func(o *loadOptions) {
		o.registry = r
	}
}

func buildLoadOptions(opts []LoadOption) loadOptions {
	o := loadOptions{
		compression: compression.Auto,
		registry:    source.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load opens uri, decompresses it if needed, and parses it into a Dataset.
func Load(ctx context.Context, uri string, opts ...LoadOption) (*Dataset, error) {
	o := buildLoadOptions(opts)
	log := logger.WithContext(ctx).With(zap.String("component", "loader"))

	loc, err := source.ParseLocation(uri)
	if err != nil {
		return nil, err
	}

	rc, err := o.registry.Open(ctx, uri, o.source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	alg := compression.Resolve(o.compression, loc.Name())

	dr, err := compression.NewReader(rc, alg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open compressed stream").
			WithDetail("uri", uri).
			WithDetail("compression", string(alg))
	}
	defer dr.Close()

	records, err := ParseContext(ctx, dr)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithDetail("uri", uri)
		}
		return nil, err
	}

	log.Debug("roster loaded",
		zap.String("uri", uri),
		zap.String("compression", string(alg)),
		zap.Int("records", len(records)))

	return &Dataset{source: uri, records: records}, nil
}
