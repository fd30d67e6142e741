package roster

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/logger"
	"github.com/ajitpratap0/cohortdata/pkg/metrics"
	"github.com/ajitpratap0/cohortdata/pkg/observability"
)

// Service loads a roster source and runs queries against it with logging,
// metrics and tracing.
type Service struct {
	uri      string
	loadOpts []LoadOption
	logger   *zap.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) ServiceOption {
	return func(s *Service) {
		s.metrics = c
	}
}

// WithTracer sets the tracer used for load and query spans.
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithLoadOptions passes opts to every Load.
func WithLoadOptions(opts ...LoadOption) ServiceOption {
	return func(s *Service) {
		s.loadOpts = append(s.loadOpts, opts...)
	}
}

// NewService creates a service for the roster at uri.
func NewService(uri string, opts ...ServiceOption) *Service {
	s := &Service{uri: uri}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewCollector("roster")
	}
	if s.tracer == nil {
		s.tracer = observability.Tracer()
	}
	s.logger = s.logger.With(zap.String("component", "roster_service"))
	return s
}

// URI returns the roster location.
func (s *Service) URI() string {
	return s.uri
}

// Metrics returns the service's collector.
func (s *Service) Metrics() *metrics.Collector {
	return s.metrics
}

// Load reads and parses the roster.
func (s *Service) Load(ctx context.Context) (*Dataset, error) {
	ctx = context.WithValue(ctx, logger.SourceKey, s.uri)

	var ds *Dataset
	err := observability.Trace(ctx, s.tracer, "roster.load", func(ctx context.Context, span *observability.Span) error {
		span.SetAttribute("uri", s.uri)
		timer := metrics.NewTimer("load")

		var err error
		ds, err = Load(ctx, s.uri, s.loadOpts...)
		if err != nil {
			if errors.HasType(err, errors.ErrorTypeData) {
				s.metrics.RecordMalformed()
			}
			s.logger.Error("failed to load roster",
				zap.String("uri", s.uri),
				zap.Error(err))
			return err
		}

		elapsed := timer.Stop()
		s.metrics.RecordLoad(ds.Len(), elapsed)
		span.SetAttribute("records", ds.Len())
		s.logger.Info("roster loaded",
			zap.String("uri", s.uri),
			zap.Int("records", ds.Len()),
			zap.Duration("duration", elapsed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// Query runs req against an already loaded dataset.
func (s *Service) Query(ctx context.Context, ds *Dataset, req Request) (*Result, error) {
	ctx = context.WithValue(ctx, logger.QueryKey, string(req.Query))
	log := s.logger.With(zap.String("query", string(req.Query)))

	var res *Result
	err := observability.Trace(ctx, s.tracer, "roster.query."+string(req.Query), func(ctx context.Context, span *observability.Span) error {
		span.SetAttribute("query", string(req.Query))
		for k, v := range req.Args() {
			span.SetAttribute("arg."+k, v)
		}
		timer := metrics.NewTimer(string(req.Query))

		var err error
		res, err = Execute(ds, req)
		elapsed := timer.Stop()
		if err != nil {
			s.metrics.RecordQuery(string(req.Query), metrics.StatusError, elapsed)
			log.Warn("query failed", zap.Error(err))
			return err
		}

		status := metrics.StatusSuccess
		if !res.Found {
			status = metrics.StatusNotFound
		}
		s.metrics.RecordQuery(string(req.Query), status, elapsed)
		span.SetAttribute("found", res.Found)
		log.Debug("query complete",
			zap.String("status", status),
			zap.Duration("duration", elapsed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Run loads the roster fresh and runs req.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, ds, req)
}
