package legisnapshot

import (
	"errors"
	"time"
)

// DefaultStructureDepth is the number of levels below the root returned by GetStructure.
const DefaultStructureDepth = 1

// ServiceOption defines a functional option for configuring a Service.
type ServiceOption func(*Service) error

// WithLogger sets the logger for the Service.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: closure levels, per-kind batch fetches, dropped duplicate rows
// Info level: completed requests with node counts and durations
// Warn level: dangling references
// Error level: failed store round trips.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) error {
		s.in.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Service.
// When set it is preferred over the plain Logger, so log records carry trace correlation.
func WithContextualLogger(logger ContextualLogger) ServiceOption {
	return func(s *Service) error {
		s.in.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Service.
// It receives request durations, error counts, assembled node counts and dangling reference counts.
func WithMetrics(collector MetricsCollector) ServiceOption {
	return func(s *Service) error {
		s.in.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Service. One span is opened per request.
func WithTracing(collector TracingCollector) ServiceOption {
	return func(s *Service) error {
		s.in.tracingCollector = collector
		return nil
	}
}

// WithStructureDepth sets how many levels below the root GetStructure returns. 0 means unbounded.
func WithStructureDepth(depth int) ServiceOption {
	return func(s *Service) error {
		if depth < 0 {
			return ErrInvalidStructureDepth
		}

		s.structureDepth = depth

		return nil
	}
}

// WithClock sets the clock used to default an omitted reference date to today.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}

		s.now = now

		return nil
	}
}

// instrumentationFrom applies opts to a scratch Service and keeps its observability collaborators.
func instrumentationFrom(opts []ServiceOption) (*instrumentation, error) {
	scratch := &Service{in: &instrumentation{}}
	for _, opt := range opts {
		if err := opt(scratch); err != nil {
			return nil, err
		}
	}

	return scratch.in, nil
}
