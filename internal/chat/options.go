package chat

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/icp-profiler/internal/idgen"
	"github.com/BerylCAtieno/icp-profiler/internal/telemetry"
)

type settings struct {
	ids     idgen.Generator
	now     func() time.Time
	log     logrus.FieldLogger
	metrics *telemetry.Metrics
	idleTTL time.Duration
}

type Option func(*settings)

// WithIDGenerator sets the generator for session and message ids.
func WithIDGenerator(ids idgen.Generator) Option {
	return func(s *settings) { s.ids = ids }
}

func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *settings) { s.log = log }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithIdleTTL makes a Registry evict sessions unused for longer than ttl.
// Zero or less keeps sessions until they are closed.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *settings) { s.idleTTL = ttl }
}

func newSettings(opts []Option) settings {
	s := settings{
		ids: idgen.UUID{},
		now: time.Now,
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
