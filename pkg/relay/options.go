package relay

import (
	"github.com/Bebel19/rugby-wheelchair-backend/pkg/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the largest read forwarded as one chunk
	DefaultChunkSize = 1024
	// DefaultBoundary is the multipart boundary announced to consumers
	DefaultBoundary = "frame"
	// DefaultQueue is the number of chunks a shared session may hold
	DefaultQueue = 256
)

type settings struct {
	chunkSize int
	boundary  string
	queue     int
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func defaultSettings() settings {
	return settings{
		chunkSize: DefaultChunkSize,
		boundary:  DefaultBoundary,
		queue:     DefaultQueue,
		logger:    zap.NewNop(),
	}
}

// Option configures a Hub or a Direct relay
type Option func(*settings)

// WithChunkSize sets the read size
func WithChunkSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithBoundary sets the multipart boundary of the response content type
func WithBoundary(b string) Option {
	return func(s *settings) {
		if b != "" {
			s.boundary = b
		}
	}
}

// WithQueue sets the per-session queue length of a Hub
func WithQueue(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.queue = n
		}
	}
}

// WithMetrics records sessions and traffic on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func (s *settings) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
}

func (s *settings) contentType() string {
	return "multipart/x-mixed-replace; boundary=" + s.boundary
}
