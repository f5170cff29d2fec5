package relay

import (
	"context"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Session is one consumer of a Hub. C yields chunks in upstream order and is
// closed when the session ends.
type Session struct {
	C <-chan []byte

	ch     chan []byte
	hub    *Hub
	err    error
	closed bool
}

// Err returns why the session ended. It is nil while the session is open
// and after the consumer closed it.
func (s *Session) Err() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.err
}

// Close leaves the hub. The upstream is released when no session remains.
func (s *Session) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	h.end(s, nil)
	h.releaseIfIdle()
}

type pump struct {
	cancel context.CancelFunc
}

// Hub shares one upstream connection between every current session.
// Sessions start at the live position; nothing is replayed.
type Hub struct {
	settings
	source Source

	mu       sync.Mutex
	sessions map[*Session]struct{}
	pump     *pump
}

// NewHub creates a hub reading from source
func NewHub(source Source, opts ...Option) *Hub {
	h := &Hub{
		settings: defaultSettings(),
		source:   source,
		sessions: make(map[*Session]struct{}),
	}
	h.apply(opts)
	return h
}

// Subscribe adds a session, opening the upstream if none is open
func (h *Hub) Subscribe() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan []byte, h.queue)
	s := &Session{C: ch, ch: ch, hub: h}
	h.sessions[s] = struct{}{}
	if h.metrics != nil {
		h.metrics.RelaySessions.Inc()
	}

	if h.pump == nil {
		ctx, cancel := context.WithCancel(context.Background())
		p := &pump{cancel: cancel}
		h.pump = p
		go h.run(ctx, p)
	}

	return s
}

// Sessions returns the number of open sessions
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// ServeHTTP relays the shared stream to one consumer
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.Subscribe()
	defer s.Close()

	h.stream(w, r, s.C, s.Err)
}

func (h *Hub) run(ctx context.Context, p *pump) {
	body, err := h.source.Open(ctx)
	if err != nil {
		h.finish(p, asUpstreamError(err))
		return
	}
	defer body.Close()
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	if h.metrics != nil {
		h.metrics.RelayUpstreams.Inc()
		defer h.metrics.RelayUpstreams.Dec()
	}
	h.logger.Info("Upstream stream opened")

	for {
		buf := make([]byte, h.chunkSize)
		n, err := body.Read(buf)
		if n > 0 {
			if h.metrics != nil {
				h.metrics.RelayBytes.Add(float64(n))
			}
			h.fanOut(p, buf[:n])
		}
		if err != nil {
			if ctx.Err() != nil {
				h.logger.Info("Upstream stream released")
				return
			}
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			h.logger.Warn("Upstream stream failed", zap.Error(err))
			h.finish(p, asUpstreamError(err))
			return
		}
	}
}

func (h *Hub) fanOut(p *pump, chunk []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pump != p {
		return
	}
	for s := range h.sessions {
		select {
		case s.ch <- chunk:
		default:
			h.end(s, ErrSlowConsumer)
			h.recordDrop("slow_consumer")
		}
	}
	h.releaseIfIdle()
}

// finish ends every session of p with err
func (h *Hub) finish(p *pump, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pump != p {
		return
	}
	h.pump = nil
	p.cancel()
	for s := range h.sessions {
		h.end(s, err)
		h.recordDrop("upstream")
	}
}

// end must be called with mu held
func (h *Hub) end(s *Session, err error) {
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	delete(h.sessions, s)
	close(s.ch)
	if h.metrics != nil {
		h.metrics.RelaySessions.Dec()
	}
}

// releaseIfIdle must be called with mu held
func (h *Hub) releaseIfIdle() {
	if len(h.sessions) == 0 && h.pump != nil {
		h.pump.cancel()
		h.pump = nil
	}
}

func (h *Hub) recordDrop(reason string) {
	if h.metrics != nil {
		h.metrics.RelaySessionsDrop.WithLabelValues(reason).Inc()
	}
}
