package relay

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Direct opens a dedicated upstream connection for every request
type Direct struct {
	settings
	source Source
}

// NewDirect creates a per-request relay reading from source
func NewDirect(source Source, opts ...Option) *Direct {
	d := &Direct{settings: defaultSettings(), source: source}
	d.apply(opts)
	return d
}

// ServeHTTP copies each upstream read to the consumer and flushes it.
// The upstream is closed when the consumer disconnects.
func (d *Direct) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := d.source.Open(ctx)
	if err != nil {
		d.logger.Warn("Failed to open upstream stream", zap.Error(err))
		writeUpstreamError(w, err)
		return
	}
	defer body.Close()
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	if d.metrics != nil {
		d.metrics.RelayUpstreams.Inc()
		defer d.metrics.RelayUpstreams.Dec()
		d.metrics.RelaySessions.Inc()
		defer d.metrics.RelaySessions.Dec()
	}

	flusher, _ := w.(http.Flusher)
	started := false
	buf := make([]byte, d.chunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if !started {
				d.writeStreamHeader(w)
				started = true
			}
			if d.metrics != nil {
				d.metrics.RelayBytes.Add(float64(n))
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			d.logger.Warn("Upstream stream failed", zap.Error(err))
			if !started {
				writeUpstreamError(w, asUpstreamError(err))
			}
			if d.metrics != nil {
				d.metrics.RelaySessionsDrop.WithLabelValues("upstream").Inc()
			}
			return
		}
	}
}
