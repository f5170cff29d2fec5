package relay

import (
	"encoding/json"
	"errors"
	"net/http"
)

func (s *settings) writeStreamHeader(w http.ResponseWriter) {
	w.Header().Set("Content-Type", s.contentType())
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.WriteHeader(http.StatusOK)
}

// stream writes chunks until the channel closes or the client goes away.
// The status line is delayed until the first chunk so an upstream that
// fails early still produces a 502.
func (s *settings) stream(w http.ResponseWriter, r *http.Request, chunks <-chan []byte, reason func() error) {
	flusher, _ := w.(http.Flusher)
	started := false

	for {
		select {
		case <-r.Context().Done():
			return
		case chunk, ok := <-chunks:
			if !ok {
				err := reason()
				if err == nil {
					err = &UpstreamError{Err: errors.New("stream closed")}
				}
				if !started {
					writeUpstreamError(w, err)
				}
				return
			}
			if !started {
				s.writeStreamHeader(w)
				started = true
			}
			if _, err := w.Write(chunk); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, ErrSlowConsumer) {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
