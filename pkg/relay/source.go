// Package relay re-streams a camera's chunked byte stream to downstream HTTP consumers.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
)

// ErrSlowConsumer ends a shared session whose queue is full
var ErrSlowConsumer = errors.New("consumer fell behind the upstream stream")

// UpstreamError reports an unreachable or broken upstream stream
type UpstreamError struct {
	URL string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("upstream stream: %v", e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func asUpstreamError(err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Err: err}
}

// Source opens one upstream stream. The stream ends when ctx is cancelled
// or the returned body is closed.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// HTTPSource reads the stream from a camera HTTP endpoint
type HTTPSource struct {
	client *resty.Client
	url    string
}

// NewHTTPSource creates a source for url. Requests carry no timeout and are never retried.
func NewHTTPSource(url string) *HTTPSource {
	client := resty.New().
		SetRetryCount(0).
		SetDoNotParseResponse(true)

	return &HTTPSource{client: client, url: url}
}

// URL returns the upstream address
func (s *HTTPSource) URL() string {
	return s.url
}

// Open issues the GET and returns the raw response body
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.url == "" {
		return nil, &UpstreamError{Err: errors.New("no upstream configured")}
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(s.url)
	if err != nil {
		return nil, &UpstreamError{URL: s.url, Err: err}
	}

	body := resp.RawBody()
	if resp.StatusCode() >= 300 {
		if body != nil {
			body.Close()
		}
		return nil, &UpstreamError{URL: s.url, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}
	if body == nil {
		return nil, &UpstreamError{URL: s.url, Err: errors.New("empty response body")}
	}

	return body, nil
}
