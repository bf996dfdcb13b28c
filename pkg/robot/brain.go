package robot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/terrariumai/brains/pkg/action"
)

// ErrTimeout is returned when a brain does not answer in time
var ErrTimeout = errors.New("Timeout")

// Brain decides for a robot. Post sends the encoded environment and returns
// the reply status and body. It must honour ctx.
type Brain interface {
	Post(ctx context.Context, body []byte) (int, []byte, error)
}

// BrainFunc adapts a function to the Brain interface
type BrainFunc func(ctx context.Context, body []byte) (int, []byte, error)

// Post calls f
func (f BrainFunc) Post(ctx context.Context, body []byte) (int, []byte, error) {
	return f(ctx, body)
}

// HTTPBrain is a brain behind an HTTP endpoint
type HTTPBrain struct {
	URL    string
	Client *http.Client
}

// NewHTTPBrain returns a brain posting to url
func NewHTTPBrain(url string) *HTTPBrain {
	return &HTTPBrain{URL: url, Client: &http.Client{}}
}

// Post sends body as JSON. At most one byte more than action.MaxLength is
// read from the reply so oversized replies are detected without buffering them.
func (b *HTTPBrain) Post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.URL, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", action.ErrBadResponse, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, action.MaxLength+1))
	if err != nil {
		return resp.StatusCode, nil, classify(ctx, err)
	}
	return resp.StatusCode, reply, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", action.ErrBadResponse, err)
}
