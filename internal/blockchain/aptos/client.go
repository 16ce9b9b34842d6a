// internal/blockchain/aptos/client.go
package aptos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultRetries        = 3
	maxResponseSize       = 4 << 20
)

// Options configures a Client.
type Options struct {
	RequestTimeout time.Duration
	Retries        uint
	HTTPClient     *http.Client
}

// Client talks to one or more Aptos fullnodes over the REST API,
// rotating to the next node when a call fails.
type Client struct {
	urls    []string
	current int
	mu      sync.Mutex

	http    *http.Client
	timeout time.Duration
	retries uint
	logger  *zap.Logger
}

// NewClient creates a client for the given node URLs. A missing "/v1"
// suffix is added.
func NewClient(urls []string, opts Options, logger *zap.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, ErrNoNodes
	}

	normalized := make([]string, 0, len(urls))
	for _, raw := range urls {
		u := strings.TrimRight(strings.TrimSpace(raw), "/")
		if u == "" {
			continue
		}
		if !strings.HasSuffix(u, "/v1") {
			u += "/v1"
		}
		normalized = append(normalized, u)
	}
	if len(normalized) == 0 {
		return nil, ErrNoNodes
	}

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Retries == 0 {
		opts.Retries = defaultRetries
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	return &Client{
		urls:    normalized,
		http:    opts.HTTPClient,
		timeout: opts.RequestTimeout,
		retries: opts.Retries,
		logger:  logger.Named("aptos-client"),
	}, nil
}

func (c *Client) nextURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.urls[c.current]
	c.current = (c.current + 1) % len(c.urls)
	return u
}

// do executes a request with per-attempt timeout and retries transient
// failures on the next node.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("encode request: %w", err))
		}
	}

	attempt := 0
	op := func() (struct{}, error) {
		attempt++
		base := c.nextURL()
		err := c.doOnce(ctx, base, method, path, payload, out)
		if err == nil {
			return struct{}{}, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return struct{}{}, backoff.Permanent(err)
		}
		if errors.Is(err, ErrInvalidResponse) {
			return struct{}{}, backoff.Permanent(err)
		}

		c.logger.Debug("Node request failed, trying next node",
			zap.String("url", base),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(c.retries),
	)
	if err != nil && ctx.Err() != nil && !errors.Is(err, ErrTimeout) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return ctx.Err()
	}
	return err
}

func newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) doOnce(ctx context.Context, base, method, path string, payload []byte, out interface{}) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, base+path, reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrInvalidResponse, method, path, err)
	}
	return nil
}

// GetAccountResource reads resourceType stored under address.
// A missing resource is reported as ErrResourceNotFound.
func (c *Client) GetAccountResource(ctx context.Context, address, resourceType string) (*Resource, error) {
	path := fmt.Sprintf("/accounts/%s/resource/%s", address, url.PathEscape(resourceType))

	var res Resource
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetSequenceNumber returns the next sequence number for address.
func (c *Client) GetSequenceNumber(ctx context.Context, address string) (uint64, error) {
	var acc accountData
	if err := c.do(ctx, http.MethodGet, "/accounts/"+address, nil, &acc); err != nil {
		return 0, err
	}
	seq, err := acc.SequenceNumber.Big()
	if err != nil {
		return 0, err
	}
	if !seq.IsUint64() {
		return 0, fmt.Errorf("%w: sequence number overflow", ErrInvalidResponse)
	}
	return seq.Uint64(), nil
}

// Close releases idle node connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
