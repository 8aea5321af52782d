// Package driveapi is the client of the remote drive query endpoint. It picks
// the request shape by URL length, maps HTTP failures onto the sentinel
// errors in internal/common and optionally decrypts returned content.
package driveapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/drivemirror/internal/common"
	"github.com/dmitrijs2005/drivemirror/internal/logging"
)

const (
	queryBatchPath = "/drive/query/batch"
	pingPath       = "/health/ping"

	// DefaultMaxGetURLLength leaves headroom under common 2 KiB URL limits
	// for the transport's own encryption overhead.
	DefaultMaxGetURLLength = 1800

	maxErrorBody = 4 << 10
)

type Options struct {
	HTTPClient      *http.Client
	Timeout         time.Duration
	MaxGetURLLength int
	Tokens          TokenSource
	Secrets         SharedSecretSource
	Logger          logging.Logger
}

type Client struct {
	httpClient      *http.Client
	baseURL         string
	maxGetURLLength int
	tokens          TokenSource
	secrets         SharedSecretSource
	log             logging.Logger
	now             func() time.Time
}

func NewClient(baseURL string, opts Options) *Client {
	c := &Client{
		baseURL:         baseURL,
		httpClient:      opts.HTTPClient,
		maxGetURLLength: opts.MaxGetURLLength,
		tokens:          opts.Tokens,
		secrets:         opts.Secrets,
		log:             opts.Logger,
		now:             time.Now,
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.maxGetURLLength <= 0 {
		c.maxGetURLLength = DefaultMaxGetURLLength
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	return c
}

// QueryBatch fetches one page of results. The request goes out as a GET
// with a query string unless the URL would exceed the configured length, in
// which case the same request is POSTed as JSON.
func (c *Client) QueryBatch(ctx context.Context, req QueryBatchRequest, opts *QueryBatchOptions) (*QueryBatchResponse, error) {
	if req.ResultOptionsRequest.MaxRecords <= 0 {
		req.ResultOptionsRequest.MaxRecords = DefaultMaxRecords
	}

	var resp QueryBatchResponse

	qs := req.Values().Encode()
	if len(c.baseURL)+len(queryBatchPath)+1+len(qs) > c.maxGetURLLength {
		c.log.Debug(ctx, "query batch as POST", "query_length", len(qs))
		if err := c.doRequest(ctx, http.MethodPost, queryBatchPath, req, &resp); err != nil {
			return nil, fmt.Errorf("query batch: %w", err)
		}
	} else {
		if err := c.doRequest(ctx, http.MethodGet, queryBatchPath+"?"+qs, nil, &resp); err != nil {
			return nil, fmt.Errorf("query batch: %w", err)
		}
	}

	if opts != nil && opts.Decrypt {
		if err := c.decryptResults(ctx, resp.SearchResults); err != nil {
			return nil, err
		}
	}

	return &resp, nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, pingPath, nil, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		if err := CheckToken(token, c.now()); err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return common.ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{Status: resp.StatusCode, Body: string(b)}
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
