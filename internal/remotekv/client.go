// SPDX-License-Identifier: Apache-2.0

// Package remotekv implements the lowest-precedence configuration layer: a
// remote key-value store queried over HTTP. The store is best-effort by
// contract; any connectivity failure, timeout, or malformed response is
// reported to the caller, who treats the layer as empty and continues.
package remotekv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrRemoteUnavailable wraps every failure mode of the remote store so
// callers can classify a fetch failure without inspecting transport details.
var ErrRemoteUnavailable = errors.New("remote key-value store unavailable")

// DefaultTimeout bounds a single namespace fetch so a slow or unreachable
// store cannot stall process startup.
const DefaultTimeout = 5 * time.Second

// ClientConfig holds the settings needed to reach the remote store.
type ClientConfig struct {
	// BaseURL is the root endpoint of the key-value store,
	// e.g. "http://localhost:8500".
	BaseURL string
	// Timeout bounds a single fetch. Zero or negative means DefaultTimeout.
	Timeout time.Duration
}

// Client fetches configuration documents from the remote key-value store.
type Client struct {
	client *resty.Client
}

// NewClient constructs a *Client for the store at cfg.BaseURL.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid
// absolute URL.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote kv base url: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout)

	return &Client{client: cli}, nil
}

// Fetch retrieves the JSON document stored under namespace and returns its
// raw bytes. The document is a flat or nested mapping of configuration keys
// to values; decoding is left to the caller.
//
// All failures are wrapped in [ErrRemoteUnavailable]: transport errors,
// timeouts, and non-2xx responses. A 404 is treated like any other failure;
// an absent namespace and an unreachable store are indistinguishable to the
// configuration engine, both yield an empty layer.
func (c *Client) Fetch(ctx context.Context, namespace string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/v1/kv/" + url.PathEscape(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrRemoteUnavailable, resp.Status())
	}

	return resp.Body(), nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("base url is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q must be absolute", raw)
	}

	return strings.TrimRight(u.String(), "/"), nil
}
