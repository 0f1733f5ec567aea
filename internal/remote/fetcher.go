// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"
	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "gitforge-fetcher"

	memoTTL = 5 * time.Minute
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d %s: %s", e.Code, http.StatusText(e.Code), e.URL)
}

// Fetcher performs blocking GETs with a fixed timeout. Successful bodies are
// kept in memory for the life of the process so a URL is only hit once per
// invocation.
type Fetcher struct {
	client    *http.Client
	userAgent string
	memo      *gocache.Cache
}

type Option func(*Fetcher)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is kept as is.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		memo:      gocache.New(memoTTL, 2*memoTTL),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchContent returns the response body of url as text.
func (f *Fetcher) FetchContent(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url, "text/plain, */*")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON returns the response body of url parsed as JSON.
func (f *Fetcher) FetchJSON(ctx context.Context, url string) (gjson.Result, error) {
	body, err := f.get(ctx, url, "application/json")
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("failed to parse JSON from %s", url)
	}
	return gjson.ParseBytes(body), nil
}

func (f *Fetcher) get(ctx context.Context, url string, accept string) ([]byte, error) {
	if b, ok := f.memo.Get(url); ok {
		log.Debugf("memo hit: %s", url)
		return b.([]byte), nil //nolint:forcetypeassert
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"url":     url,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	f.memo.Set(url, doc.Bytes(), gocache.DefaultExpiration)
	return doc.Bytes(), nil
}

// IsNotFound reports whether err is a 404 from the remote.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
