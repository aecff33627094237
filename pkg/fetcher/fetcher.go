// Package fetcher reads collections from the association API.
package fetcher

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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/pkg/metrics"
	"github.com/pershin-daniil/bsa-site/pkg/models"
)

const Placeholder = "/static/placeholder.svg"

var ErrFetchFailed = errors.New("fetch failed")

type Client struct {
	log     *logrus.Entry
	baseURL string
	http    *http.Client
}

func New(log *logrus.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log.WithField("component", "fetcher"),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Status string                     `json:"status"`
	Data   map[string]json.RawMessage `json:"data"`
}

// Fetch issues one GET for the collection. Cancelling ctx aborts the request
// and the context error is returned as is, so callers can tell a gone client
// from a failed API.
func Fetch[T any](ctx context.Context, c *Client, col models.Collection) ([]T, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(col.Path).Observe(time.Since(start).Seconds())
	}()
	items, err := fetch[T](ctx, c, col)
	if err != nil && ctx.Err() == nil {
		metrics.FetchErrCount.WithLabelValues(col.Path).Inc()
		c.log.Warnf("err fetching %s: %v", col.Path, err)
	}
	return items, err
}

func fetch[T any](ctx context.Context, c *Client, col models.Collection) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/"+col.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.Warnf("err during closing body: %v", err)
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s responded %d", ErrFetchFailed, col.Path, resp.StatusCode)
	}
	var env envelope
	if err = json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrFetchFailed, col.Path, err)
	}
	raw, ok := env.Data[col.Key]
	if !ok {
		return nil, fmt.Errorf("%w: %s response has no %q", ErrFetchFailed, col.Path, col.Key)
	}
	var items []T
	if err = json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: decoding %s.%s: %v", ErrFetchFailed, col.Path, col.Key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Result is what a page renders: either records (possibly none) or a failure.
type Result[T any] struct {
	Items []T
	Err   error
}

func Load[T any](ctx context.Context, c *Client, col models.Collection) Result[T] {
	items, err := Fetch[T](ctx, c, col)
	return Result[T]{Items: items, Err: err}
}

func (r Result[T]) Failed() bool { return r.Err != nil }

func (r Result[T]) Empty() bool { return r.Err == nil && len(r.Items) == 0 }

// Cancelled reports whether the caller went away mid-request.
func (r Result[T]) Cancelled() bool {
	return errors.Is(r.Err, context.Canceled)
}

// AssetURL points at an uploaded file of the collection. Absolute and local
// references pass through unchanged.
func (c *Client) AssetURL(col models.Collection, filename string) string {
	switch {
	case filename == "":
		return Placeholder
	case strings.HasPrefix(filename, "http://"), strings.HasPrefix(filename, "https://"), strings.HasPrefix(filename, "/"):
		return filename
	}
	return c.baseURL + "/uploads/" + col.Path + "/" + url.PathEscape(filename)
}

// Login exchanges admin credentials for a token at the API.
func (c *Client) Login(ctx context.Context, creds models.LoginCredentials) (models.AuthResponse, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("err encoding credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("err building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("%w: login: %v", ErrFetchFailed, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.Warnf("err during closing body: %v", err)
		}
	}()
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusBadRequest:
		return models.AuthResponse{}, models.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return models.AuthResponse{}, fmt.Errorf("%w: login responded %d", ErrFetchFailed, resp.StatusCode)
	}
	var auth models.AuthResponse
	if err = json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return models.AuthResponse{}, fmt.Errorf("%w: decoding login: %v", ErrFetchFailed, err)
	}
	if auth.Token == "" {
		return models.AuthResponse{}, models.ErrInvalidCredentials
	}
	return auth, nil
}
