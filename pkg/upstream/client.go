// Package upstream talks to the finance REST API that owns every record.
package upstream

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

	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUnauthenticated = errors.New("not authenticated")
)

// APIError is a non-2xx answer. Message comes from the body's "message" member.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream answered %d", e.Status)
	}
	return fmt.Sprintf("upstream answered %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	}
	return nil
}

// HTTPClientProvider supplies the client for a request, usually one that carries the
// caller's bearer token.
type HTTPClientProvider interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

// Anonymous provides the same client to every request.
type Anonymous struct {
	Client *http.Client
}

func (a Anonymous) HTTPClient(ctx context.Context) (*http.Client, error) {
	if a.Client == nil {
		return http.DefaultClient, nil
	}
	return a.Client, nil
}

type Client struct {
	baseURL string
	clients HTTPClientProvider
}

func NewClient(baseURL string, clients HTTPClientProvider) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		clients: clients,
	}
}

// Do sends one request. body may be nil; out may be nil to discard the answer.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body Body, out any) error {
	target := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		r, ct, err := body.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader, contentType = r, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client, err := c.clients.HTTPClient(ctx)
	if err != nil {
		return err
	}
	log.Tracef("upstream %s %s", method, target)
	resp, err := client.Do(req)
	if err != nil {
		log.Errorf("upstream %s %s failed: %v", method, path, err)
		return fmt.Errorf("upstream %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upstream answer: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		if resp.StatusCode >= 500 {
			log.Errorf("upstream %s %s: %v", method, path, apiErr)
		} else {
			log.Debugf("upstream %s %s: %v", method, path, apiErr)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Errorf("failed to decode upstream %s %s answer: %v", method, path, err)
		return fmt.Errorf("failed to decode upstream answer: %w", err)
	}
	return nil
}

// errorMessage reads {"message": "..."} or {"message": ["...", "..."]}.
func errorMessage(data []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Message) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(body.Message, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(body.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

// StatusOf maps an upstream failure to the status the caller should answer with:
// client errors pass through, everything else becomes 502.
func StatusOf(err error) (int, string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			message := apiErr.Message
			if message == "" {
				message = http.StatusText(apiErr.Status)
			}
			return apiErr.Status, message, true
		}
		return http.StatusBadGateway, "upstream API failed", true
	}
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized, "not authenticated", true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return http.StatusBadGateway, "upstream API unreachable", true
	}
	return 0, "", false
}
