// Package suggest fetches candidate resources for a topic title, either
// from the remote suggestion backend or from configured RSS/Atom feeds.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/elonfeng/ressa/pkg/topic"
)

// ErrFetchFailed is the single error kind callers see for any failed fetch:
// network error, non-2xx status, or an undecodable body.
var ErrFetchFailed = errors.New("resource fetch failed")

// Service produces a bundle of suggested resources for a topic title.
type Service interface {
	FetchResources(ctx context.Context, topicTitle string) (topic.BundleContent, error)
}

// Client calls the remote suggestion backend. The backend takes the topic
// name as a multipart form field and answers with articles, videos and
// images.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a suggestion client. A zero timeout defaults to 60s;
// the backend can be slow, but an unbounded wait pins the UI forever.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchResources posts the topic name and decodes the suggested bundle.
func (c *Client) FetchResources(ctx context.Context, topicTitle string) (topic.BundleContent, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("topicName", topicTitle); err != nil {
		return topic.BundleContent{}, fmt.Errorf("encode form: %w", err)
	}
	if err := form.Close(); err != nil {
		return topic.BundleContent{}, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return topic.BundleContent{}, fmt.Errorf("create suggest request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return topic.BundleContent{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return topic.BundleContent{}, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var result struct {
		Resources topic.BundleContent `json:"resources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return topic.BundleContent{}, fmt.Errorf("%w: decode response: %v", ErrFetchFailed, err)
	}
	return result.Resources, nil
}
