package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/kindle-notion/internal/clippings"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	// MaxChildrenPerRequest is the most blocks Notion accepts in one call.
	MaxChildrenPerRequest = 100

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client talks to the Notion public API with an internal integration token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	retryDelay time.Duration
}

// NewClient creates a Notion client. Empty baseURL and version fall back to
// DefaultBaseURL and DefaultVersion.
func NewClient(apiKey, baseURL, version string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		version:    version,
		retryDelay: initialRetryDelay,
	}
}

// Page is the subset of Notion's page object the exporter keeps.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreatePage creates a page. At most MaxChildrenPerRequest children may be sent.
func (c *Client) CreatePage(ctx context.Context, page PageRequest) (*Page, error) {
	if len(page.Children) > MaxChildrenPerRequest {
		return nil, fmt.Errorf("page has %d children, at most %d allowed per request", len(page.Children), MaxChildrenPerRequest)
	}

	var created Page
	if err := c.do(ctx, http.MethodPost, "/pages", page, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// AppendChildren appends blocks to a page or block in batches of MaxChildrenPerRequest.
func (c *Client) AppendChildren(ctx context.Context, blockID string, children []Block) error {
	for start := 0; start < len(children); start += MaxChildrenPerRequest {
		end := min(start+MaxChildrenPerRequest, len(children))
		body := struct {
			Children []Block `json:"children"`
		}{Children: children[start:end]}

		if err := c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", body, nil); err != nil {
			return fmt.Errorf("failed to append blocks %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// PublishBook creates one page for a book under parentPageID. Blocks beyond
// the first request are appended afterwards.
func (c *Client) PublishBook(ctx context.Context, parentPageID string, book clippings.BookClips) (*Page, error) {
	page := BuildPage(parentPageID, book)

	var rest []Block
	if len(page.Children) > MaxChildrenPerRequest {
		rest = page.Children[MaxChildrenPerRequest:]
		page.Children = page.Children[:MaxChildrenPerRequest]
	}

	created, err := c.CreatePage(ctx, page)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		if err := c.AppendChildren(ctx, created.ID, rest); err != nil {
			return created, err
		}
	}
	return created, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doRequest(ctx, method, c.baseURL+path, payload, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(data)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
