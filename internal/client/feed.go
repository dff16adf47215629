package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wayfare-app/onboard/pkg/api"
	"github.com/wayfare-app/onboard/pkg/log"
)

type (
	// FeedClient reads a page of recommendable items for the swipe deck.
	// The engine only consumes IDs, titles, and categories
	FeedClient interface {
		FetchCards(ctx context.Context, page, size int) ([]*api.Card, error)
	}

	// HTTPFeedClient talks to the content feed over JSON HTTP
	HTTPFeedClient struct {
		httpClient *http.Client
		baseURL    string
	}

	feedPage struct {
		Items []*api.Card `json:"items"`
	}
)

var ErrFeedRequest = errors.New("content feed request failed")

var _ FeedClient = (*HTTPFeedClient)(nil)

// NewHTTPFeedClient creates a feed client with the given base URL and
// request timeout
func NewHTTPFeedClient(baseURL string, timeout time.Duration) *HTTPFeedClient {
	return &HTTPFeedClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FetchCards reads one page of recommendations
func (c *HTTPFeedClient) FetchCards(
	ctx context.Context, page, size int,
) ([]*api.Card, error) {
	url := fmt.Sprintf(
		"%s/v1/recommendations?page=%d&size=%d", c.baseURL, page, size,
	)
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodGet, url, nil,
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("Content feed request failed",
			log.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFeedRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFeedRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedRequest, err)
	}

	var pageRes feedPage
	if err := json.Unmarshal(body, &pageRes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedRequest, err)
	}
	return pageRes.Items, nil
}
