// Package directory queries the team service for team members.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zalando-stups/stups-auth-adapter/internal/metrics"
)

// maxBodySize bounds the team document read from the wire.
const maxBodySize = 4 << 20

type team struct {
	Member *[]string `json:"member"`
}

// Client fetches team memberships. The http.Client is expected to add the service token,
// usually through an oauth2.Transport backed by the token supplier.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a team service client for baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// FetchMembers returns the member usernames of teamID in the order the service lists them.
// It does not retry.
func (c *Client) FetchMembers(ctx context.Context, teamID string) ([]string, error) {
	if c.baseURL == "" {
		return nil, ErrBaseURLNotSet
	}

	start := time.Now()

	members, err := c.fetch(ctx, teamID)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultFailure
	}

	metrics.DirectoryRequestDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

	return members, err
}

func (c *Client) fetch(ctx context.Context, teamID string) ([]string, error) {
	endpoint := c.baseURL + "/teams/" + url.PathEscape(teamID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("team %s: build request: %w", teamID, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", teamID, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Team: teamID, StatusCode: resp.StatusCode}
	}

	var doc team
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("team %s: %w: %w", teamID, ErrMalformedResponse, err)
	}

	if doc.Member == nil {
		return nil, fmt.Errorf("team %s: %w: member missing", teamID, ErrMalformedResponse)
	}

	return *doc.Member, nil
}
