package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// endpoint describes one call to the API.
type endpoint struct {
	// resource names the call in logs and metrics, e.g. "rides"
	resource string
	method   string
	path     string
	query    url.Values
	country  string
	body     any
}

// request performs ep and decodes the result. Any failure is logged and
// answered with fallback.
func request[T any](ctx context.Context, c *Client, ep endpoint, decode func([]byte) (T, error), fallback T) T {
	body, err := c.do(ctx, ep)
	if err == nil {
		var v T
		if v, err = decode(body); err == nil {
			c.metrics.observe(ep.resource, outcome(nil))
			return v
		}
	}

	c.metrics.observe(ep.resource, outcome(err))
	c.logger.Error().Err(err).Str("resource", ep.resource).Msgf("Failed to fetch %s", ep.resource)
	return fallback
}

// mutate performs ep and reports whether the API answered 2xx. It never
// retries and never rolls back.
func (c *Client) mutate(ctx context.Context, ep endpoint) bool {
	resp, err := c.send(ctx, ep)
	if err != nil {
		c.metrics.observe(ep.resource, outcome(err))
		c.logger.Error().Err(err).Str("resource", ep.resource).Msgf("Failed to %s", ep.resource)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.observe(ep.resource, outcome(ErrUnauthorized))
		c.logger.Error().Str("resource", ep.resource).Msg("Authentication error: 401 Unauthorized")
		c.handleUnauthorized()
		return false
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		c.metrics.observe(ep.resource, outcome(ErrAPI))
		c.logger.Error().Int("status", resp.StatusCode).Str("resource", ep.resource).Msgf("Failed to %s", ep.resource)
		return false
	}

	c.metrics.observe(ep.resource, outcome(nil))
	return true
}

// do performs ep and returns the raw JSON body of a successful answer.
func (c *Client) do(ctx context.Context, ep endpoint) ([]byte, error) {
	resp, err := c.send(ctx, ep)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) send(ctx context.Context, ep endpoint) (*http.Response, error) {
	target := c.baseURL + ep.path
	if len(ep.query) > 0 {
		target += "?" + ep.query.Encode()
	}

	var bodyReader io.Reader
	if ep.body != nil {
		jsonData, err := json.Marshal(ep.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, ep.method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.buildHeaders(ep.country)
	if ep.body != nil {
		req.Header.Set(HeaderContentType, "application/json")
	}

	c.logger.Debug().
		Str("method", ep.method).
		Str("path", ep.path).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// handleResponse classifies the answer. A 401 is handled before anything
// else: the session is cleared and the user sent to login.
func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Error().
			Str("url", requestURL(resp)).
			Str("request_id", requestID(resp)).
			Msg("Authentication error: 401 Unauthorized")
		c.handleUnauthorized()
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
		if body, err := io.ReadAll(resp.Body); err == nil {
			apiErr.Body = string(body)
		} else {
			apiErr.Body = resp.Status
		}
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", apiErr.Body).
			Str("request_id", requestID(resp)).
			Msg("API error")
		return nil, apiErr
	}

	contentType := resp.Header.Get(HeaderContentType)
	if !strings.Contains(contentType, "application/json") {
		return nil, &InvalidResponseError{ContentType: contentType}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func requestURL(resp *http.Response) string {
	if resp.Request == nil || resp.Request.URL == nil {
		return ""
	}
	return resp.Request.URL.String()
}

func requestID(resp *http.Response) string {
	if resp.Request == nil {
		return ""
	}
	return resp.Request.Header.Get(HeaderRequestID)
}

// ListParams are the pagination, search and country inputs of list endpoints.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Country string
}

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 10

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Country = strings.ToUpper(p.Country)
	return p
}

// query omits search and country when empty rather than sending empty values.
func (p ListParams) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Country != "" {
		q.Set("country", p.Country)
	}
	return q
}

func countryQuery(country string) url.Values {
	if country == "" {
		return nil
	}
	return url.Values{"country": {strings.ToUpper(country)}}
}
