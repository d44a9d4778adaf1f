package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// tokenKeys are the names the API has used for the access token.
var tokenKeys = []string{"accessToken", "access_token", "token"}

// Login exchanges credentials for an access token. Unlike the resource
// functions it returns its errors; a 401 here means bad credentials and
// does not touch the stored session.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	in := loginRequest{Email: email, Password: password}
	if err := Validate(in); err != nil {
		return "", err
	}

	resp, err := c.send(ctx, c.action("login", http.MethodPost, "/auth/login", in))
	if err != nil {
		c.metrics.observe("login", outcome(err))
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
		c.metrics.observe("login", outcome(apiErr))
		c.logger.Error().Int("status", resp.StatusCode).Str("body", apiErr.Body).Msg("Login failed")
		return "", apiErr
	}

	token, err := extractToken(body)
	if err != nil {
		c.metrics.observe("login", outcome(err))
		return "", err
	}
	c.metrics.observe("login", outcome(nil))
	return token, nil
}

// extractToken looks for the token at top level, then inside "data".
func extractToken(body []byte) (string, error) {
	payload, err := Unwrap(body)
	if err != nil {
		return "", err
	}

	for _, raw := range [][]byte{body, payload} {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		for _, key := range tokenKeys {
			if s, ok := obj[key].(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", ErrNoToken
}
