// Package netx is the HTTP client side of the login endpoint.
package netx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// RequestToken calls POST {baseURL}/authenticate with HTTP Basic
// credentials and returns the issued token.
func RequestToken(ctx context.Context, client *http.Client, baseURL, username, password string) (string, error) {
	url := strings.TrimRight(baseURL, "/") + "/authenticate"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(username, password)

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("authenticate failed: %s; body: %s", resp.Status, strings.TrimSpace(string(b)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Token == "" {
		return "", fmt.Errorf("authenticate: empty token in response")
	}
	return tr.Token, nil
}
