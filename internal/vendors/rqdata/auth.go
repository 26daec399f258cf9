package rqdata

import (
	"context"
	"fmt"
	"strings"
)

// Authenticate exchanges username and password for a session token and keeps
// it for subsequent data calls.
func (c *RQDataAPIClient) Authenticate(ctx context.Context, username, password string) (string, error) {
	body, err := c.post(ctx, c.authURL, map[string]string{
		"user_name": username,
		"password":  password,
	})
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}
	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("authenticating: %w", ErrUnauthorized)
	}
	c.token = token
	return token, nil
}
