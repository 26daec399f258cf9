package jqdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GetToken logs in with the account's mobile number and password. The token
// is kept for subsequent data calls.
func (c *JQDataAPIClient) GetToken(ctx context.Context, mob, pwd string) (string, error) {
	body, err := c.do(ctx, map[string]any{
		"method": "get_token",
		"mob":    mob,
		"pwd":    pwd,
	})
	if errors.Is(err, ErrAPI) {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", fmt.Errorf("get_token: %w", ErrUnauthorized)
	}
	c.token = token
	return token, nil
}
