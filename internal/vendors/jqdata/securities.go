package jqdata

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

// DefaultSecurityTypes covers stocks, funds, indexes, futures and options.
var DefaultSecurityTypes = []string{"stock", "fund", "index", "futures", "options"}

// Security is one row of get_all_securities.
type Security struct {
	Code        string `csv:"code"`
	DisplayName string `csv:"display_name"`
	Name        string `csv:"name"`
	StartDate   string `csv:"start_date"`
	EndDate     string `csv:"end_date"`
	Type        string `csv:"type"`
}

// GetAllSecurities lists securities of one type listed on date.
func (c *JQDataAPIClient) GetAllSecurities(ctx context.Context, code string, date time.Time) ([]Security, error) {
	body, err := c.call(ctx, map[string]any{
		"method": "get_all_securities",
		"code":   code,
		"date":   date.In(chinaTZ).Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("get_all_securities code=%s: %w", code, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var out []Security
	if err := gocsv.UnmarshalBytes(body, &out); err != nil {
		return nil, fmt.Errorf("decoding get_all_securities code=%s: %w", code, err)
	}
	return out, nil
}
