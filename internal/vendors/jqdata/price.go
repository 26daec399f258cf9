package jqdata

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

// PricePeriodQuery selects bars of one security in [Start, End].
type PricePeriodQuery struct {
	Code  string
	Unit  string // 1m, 60m, 1d, 1w
	Start time.Time
	End   time.Time
}

// PriceRow is one bar as returned by get_price_period. Datetime is the bar close.
type PriceRow struct {
	Datetime     time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
}

type priceRecord struct {
	Date         string  `csv:"date"`
	Open         float64 `csv:"open"`
	Close        float64 `csv:"close"`
	High         float64 `csv:"high"`
	Low          float64 `csv:"low"`
	Volume       float64 `csv:"volume"`
	Paused       float64 `csv:"paused"`
	OpenInterest float64 `csv:"open_interest"`
}

// GetPricePeriod queries bars in the period. Suspended rows (paused=1) are
// dropped.
func (c *JQDataAPIClient) GetPricePeriod(ctx context.Context, q PricePeriodQuery) ([]PriceRow, error) {
	body, err := c.call(ctx, map[string]any{
		"method":   "get_price_period",
		"code":     q.Code,
		"unit":     q.Unit,
		"date":     q.Start.In(chinaTZ).Format("2006-01-02 15:04:05"),
		"end_date": q.End.In(chinaTZ).Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return nil, fmt.Errorf("get_price_period %s: %w", q.Code, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var records []priceRecord
	if err := gocsv.UnmarshalBytes(body, &records); err != nil {
		return nil, fmt.Errorf("decoding get_price_period %s: %w", q.Code, err)
	}

	rows := make([]PriceRow, 0, len(records))
	for _, r := range records {
		if r.Paused != 0 {
			continue
		}
		dt, err := parseTime(r.Date)
		if err != nil {
			return nil, fmt.Errorf("decoding get_price_period %s: %w", q.Code, err)
		}
		rows = append(rows, PriceRow{
			Datetime:     dt,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			OpenInterest: r.OpenInterest,
		})
	}
	return rows, nil
}
