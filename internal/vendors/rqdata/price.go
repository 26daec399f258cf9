package rqdata

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
)

// PriceQuery selects bars of one instrument.
type PriceQuery struct {
	OrderBookID string
	Start       time.Time
	End         time.Time
	Frequency   string   // 1m, 60m, 1d, 1w
	Fields      []string // open, high, low, close, volume, open_interest
	AdjustType  string   // defaults to none
}

// PriceRow is one bar as returned by get_price. Datetime is the bar close.
type PriceRow struct {
	Datetime     time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
}

// priceRecord mirrors the CSV payload. Minute frequencies carry a datetime
// column, daily and weekly a date column.
type priceRecord struct {
	OrderBookID  string  `csv:"order_book_id"`
	Datetime     string  `csv:"datetime"`
	Date         string  `csv:"date"`
	Open         float64 `csv:"open"`
	High         float64 `csv:"high"`
	Low          float64 `csv:"low"`
	Close        float64 `csv:"close"`
	Volume       float64 `csv:"volume"`
	OpenInterest float64 `csv:"open_interest"`
}

// GetPrice queries bars in [Start, End] (dates, inclusive).
func (c *RQDataAPIClient) GetPrice(ctx context.Context, q PriceQuery) ([]PriceRow, error) {
	adjust := q.AdjustType
	if adjust == "" {
		adjust = "none"
	}
	body, err := c.call(ctx, map[string]any{
		"method":         "get_price",
		"order_book_ids": []string{q.OrderBookID},
		"start_date":     q.Start.In(chinaTZ).Format("2006-01-02"),
		"end_date":       q.End.In(chinaTZ).Format("2006-01-02"),
		"frequency":      q.Frequency,
		"fields":         q.Fields,
		"adjust_type":    adjust,
	})
	if err != nil {
		return nil, fmt.Errorf("get_price %s: %w", q.OrderBookID, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var records []priceRecord
	if err := gocsv.UnmarshalBytes(body, &records); err != nil {
		return nil, fmt.Errorf("decoding get_price %s: %w", q.OrderBookID, err)
	}

	rows := make([]PriceRow, 0, len(records))
	for _, r := range records {
		ts := r.Datetime
		if ts == "" {
			ts = r.Date
		}
		dt, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("decoding get_price %s: %w", q.OrderBookID, err)
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
