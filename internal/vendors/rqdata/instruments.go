package rqdata

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gocarina/gocsv"
)

// DefaultInstrumentTypes covers stocks, funds, indexes, futures and options.
var DefaultInstrumentTypes = []string{"CS", "ETF", "LOF", "INDX", "Future", "Option"}

// Instrument is one row of all_instruments.
type Instrument struct {
	OrderBookID  string `csv:"order_book_id"`
	Symbol       string `csv:"symbol"`
	Type         string `csv:"type"`
	Exchange     string `csv:"exchange"`
	ListedDate   string `csv:"listed_date"`
	DeListedDate string `csv:"de_listed_date"`
}

// AllInstruments lists the instrument universe for the given types, or
// DefaultInstrumentTypes when none are given.
func (c *RQDataAPIClient) AllInstruments(ctx context.Context, types ...string) ([]Instrument, error) {
	if len(types) == 0 {
		types = DefaultInstrumentTypes
	}

	var out []Instrument
	for _, typ := range types {
		body, err := c.call(ctx, map[string]any{
			"method": "all_instruments",
			"type":   typ,
		})
		if err != nil {
			return nil, fmt.Errorf("all_instruments type=%s: %w", typ, err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			continue
		}

		var rows []Instrument
		if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
			return nil, fmt.Errorf("decoding all_instruments type=%s: %w", typ, err)
		}
		out = append(out, rows...)
	}
	return out, nil
}
