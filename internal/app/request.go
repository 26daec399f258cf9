package app

import (
	"fmt"
	"strings"
	"time"

	"barfeed/internal/model"
)

// ChinaTZ is the zone request dates without an offset are read in.
var ChinaTZ = time.FixedZone("CST", 8*60*60)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
}

// ParseTime accepts RFC 3339 or a local date/datetime in China time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, ChinaTZ); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC 3339)", s)
}

// BuildRequest validates raw query parameters.
func BuildRequest(symbol, exchange, interval, start, end string) (model.HistoryRequest, error) {
	var req model.HistoryRequest

	req.Symbol = strings.TrimSpace(symbol)
	if req.Symbol == "" {
		return req, fmt.Errorf("missing symbol")
	}
	ex, err := model.ParseExchange(exchange)
	if err != nil {
		return req, err
	}
	req.Exchange = ex
	if req.Interval, err = model.ParseInterval(interval); err != nil {
		return req, err
	}
	if req.Start, err = ParseTime(start); err != nil {
		return req, fmt.Errorf("start: %w", err)
	}
	if req.End, err = ParseTime(end); err != nil {
		return req, fmt.Errorf("end: %w", err)
	}
	if req.End.Before(req.Start) {
		return req, fmt.Errorf("end %s is before start %s", end, start)
	}
	return req, nil
}
