package model

import (
	"fmt"
	"strings"
	"time"
)

// Exchange identifies the venue an instrument trades on.
type Exchange string

const (
	CFFEX Exchange = "CFFEX" // China Financial Futures Exchange
	SHFE  Exchange = "SHFE"  // Shanghai Futures Exchange
	CZCE  Exchange = "CZCE"  // Zhengzhou Commodity Exchange
	DCE   Exchange = "DCE"   // Dalian Commodity Exchange
	INE   Exchange = "INE"   // Shanghai International Energy Exchange
	GFEX  Exchange = "GFEX"  // Guangzhou Futures Exchange
	SSE   Exchange = "SSE"   // Shanghai Stock Exchange
	SZSE  Exchange = "SZSE"  // Shenzhen Stock Exchange
	BSE   Exchange = "BSE"   // Beijing Stock Exchange
	SGE   Exchange = "SGE"   // Shanghai Gold Exchange
)

// ParseExchange upper-cases s. Unknown venues are accepted as-is so that
// vendor translation can fall back to "symbol.EXCHANGE".
func ParseExchange(s string) (Exchange, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("empty exchange")
	}
	return Exchange(s), nil
}

// Interval is the bar period.
type Interval string

const (
	Minute Interval = "1m"
	Hour   Interval = "1h"
	Daily  Interval = "d"
	Weekly Interval = "w"
	Tick   Interval = "tick"
)

// ParseInterval accepts the canonical values plus a few common aliases.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1m", "minute", "min":
		return Minute, nil
	case "1h", "hour", "60m":
		return Hour, nil
	case "d", "1d", "daily", "day":
		return Daily, nil
	case "w", "1w", "weekly", "week":
		return Weekly, nil
	case "tick":
		return Tick, nil
	default:
		return "", fmt.Errorf("unknown interval %q (use: 1m, 1h, d, w, tick)", s)
	}
}

// Bar is one OHLCV aggregate. Datetime marks the open of the bar.
type Bar struct {
	Symbol       string    `json:"symbol"`
	Exchange     Exchange  `json:"exchange"`
	Interval     Interval  `json:"interval"`
	Datetime     time.Time `json:"datetime"`
	OpenPrice    float64   `json:"open_price"`
	HighPrice    float64   `json:"high_price"`
	LowPrice     float64   `json:"low_price"`
	ClosePrice   float64   `json:"close_price"`
	Volume       float64   `json:"volume"`
	OpenInterest float64   `json:"open_interest"`
	Source       string    `json:"source"` // originating vendor, e.g. RQ or JQ
}

// VtSymbol returns "symbol.EXCHANGE".
func (b Bar) VtSymbol() string {
	return b.Symbol + "." + string(b.Exchange)
}

// HistoryRequest asks for bars of one instrument in [Start, End].
type HistoryRequest struct {
	Symbol   string
	Exchange Exchange
	Interval Interval
	Start    time.Time
	End      time.Time
}

// VtSymbol returns "symbol.EXCHANGE".
func (r HistoryRequest) VtSymbol() string {
	return r.Symbol + "." + string(r.Exchange)
}
