package saver

import (
	"fmt"
	"strings"

	"barfeed/internal/model"
)

// Saver writes one batch of bars to a file.
type Saver interface {
	Save(bars []model.Bar, path string) error
	Extension() string
}

// New creates the implementation for format (csv, parquet, json).
// Returns nil if format is not supported.
func New(format string) Saver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "parquet":
		return ParquetSaver{}
	case "json":
		return JSONSaver{}
	default:
		return nil
	}
}

// FileName builds "{symbol}.{exchange}_{interval}_{start}_to_{end}.{ext}".
func FileName(req model.HistoryRequest, ext string) string {
	return fmt.Sprintf("%s_%s_%s_to_%s.%s",
		req.VtSymbol(), req.Interval, req.Start.Format("20060102"), req.End.Format("20060102"), ext)
}

// row is the flat on-disk shape shared by the csv and parquet savers.
type row struct {
	Symbol       string  `csv:"symbol" parquet:"symbol"`
	Exchange     string  `csv:"exchange" parquet:"exchange"`
	Interval     string  `csv:"interval" parquet:"interval"`
	Datetime     string  `csv:"datetime" parquet:"datetime"`
	Open         float64 `csv:"open" parquet:"open"`
	High         float64 `csv:"high" parquet:"high"`
	Low          float64 `csv:"low" parquet:"low"`
	Close        float64 `csv:"close" parquet:"close"`
	Volume       float64 `csv:"volume" parquet:"volume"`
	OpenInterest float64 `csv:"open_interest" parquet:"open_interest"`
	Source       string  `csv:"source" parquet:"source"`
}

const datetimeLayout = "2006-01-02 15:04:05-07:00"

func toRows(bars []model.Bar) []row {
	rows := make([]row, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, row{
			Symbol:       b.Symbol,
			Exchange:     string(b.Exchange),
			Interval:     string(b.Interval),
			Datetime:     b.Datetime.Format(datetimeLayout),
			Open:         b.OpenPrice,
			High:         b.HighPrice,
			Low:          b.LowPrice,
			Close:        b.ClosePrice,
			Volume:       b.Volume,
			OpenInterest: b.OpenInterest,
			Source:       b.Source,
		})
	}
	return rows
}
