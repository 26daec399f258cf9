package saver

import (
	"os"

	"github.com/gocarina/gocsv"

	"barfeed/internal/model"
)

// CSVSaver writes bars as CSV with a header row.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []model.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := toRows(bars)
	return gocsv.MarshalFile(&rows, f)
}
