package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"dataprep-systemv1/internal/model"
)

// CSVSource loads bar series from headerless CSV files under a root
// directory. Each file has exactly six unnamed columns in fixed order:
// openTime, open, high, close, volume, closeTime.
type CSVSource struct {
	root string
}

// NewCSVSource creates a source rooted at the given directory. Instrument
// ids are file names relative to the root.
func NewCSVSource(root string) *CSVSource {
	return &CSVSource{root: root}
}

// Load reads and parses one instrument's bar table.
func (s *CSVSource) Load(ctx context.Context, id string) ([]model.Bar, error) {
	path := filepath.Join(s.root, id)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	r.ReuseRecord = true

	var bars []model.Bar
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &MalformedRowError{ID: id, Line: line, Err: err}
		}
		bar, err := parseBar(record)
		if err != nil {
			return nil, &MalformedRowError{ID: id, Line: line, Err: err}
		}
		bars = append(bars, bar)
	}

	if err := validateOrder(id, bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// parseBar converts one six-field record. Timestamps are integral epoch
// milliseconds; the remaining fields are floats.
func parseBar(record []string) (model.Bar, error) {
	openTime, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("open time %q: %w", record[0], err)
	}
	closeTime, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("close time %q: %w", record[5], err)
	}

	var prices [4]float64
	for i, field := range record[1:5] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("column %d %q: %w", i+2, field, err)
		}
		prices[i] = v
	}

	return model.Bar{
		OpenTime:  openTime,
		Open:      prices[0],
		High:      prices[1],
		Close:     prices[2],
		Volume:    prices[3],
		CloseTime: closeTime,
	}, nil
}
