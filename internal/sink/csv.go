package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dataprep-systemv1/internal/model"
)

// CSVSink writes one enriched CSV file per instrument under a root
// directory, header row included. Undefined indicator values serialize as
// empty fields — never as zero.
type CSVSink struct {
	root string
}

// NewCSVSink creates a sink rooted at the given directory, creating it if
// needed.
func NewCSVSink(root string) (*CSVSink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	return &CSVSink{root: root}, nil
}

// Write serializes the table to <root>/<OutputName(instrument)>. The file is
// written to a temp name and renamed into place so a failed write never
// leaves a partial table behind.
func (s *CSVSink) Write(ctx context.Context, table model.Table) error {
	path := filepath.Join(s.root, OutputName(table.Instrument))

	tmp, err := os.CreateTemp(s.root, ".enriched-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(model.Header()); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, 10)
	for i := range table.Rows {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return err
		}
		row := &table.Rows[i]
		record[0] = strconv.FormatInt(row.OpenTime, 10)
		record[1] = formatFloat(row.Open)
		record[2] = formatFloat(row.High)
		record[3] = formatFloat(row.Close)
		record[4] = formatFloat(row.Volume)
		record[5] = strconv.FormatInt(row.CloseTime, 10)
		record[6] = formatValue(row.RSI)
		record[7] = formatValue(row.StochRSISmooth)
		record[8] = formatValue(row.WMA)
		record[9] = formatValue(row.SMA)
		if err := w.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatValue(v model.Value) string {
	if !v.Defined {
		return ""
	}
	return formatFloat(v.V)
}
