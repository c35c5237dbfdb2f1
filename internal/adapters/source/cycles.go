package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/gaitprep/internal/domain/labeling"
	"github.com/okian/gaitprep/internal/domain/model"
)

// CyclesHeader is the column layout of gait_cycles.csv.
var CyclesHeader = []string{"terrain", "rhs", "lto", "lhs", "rto", "rhs_next"}

func readCycles(path string) (model.GaitEventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.GaitEventTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return model.GaitEventTable{}, fmt.Errorf("%w: %s is empty", ErrMalformedTrial, path)
		}
		return model.GaitEventTable{}, csvError(path, err)
	}
	records, err := r.ReadAll()
	if err != nil {
		return model.GaitEventTable{}, csvError(path, err)
	}

	table, err := labeling.ParseTable(header, records)
	if err != nil {
		return model.GaitEventTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// csvError marks CSV syntax errors as a malformed trial. Other read errors
// are returned as I/O failures.
func csvError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: read %s: %w", ErrMalformedTrial, path, err)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

func writeCycles(path string, table model.GaitEventTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(CyclesHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, c := range table.Cycles {
		rec := make([]string, 0, len(CyclesHeader))
		rec = append(rec, string(c.Terrain))
		for _, idx := range c.Indices {
			rec = append(rec, strconv.Itoa(idx))
		}
		if err := w.Write(rec); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
