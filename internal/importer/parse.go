// Package importer loads state reference records from tabular files.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/capitals/internal/store"
)

// Column layout of an import file. Columns past requiredColumns are
// optional and may be blank or missing.
const (
	colStateName = iota
	colCapitalCity
	colCity2
	colCity3
	colStatehoodYear
	colCapitalSinceYear
	colCapitalRank

	requiredColumns = colCity3 + 1
)

var optionalColumnNames = map[int]string{
	colStatehoodYear:    "statehood_year",
	colCapitalSinceYear: "capital_since_year",
	colCapitalRank:      "capital_rank",
}

// ErrTooFewColumns is wrapped by the ParseError for a short row.
var ErrTooFewColumns = errors.New("too few columns")

// Parse reads state records from r. The first row is a header and is
// skipped. Any malformed row aborts the parse with a *ParseError; no
// partial result is returned.
func Parse(r io.Reader) ([]store.StateRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []store.StateRecord
	header := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				return nil, &ParseError{Line: csvErr.Line, Err: csvErr.Err}
			}
			return nil, fmt.Errorf("read import file: %w", err)
		}
		if header {
			header = false
			continue
		}
		line, _ := cr.FieldPos(0)
		if isBlank(row) {
			continue
		}

		rec, err := parseRow(line, row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(line int, row []string) (store.StateRecord, error) {
	if len(row) < requiredColumns {
		return store.StateRecord{}, &ParseError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, want at least %d", ErrTooFewColumns, len(row), requiredColumns),
		}
	}

	rec := store.StateRecord{
		StateName:   strings.TrimSpace(row[colStateName]),
		CapitalCity: strings.TrimSpace(row[colCapitalCity]),
		City2:       strings.TrimSpace(row[colCity2]),
		City3:       strings.TrimSpace(row[colCity3]),
	}

	targets := map[int]**int{
		colStatehoodYear:    &rec.StatehoodYear,
		colCapitalSinceYear: &rec.CapitalSinceYear,
		colCapitalRank:      &rec.CapitalRank,
	}
	for col := colStatehoodYear; col <= colCapitalRank; col++ {
		if col >= len(row) {
			break
		}
		raw := strings.TrimSpace(row[col])
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return store.StateRecord{}, &ParseError{
				Line:   line,
				Column: optionalColumnNames[col],
				Value:  raw,
				Err:    err,
			}
		}
		*targets[col] = &n
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
