package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const yearMonthLayout = "2006-01"

var (
	rateChangeHeader    = []string{"year-month", "interest_rate"}
	yearlyAverageHeader = []string{"year", "average_interest_rate"}
)

// RateChangeStore defines persistence of the normalized rate series.
type RateChangeStore interface {
	LoadRateChanges() ([]RateChange, error)
	SaveRateChanges(records []RateChange) error
}

// YearlyAverageStore defines persistence of the yearly summary.
type YearlyAverageStore interface {
	SaveYearlyAverages(averages []YearlyAverage) error
}

// Store keeps the rate series and the yearly summary as flat CSV files.
type Store struct {
	recordsPath  string
	yearlyPath   string
	yearlyPlaces int32
}

// NewStore builds a CSV-backed store. yearlyPlaces bounds the number of
// fractional digits written for yearly averages.
func NewStore(recordsPath, yearlyPath string, yearlyPlaces int32) *Store {
	return &Store{recordsPath: recordsPath, yearlyPath: yearlyPath, yearlyPlaces: yearlyPlaces}
}

// RecordsPath returns the location of the rate series file.
func (s *Store) RecordsPath() string { return s.recordsPath }

// YearlyPath returns the location of the yearly summary file.
func (s *Store) YearlyPath() string { return s.yearlyPath }

// LoadRateChanges reads the rate series in file order. A file with no data
// rows yields an empty slice.
func (s *Store) LoadRateChanges() ([]RateChange, error) {
	file, err := os.Open(s.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("open rate store: %w", err)
	}
	defer file.Close()

	return ReadRateChanges(file)
}

// ReadRateChanges decodes a rate series from CSV.
func ReadRateChanges(r io.Reader) ([]RateChange, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []RateChange{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !headerMatches(header, rateChangeHeader) {
		return nil, &RecordError{Row: 0, Err: fmt.Errorf("%w: %q", ErrMissingHeader, strings.Join(header, ","))}
	}

	records := make([]RateChange, 0)
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RecordError{Row: row, Err: err}
		}

		record, err := parseRateChange(fields)
		if err != nil {
			return nil, &RecordError{Row: row, Err: err}
		}
		records = append(records, record)
	}
	return records, nil
}

func parseRateChange(fields []string) (RateChange, error) {
	if len(fields) != 2 {
		return RateChange{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	start, err := time.Parse(yearMonthLayout, strings.TrimSpace(fields[0]))
	if err != nil {
		return RateChange{}, fmt.Errorf("parse year-month %q: %w", fields[0], err)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
	if err != nil {
		return RateChange{}, fmt.Errorf("parse interest rate %q: %w", fields[1], err)
	}

	return RateChange{PeriodStart: start.UTC(), Rate: rate}, nil
}

// SaveRateChanges replaces the rate series file with records.
func (s *Store) SaveRateChanges(records []RateChange) error {
	return WriteFileAtomic(s.recordsPath, func(w io.Writer) error {
		return WriteRateChanges(w, records)
	})
}

// WriteRateChanges encodes a rate series as CSV.
func WriteRateChanges(w io.Writer, records []RateChange) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rateChangeHeader); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write([]string{record.YearMonth(), FormatRate(record.Rate)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveYearlyAverages replaces the yearly summary file with averages.
func (s *Store) SaveYearlyAverages(averages []YearlyAverage) error {
	return WriteFileAtomic(s.yearlyPath, func(w io.Writer) error {
		return WriteYearlyAverages(w, averages, s.yearlyPlaces)
	})
}

// WriteYearlyAverages encodes yearly averages as CSV, rounding to places.
func WriteYearlyAverages(w io.Writer, averages []YearlyAverage, places int32) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(yearlyAverageHeader); err != nil {
		return err
	}
	for _, avg := range averages {
		record := []string{
			strconv.Itoa(avg.Year),
			avg.AverageRate.Round(places).String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatRate renders a rate with a decimal point, keeping its original scale
// so that 24.50 stays 24.50.
func FormatRate(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

// WriteFileAtomic writes to a temporary sibling and renames it over path, so
// an existing file is either fully replaced or left untouched.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

var (
	_ RateChangeStore    = (*Store)(nil)
	_ YearlyAverageStore = (*Store)(nil)
)
