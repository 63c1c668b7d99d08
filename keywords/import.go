package keywords

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/seo-optimizer/forecaster/forecast"
)

// Importer defaults for missing or unparsable columns
const (
	DefaultPosition       = 20
	DefaultTargetPosition = 10
	DefaultDifficulty     = 50
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format, please upload a .csv or .xlsx file")
	// ErrMissingColumns is returned when the keyword or searchVolume column is absent
	ErrMissingColumns = errors.New("file must contain 'keyword' and 'searchVolume' columns")
	// ErrInvalidRows is returned when any row lacks a keyword or a positive search volume
	ErrInvalidRows = errors.New("file must contain valid 'keyword' and 'searchVolume' columns with positive values")
	// ErrEmptyFile is returned when a file has a header but no data rows
	ErrEmptyFile = errors.New("file contains no keyword rows")
)

// SampleCSV is the template offered for download
const SampleCSV = "keyword,searchVolume,position,targetPosition,difficulty\n" +
	"gas bbq,8000,8,3,50\n" +
	"charcoal bbq,6500,12,5,60\n" +
	"bbq grill,5000,9,4,55\n"

// Parse dispatches on the file extension of name
func Parse(name string, r io.Reader) ([]forecast.Keyword, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseCSV reads a delimited keyword file with a header row
func ParseCSV(r io.Reader) ([]forecast.Keyword, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	return fromRows(records)
}

// ParseXLSX reads the first sheet of a spreadsheet, treating the first row as headers
func ParseXLSX(r io.Reader) ([]forecast.Keyword, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]forecast.Keyword, error) {
	if len(rows) == 0 {
		return nil, ErrMissingColumns
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := columns["keyword"]; !ok {
		return nil, ErrMissingColumns
	}
	if _, ok := columns["searchvolume"]; !ok {
		return nil, ErrMissingColumns
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]forecast.Keyword, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, forecast.Keyword{
			Text:           cell(row, "keyword"),
			SearchVolume:   parseIntOr(cell(row, "searchvolume"), 0),
			Position:       float64(parseIntOr(cell(row, "position"), DefaultPosition)),
			TargetPosition: float64(parseIntOr(cell(row, "targetposition"), DefaultTargetPosition)),
			Difficulty:     parseIntOr(cell(row, "difficulty"), DefaultDifficulty),
		})
	}

	if len(out) == 0 {
		return nil, ErrEmptyFile
	}
	for _, k := range out {
		if k.Text == "" || k.SearchVolume <= 0 {
			return nil, ErrInvalidRows
		}
	}
	return out, nil
}

// parseIntOr reads the integer part of s. Empty, unparsable and zero values yield def.
func parseIntOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		n = int(math.Trunc(f))
	}
	if n == 0 {
		return def
	}
	return n
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
