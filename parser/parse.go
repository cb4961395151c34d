package parser

import (
	"call-blocks/errors"
	"call-blocks/metrics"
	"call-blocks/models"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// Row is one CSV data line keyed by its header names.
// Number is the 1-based data row in the source, counting skipped blank lines;
// rows built by hand may leave it zero and get their position in the slice instead.
type Row struct {
	Number int
	Fields map[string]string
}

// Columns names the header of each CallRecord field in the export.
type Columns struct {
	Timestamp string
	Contact   string
	Outcome   string
	Note      string
}

// DefaultColumns matches the HubSpot call export with French headers.
var DefaultColumns = Columns{
	Timestamp: "Date d'activité",
	Contact:   "Associated Contact",
	Outcome:   "Résultat de l'appel",
	Note:      "Notes de l'appel",
}

// TimestampLayouts are tried in order when parsing the activity timestamp.
// Layouts without an offset are interpreted in the caller's location.
var TimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

const utf8BOM = "\ufeff"

// ReadRows reads CSV data with a header line and returns one Row per data line.
// Blank lines are skipped. Input without a header line yields errors.ErrEmptyFile.
func ReadRows(r io.Reader) ([]Row, error) {
	start := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(start).Seconds()) }()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		metrics.ParserErrorsTotal.WithLabelValues("empty_file").Inc()
		return nil, errors.ErrEmptyFile
	}
	if err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}
	headerLine, _ := reader.FieldPos(0)

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		if isBlank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row := Row{Number: line - headerLine, Fields: make(map[string]string, len(header))}
		for i, name := range header {
			if i < len(record) {
				row.Fields[name] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Records converts rows into CallRecords. Every row must carry a parseable
// timestamp; the first failure aborts the conversion with a *errors.ParseError.
func Records(rows []Row, cols Columns, loc *time.Location) ([]models.CallRecord, error) {
	if loc == nil {
		loc = time.Local
	}

	records := make([]models.CallRecord, 0, len(rows))
	for i, row := range rows {
		number := row.Number
		if number <= 0 {
			number = i + 1
		}

		value := row.Fields[cols.Timestamp]
		if value == "" {
			metrics.ParserErrorsTotal.WithLabelValues("missing_timestamp").Inc()
			return nil, &errors.ParseError{
				Row:   number,
				Field: cols.Timestamp,
				Err:   errors.ErrMissingTimestamp,
			}
		}

		ts, err := ParseTimestamp(value, loc)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("invalid_timestamp").Inc()
			return nil, &errors.ParseError{
				Row:   number,
				Field: cols.Timestamp,
				Value: value,
				Err:   fmt.Errorf("%w: %v", errors.ErrInvalidTimestamp, err),
			}
		}

		records = append(records, models.CallRecord{
			Timestamp: ts,
			Contact:   row.Fields[cols.Contact],
			Outcome:   row.Fields[cols.Outcome],
			Note:      row.Fields[cols.Note],
			Row:       number,
		})
	}

	metrics.ParserRecordsTotal.Add(float64(len(records)))
	return records, nil
}

// Parse reads CSV data and converts it into CallRecords in one step.
func Parse(r io.Reader, cols Columns, loc *time.Location) ([]models.CallRecord, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Records(rows, cols, loc)
}

// ParseTimestamp parses value against TimestampLayouts in loc.
// Values carrying their own offset are converted to loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	cfg := &now.Config{
		TimeLocation: loc,
		TimeFormats:  TimestampLayouts,
	}
	t, err := cfg.Parse(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
