package parser_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	customerrors "call-blocks/errors"
	"call-blocks/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `Date d'activité,Associated Contact,Résultat de l'appel,Notes de l'appel`

func TestReadRows(t *testing.T) {
	tests := map[string]struct {
		input         string
		expectedRows  []parser.Row
		expectedError error
	}{
		"HeaderOnly": {
			input:        header + "\n",
			expectedRows: []parser.Row{},
		},
		"SkipsBlankLines": {
			input: header + `

2025-02-11 09:00,Jane Doe,Connecté,"Rappel, jeudi"

,,,
2025-02-11 09:20,John Roe,,
`,
			expectedRows: []parser.Row{
				{Fields: map[string]string{
					"Date d'activité":     "2025-02-11 09:00",
					"Associated Contact":  "Jane Doe",
					"Résultat de l'appel": "Connecté",
					"Notes de l'appel":    "Rappel, jeudi",
				}},
				{Fields: map[string]string{
					"Date d'activité":     "2025-02-11 09:20",
					"Associated Contact":  "John Roe",
					"Résultat de l'appel": "",
					"Notes de l'appel":    "",
				}},
			},
		},
		"ByteOrderMark_AndShortRow": {
			input: "\ufeff" + header + "\n2025-02-11 09:00,Jane Doe\n",
			expectedRows: []parser.Row{
				{Fields: map[string]string{
					"Date d'activité":    "2025-02-11 09:00",
					"Associated Contact": "Jane Doe",
				}},
			},
		},
		"Error_EmptyFile": {
			input:         "",
			expectedError: customerrors.ErrEmptyFile,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rows, err := parser.ReadRows(strings.NewReader(tt.input))

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedRows, rows)
		})
	}
}

func TestRecords(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	row := func(ts string) parser.Row {
		return parser.Row{Fields: map[string]string{
			"Date d'activité":     ts,
			"Associated Contact":  "Jane Doe",
			"Résultat de l'appel": "Connecté",
			"Notes de l'appel":    "note",
		}}
	}

	tests := map[string]struct {
		input         []parser.Row
		expectedTimes []time.Time
		expectedError error
		expectedRow   int
	}{
		"Empty": {
			input:         []parser.Row{},
			expectedTimes: []time.Time{},
		},
		"Layouts": {
			input: []parser.Row{
				row("2025-02-11 09:00"),
				row("2025-02-11 09:05:30"),
				row("2025-02-11T09:10"),
				row("11/02/2025 09:15"),
				row("2025-02-11T08:20:00Z"),
			},
			expectedTimes: []time.Time{
				time.Date(2025, 2, 11, 9, 0, 0, 0, paris),
				time.Date(2025, 2, 11, 9, 5, 30, 0, paris),
				time.Date(2025, 2, 11, 9, 10, 0, 0, paris),
				time.Date(2025, 2, 11, 9, 15, 0, 0, paris),
				time.Date(2025, 2, 11, 9, 20, 0, 0, paris),
			},
		},
		"Error_MissingTimestamp": {
			input:         []parser.Row{row("2025-02-11 09:00"), row("")},
			expectedError: customerrors.ErrMissingTimestamp,
			expectedRow:   2,
		},
		"Error_InvalidTimestamp": {
			input:         []parser.Row{row("pas une date")},
			expectedError: customerrors.ErrInvalidTimestamp,
			expectedRow:   1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			records, err := parser.Records(tt.input, parser.DefaultColumns, paris)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)

				var parseErr *customerrors.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tt.expectedRow, parseErr.Row)
				assert.Equal(t, parser.DefaultColumns.Timestamp, parseErr.Field)
				assert.Nil(t, records)
				return
			}

			require.NoError(t, err)
			require.Len(t, records, len(tt.expectedTimes))
			for i, rec := range records {
				assert.True(t, tt.expectedTimes[i].Equal(rec.Timestamp), "record %d: got %v, want %v", i, rec.Timestamp, tt.expectedTimes[i])
				assert.Equal(t, paris, rec.Timestamp.Location(), "record %d", i)
				assert.Equal(t, "Jane Doe", rec.Contact)
				assert.Equal(t, "Connecté", rec.Outcome)
				assert.Equal(t, "note", rec.Note)
				assert.Equal(t, i+1, rec.Row)
			}
		})
	}
}

func TestParse_CustomColumns(t *testing.T) {
	cols := parser.Columns{Timestamp: "Activity date", Contact: "Contact", Outcome: "Outcome", Note: "Notes"}
	input := "Activity date,Contact,Outcome,Notes\n2025-02-11 09:00,Ada,Connected,hello\n"

	records, err := parser.Parse(strings.NewReader(input), cols, time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2025, 2, 11, 9, 0, 0, 0, time.UTC), records[0].Timestamp)
	assert.Equal(t, "Ada", records[0].Contact)
	assert.Equal(t, "Connected", records[0].Outcome)
	assert.Equal(t, "hello", records[0].Note)
}

func TestParse_ErrorRowCountsBlankLines(t *testing.T) {
	input := header + "\n2025-02-11 09:00,Jane Doe,,\n\n,,,\nhier,John Roe,,\n"

	_, err := parser.Parse(strings.NewReader(input), parser.DefaultColumns, time.UTC)
	require.Error(t, err)

	var parseErr *customerrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 4, parseErr.Row)
	assert.Equal(t, "hier", parseErr.Value)
	assert.ErrorIs(t, err, customerrors.ErrInvalidTimestamp)
}

func TestParse_RecordRowMatchesSourceRow(t *testing.T) {
	input := header + "\n\n2025-02-11 09:00,Jane Doe,,\n2025-02-11 09:10,John Roe,,\n"

	records, err := parser.Parse(strings.NewReader(input), parser.DefaultColumns, time.UTC)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, 3, records[1].Row)
}
