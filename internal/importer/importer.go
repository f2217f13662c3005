package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"leadsboard/server/internal/models"
)

var (
	// ErrUnreadable is surfaced when a CSV parses with neither ',' nor ';'.
	ErrUnreadable = errors.New("unable to read the CSV file with both ',' and ';' delimiters")
	// ErrMissingColumns is surfaced when the upload lacks expected columns.
	ErrMissingColumns = errors.New("the provided data file does not contain sufficient information")
	// ErrEmptyFile is surfaced when the upload has no header row.
	ErrEmptyFile = errors.New("the provided data file is empty")
)

// ParseLeads reads an uploaded CSV or XLSX file into worksheet rows. The
// file must contain every expected column or the import is rejected;
// extra columns are ignored.
func ParseLeads(filename string, data []byte, expected []string) ([]models.RawLead, error) {
	var header []string
	var records [][]string
	var err error

	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		header, records, err = parseXLSX(data)
	} else {
		header, records, err = parseCSV(data)
	}
	if err != nil {
		return nil, err
	}

	index, err := columnIndex(header, expected)
	if err != nil {
		return nil, err
	}

	rows := make([]models.RawLead, 0, len(records))
	for _, record := range records {
		var row models.RawLead
		for _, col := range expected {
			i := index[col]
			if i >= len(record) {
				continue
			}
			row.SetCell(col, record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseCSV auto-detects the delimiter: comma first, semicolon as the
// fallback when comma parsing fails.
func parseCSV(data []byte) ([]string, [][]string, error) {
	for _, delimiter := range []rune{',', ';'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delimiter

		records, err := reader.ReadAll()
		if err != nil {
			continue
		}
		if len(records) == 0 {
			return nil, nil, ErrEmptyFile
		}
		return records[0], records[1:], nil
	}
	return nil, nil, ErrUnreadable
}

func parseXLSX(data []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyFile
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	defer rows.Close()

	var header []string
	var records [][]string
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil && err != io.EOF {
			return nil, nil, fmt.Errorf("failed to read spreadsheet row: %w", err)
		}
		if header == nil {
			header = record
			continue
		}
		records = append(records, record)
	}
	if header == nil {
		return nil, nil, ErrEmptyFile
	}
	return header, records, nil
}

// columnIndex maps every expected column to its position in the header.
func columnIndex(header, expected []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, col := range header {
		positions[strings.TrimSpace(col)] = i
	}

	index := make(map[string]int, len(expected))
	var missing []string
	for _, col := range expected {
		i, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		index[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return index, nil
}
