package loader

import (
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Delimiter used for all tabular text, both loading and export. Comma is
// unusable because numeric fields may carry a decimal comma.
const Delimiter = ';'

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ParseTable parses an uploaded tabular file into rows plus the column
// order inferred from the header. Supported formats: .csv, .csv.gz, .xlsx.
func ParseTable(fileName string, payload []byte) ([]domain.Row, []string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".gz":
		decompressed, err := gunzip(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decompress gzip file: %w", err)
		}
		return ParseTable(strings.TrimSuffix(fileName, ext), decompressed)
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) ([]domain.Row, []string, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)

	reader := csv.NewReader(bytes.NewReader(payload))
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return tableFromRecords(records)
}

func parseExcel(payload []byte) ([]domain.Row, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("excel file has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return tableFromRecords(records)
}

// tableFromRecords treats the first non-empty record as the header and
// builds one row per remaining non-empty record, padding short records.
func tableFromRecords(records [][]string) ([]domain.Row, []string, error) {
	var columns []string
	var rows []domain.Row

	for _, record := range records {
		if isEmptyRecord(record) {
			continue
		}
		if columns == nil {
			columns = make([]string, len(record))
			for i, cell := range record {
				columns[i] = strings.TrimSpace(cell)
			}
			continue
		}
		row := domain.NewRow(columns)
		for i, column := range columns {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row.Set(column, domain.StringValue(value))
		}
		rows = append(rows, row)
	}

	if columns == nil {
		return nil, nil, errors.New("no header row detected")
	}
	return rows, columns, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func gunzip(payload []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}
