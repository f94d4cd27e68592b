package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/scenariogen/internal/domain"
	"github.com/rpattn/scenariogen/internal/loader"
)

// Service serializes scenarios back into the tabular format they were
// loaded from, either one CSV at a time or as a zip bundle.
type Service struct {
	delimiter rune
	now       func() time.Time
}

type Option func(*Service)

// WithDelimiter overrides the field delimiter used for CSV output.
func WithDelimiter(delimiter rune) Option {
	return func(s *Service) {
		if delimiter != 0 {
			s.delimiter = delimiter
		}
	}
}

// WithClock overrides the time source used for bundle file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(opts ...Option) *Service {
	service := &Service{
		delimiter: loader.Delimiter,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CSV renders one scenario as delimited text, header first, cells in the
// scenario's column order. Cells a row never gained are left empty.
func (s *Service) CSV(scenario domain.Scenario) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = s.delimiter

	if len(scenario.Columns) == 0 {
		return nil, errors.New("scenario has no columns")
	}
	if err := writer.Write(scenario.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(scenario.Columns))
	for _, row := range scenario.Rows {
		for i, column := range scenario.Columns {
			record[i] = ""
			if row.Has(column) {
				record[i] = row.Text(column)
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the download name for one scenario's CSV.
func (s *Service) FileName(scenario domain.Scenario) string {
	return sanitizeFileComponent(scenario.Name) + ".csv"
}

// Bundle packs every scenario's CSV into one zip archive and returns the
// archive together with its dated download name.
func (s *Service) Bundle(scenarios []domain.Scenario) ([]byte, string, error) {
	if len(scenarios) == 0 {
		return nil, "", errors.New("no scenarios to bundle")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, scenario := range scenarios {
		data, err := s.CSV(scenario)
		if err != nil {
			return nil, "", fmt.Errorf("serialize scenario %s: %w", scenario.Name, err)
		}
		entry, err := zw.Create(s.FileName(scenario))
		if err != nil {
			return nil, "", fmt.Errorf("create bundle entry: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, "", fmt.Errorf("write bundle entry: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("close bundle: %w", err)
	}

	name := fmt.Sprintf("scenarios_%s.zip", s.now().UTC().Format("2006-01-02"))
	return buf.Bytes(), name, nil
}

// sanitizeFileComponent keeps file names shell and archive safe without
// losing the scenario name's structure.
func sanitizeFileComponent(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "scenario"
	}
	builder := strings.Builder{}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			builder.WriteRune(r)
		case r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '-' || r == '_' || r == '.' || r == '%':
			builder.WriteRune(r)
		case r == ' ':
			builder.WriteRune('-')
		default:
			builder.WriteRune('-')
		}
	}
	result := strings.Trim(builder.String(), "-")
	if result == "" {
		return "scenario"
	}
	return result
}
