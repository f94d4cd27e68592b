package export

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/scenariogen/internal/domain"
	"github.com/rpattn/scenariogen/internal/loader"
)

func sampleScenario() domain.Scenario {
	columns := []string{domain.ColumnProductName, domain.ColumnCurrentPrice, domain.ColumnPriceChange}

	modified := domain.NewRow(columns)
	modified.Set(domain.ColumnProductName, domain.StringValue("Ice Tea"))
	modified.Set(domain.ColumnCurrentPrice, domain.StringValue("10.50"))
	modified.Set(domain.ColumnPriceChange, domain.NumberValue(0.5))

	untouched := domain.NewRow(columns[:2])
	untouched.Set(domain.ColumnProductName, domain.StringValue("Lemonade"))
	untouched.Set(domain.ColumnCurrentPrice, domain.StringValue("5.00"))

	return domain.Scenario{
		ID:        uuid.New(),
		Name:      "Scenario_1_P0.5_2026-01-15",
		Columns:   columns,
		Rows:      []domain.Row{modified, untouched},
		CreatedAt: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestCSVRoundTripsThroughLoader(t *testing.T) {
	service := NewService()
	data, err := service.CSV(sampleScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, columns, err := loader.ParseTable("scenario.csv", data)
	if err != nil {
		t.Fatalf("serialized scenario must load back: %v", err)
	}
	if len(columns) != 3 {
		t.Errorf("expected 3 columns, got %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Text(domain.ColumnPriceChange); got != "0.5" {
		t.Errorf("expected recorded change 0.5, got %q", got)
	}
	if got := rows[1].Text(domain.ColumnPriceChange); got != "" {
		t.Errorf("untouched row must have empty annotation cell, got %q", got)
	}
}

func TestCSVUsesSemicolonDelimiter(t *testing.T) {
	service := NewService()
	data, err := service.CSV(sampleScenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if !bytes.Contains(header, []byte(";")) {
		t.Errorf("expected semicolon-delimited header, got %q", header)
	}
}

func TestBundle(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	}
	service := NewService(WithClock(clock))

	data, name, err := service.Bundle([]domain.Scenario{sampleScenario()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "scenarios_2026-01-15.zip" {
		t.Errorf("unexpected bundle name %q", name)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("bundle must be a readable zip: %v", err)
	}
	if len(zr.File) != 1 {
		t.Fatalf("expected 1 bundle entry, got %d", len(zr.File))
	}
	if got := zr.File[0].Name; got != "Scenario_1_P0.5_2026-01-15.csv" {
		t.Errorf("unexpected entry name %q", got)
	}
}

func TestBundleEmpty(t *testing.T) {
	service := NewService()
	if _, _, err := service.Bundle(nil); err == nil {
		t.Errorf("expected error for empty bundle")
	}
}
