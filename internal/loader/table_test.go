package loader

import (
	"bytes"
	"compress/gzip"
	"errors"
	"reflect"
	"testing"

	"github.com/rpattn/scenariogen/internal/domain"
)

const sampleCSV = "Product Variant Id;Product Name;Current Price\n" +
	"var_1;Ice Tea;10,50\n" +
	"var_2;Lemonade;5.00\n"

func TestParseTableCSV(t *testing.T) {
	rows, columns, err := ParseTable("data.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantColumns := []string{"Product Variant Id", "Product Name", "Current Price"}
	if !reflect.DeepEqual(columns, wantColumns) {
		t.Errorf("unexpected columns %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Text("Product Name"); got != "Ice Tea" {
		t.Errorf("unexpected product name %q", got)
	}

	// Decimal commas survive loading and parse numerically.
	if got, ok := rows[0].Number("Current Price"); !ok || got != 10.5 {
		t.Errorf("expected 10.5, got %v (ok=%v)", got, ok)
	}
}

func TestParseTableStripsBOM(t *testing.T) {
	payload := append([]byte{0xEF, 0xBB, 0xBF}, []byte(sampleCSV)...)
	_, columns, err := ParseTable("data.csv", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if columns[0] != "Product Variant Id" {
		t.Errorf("BOM must not leak into the first column name, got %q", columns[0])
	}
}

func TestParseTableGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleCSV)); err != nil {
		t.Fatalf("failed to compress fixture: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}

	rows, _, err := ParseTable("data.csv.gz", buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows from gzip payload, got %d", len(rows))
	}
}

func TestParseTablePadsShortRecords(t *testing.T) {
	payload := "A;B;C\n1;2\n\n4;5;6;7\n"
	rows, columns, err := ParseTable("data.csv", []byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(columns))
	}
	if len(rows) != 2 {
		t.Fatalf("empty lines must be skipped, got %d rows", len(rows))
	}
	if got := rows[0].Text("C"); got != "" {
		t.Errorf("short record must pad missing cells, got %q", got)
	}
	if got := rows[1].Text("C"); got != "6" {
		t.Errorf("long record must truncate to the header, got %q", got)
	}
}

func TestParseTableUnsupportedFormat(t *testing.T) {
	if _, _, err := ParseTable("data.txt", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestParseCatalog(t *testing.T) {
	payload := `[
		{
			"referenceId": "prod_1",
			"name": "Ice Tea",
			"attributes": [{"valueDriverReferenceId": "brand", "referenceId": "brand_alpha"}],
			"variants": [{"referenceId": "var_1", "aggregations": {"sugar": "free"}}]
		}
	]`
	products, err := ParseCatalog([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Ice Tea" {
		t.Fatalf("unexpected products %+v", products)
	}
	if got := products[0].Variants[0].Aggregations["sugar"]; got != "free" {
		t.Errorf("unexpected aggregation %v", got)
	}
}

func TestDistinctColumnValues(t *testing.T) {
	rows := []domain.Row{}
	for _, region := range []string{"North", "South", "North", ""} {
		row := domain.NewRow([]string{"Region"})
		row.Set("Region", domain.StringValue(region))
		rows = append(rows, row)
	}

	values := DistinctColumnValues(rows, []string{"Region"}, 10)
	if got := values["Region"]; !reflect.DeepEqual(got, []string{"North", "South"}) {
		t.Errorf("expected sorted distinct values, got %v", got)
	}
}
