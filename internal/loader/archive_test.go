package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		entry, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create archive entry: %v", err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write archive entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close archive: %v", err)
	}
	return buf.Bytes()
}

const sampleCatalogJSON = `[{"referenceId": "prod_1", "name": "Ice Tea"}]`

func TestParseArchive(t *testing.T) {
	payload := buildArchive(t, map[string]string{
		"dataset/data.csv":    sampleCSV,
		"dataset/master.json": sampleCatalogJSON,
	})

	ds, err := ParseArchive(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ds.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(ds.Rows))
	}
	if len(ds.Products) != 1 {
		t.Errorf("expected 1 product, got %d", len(ds.Products))
	}
	if ds.TableName != "dataset/data.csv" || ds.CatalogName != "dataset/master.json" {
		t.Errorf("unexpected member names %q / %q", ds.TableName, ds.CatalogName)
	}
}

func TestParseArchiveMissingMembers(t *testing.T) {
	noTable := buildArchive(t, map[string]string{"master.json": sampleCatalogJSON})
	if _, err := ParseArchive(noTable); !errors.Is(err, ErrNoTableMember) {
		t.Errorf("expected missing table error, got %v", err)
	}

	noCatalog := buildArchive(t, map[string]string{"data.csv": sampleCSV})
	if _, err := ParseArchive(noCatalog); !errors.Is(err, ErrNoCatalogMember) {
		t.Errorf("expected missing catalog error, got %v", err)
	}
}

func TestParseArchiveRejectsGarbage(t *testing.T) {
	if _, err := ParseArchive([]byte("not a zip")); !errors.Is(err, ErrNotAnArchive) {
		t.Errorf("expected invalid archive error, got %v", err)
	}
}
