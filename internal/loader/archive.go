package loader

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rpattn/scenariogen/internal/domain"
)

var (
	// ErrNotAnArchive is returned when the payload is not a readable zip.
	ErrNotAnArchive = errors.New("file is not a valid zip archive")
	// ErrNoTableMember is returned when the archive has no csv member.
	ErrNoTableMember = errors.New("no csv file found in archive")
	// ErrNoCatalogMember is returned when the archive has no json member.
	ErrNoCatalogMember = errors.New("no json file found in archive")
)

// Dataset is a fully loaded dataset: the base table plus the product
// master it is analyzed against.
type Dataset struct {
	Rows     []domain.Row
	Columns  []string
	Products []domain.Product

	TableName   string
	CatalogName string
}

// ParseArchive loads a dataset from a single zip upload holding one
// tabular member (.csv, .csv.gz or .xlsx) and one product master (.json).
// Missing members are reported with distinguishable errors so callers can
// tell the user exactly what the archive lacked.
func ParseArchive(payload []byte) (Dataset, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %v", ErrNotAnArchive, err)
	}

	var ds Dataset
	for _, member := range zr.File {
		if member.FileInfo().IsDir() || strings.HasPrefix(path.Base(member.Name), ".") {
			continue
		}
		name := strings.ToLower(member.Name)
		switch {
		case ds.TableName == "" && isTableMember(name):
			data, err := readMember(member)
			if err != nil {
				return Dataset{}, err
			}
			rows, columns, err := ParseTable(member.Name, data)
			if err != nil {
				return Dataset{}, fmt.Errorf("archive member %s: %w", member.Name, err)
			}
			ds.Rows, ds.Columns = rows, columns
			ds.TableName = member.Name
		case ds.CatalogName == "" && strings.HasSuffix(name, ".json"):
			data, err := readMember(member)
			if err != nil {
				return Dataset{}, err
			}
			products, err := ParseCatalog(data)
			if err != nil {
				return Dataset{}, fmt.Errorf("archive member %s: %w", member.Name, err)
			}
			ds.Products = products
			ds.CatalogName = member.Name
		}
	}

	if ds.TableName == "" {
		return Dataset{}, ErrNoTableMember
	}
	if ds.CatalogName == "" {
		return Dataset{}, ErrNoCatalogMember
	}
	return ds, nil
}

func isTableMember(name string) bool {
	return strings.HasSuffix(name, ".csv") ||
		strings.HasSuffix(name, ".csv.gz") ||
		strings.HasSuffix(name, ".xlsx")
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archive member %s: %w", member.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive member %s: %w", member.Name, err)
	}
	return data, nil
}
