package loader

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ParseCatalog decodes a product master JSON document into products.
func ParseCatalog(payload []byte) ([]domain.Product, error) {
	payload = bytes.TrimPrefix(payload, byteOrderMark)

	var products []domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, fmt.Errorf("failed to parse product master json: %w", err)
	}
	return products, nil
}
