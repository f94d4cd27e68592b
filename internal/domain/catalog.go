package domain

import "sort"

// ProductAttribute ties a value driver to one of its value ids.
type ProductAttribute struct {
	ValueDriverReferenceID string `json:"valueDriverReferenceId"`
	ReferenceID            string `json:"referenceId"`
}

// ProductVariant is a sellable unit of a product. Its attributes and
// aggregations overlay the parent product's attributes.
type ProductVariant struct {
	ReferenceID  string             `json:"referenceId"`
	Name         string             `json:"name,omitempty"`
	Attributes   []ProductAttribute `json:"attributes,omitempty"`
	Aggregations map[string]any     `json:"aggregations,omitempty"`
}

// Product is one entry of the hierarchical product catalog.
type Product struct {
	ReferenceID string             `json:"referenceId"`
	Name        string             `json:"name"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
	Variants    []ProductVariant   `json:"variants,omitempty"`
}

// AttributeSet maps a value driver id to the value ids observed for it.
// Most drivers resolve to a single value; a driver whose value differs
// across a product's variants carries all distinct values.
type AttributeSet map[string][]string

// Clone returns an independent copy of the set.
func (s AttributeSet) Clone() AttributeSet {
	clone := make(AttributeSet, len(s))
	for driver, values := range s {
		copied := make([]string, len(values))
		copy(copied, values)
		clone[driver] = copied
	}
	return clone
}

// Put replaces the driver's values with a single value id (overlay
// semantics for variant attributes and aggregations).
func (s AttributeSet) Put(driverID, valueID string) {
	if driverID == "" || valueID == "" {
		return
	}
	s[driverID] = []string{valueID}
}

// Add appends a value id to the driver, keeping the list de-duplicated
// and sorted (merge semantics for the by-name index).
func (s AttributeSet) Add(driverID, valueID string) {
	if driverID == "" || valueID == "" {
		return
	}
	values := s[driverID]
	for _, existing := range values {
		if existing == valueID {
			return
		}
	}
	values = append(values, valueID)
	sort.Strings(values)
	s[driverID] = values
}

// Matches reports whether any of the driver's values is in the accepted
// list. A driver with no resolved value never matches a non-empty list.
func (s AttributeSet) Matches(driverID string, accepted []string) bool {
	values, ok := s[driverID]
	if !ok || len(values) == 0 {
		return false
	}
	for _, value := range values {
		for _, want := range accepted {
			if value == want {
				return true
			}
		}
	}
	return false
}
