package domain

// FilterSet scopes a change to a subset of rows. Attribute filters are
// keyed by value driver id and resolved through the catalog index; column
// filters are keyed by literal column name and matched against row values
// directly. An empty accepted-value list (or an absent key) places no
// constraint on that key.
type FilterSet struct {
	Attributes map[string][]string `json:"attributes,omitempty"`
	Columns    map[string][]string `json:"columns,omitempty"`
}

// IsEmpty reports whether the filter set constrains nothing at all, in
// which case it matches every row.
func (f FilterSet) IsEmpty() bool {
	for _, values := range f.Columns {
		if len(values) > 0 {
			return false
		}
	}
	for _, values := range f.Attributes {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the filter set.
func (f FilterSet) Clone() FilterSet {
	return FilterSet{
		Attributes: cloneFilterMap(f.Attributes),
		Columns:    cloneFilterMap(f.Columns),
	}
}

func cloneFilterMap(m map[string][]string) map[string][]string {
	if m == nil {
		return nil
	}
	clone := make(map[string][]string, len(m))
	for key, values := range m {
		copied := make([]string, len(values))
		copy(copied, values)
		clone[key] = copied
	}
	return clone
}
