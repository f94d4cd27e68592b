package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reserved column names of the base dataset. Extra columns are passed
// through transformations unchanged.
const (
	ColumnProductVariantID    = "Product Variant Id"
	ColumnProductName         = "Product Name"
	ColumnCurrentPrice        = "Current Price"
	ColumnCurrentAvailability = "Current Availability"
	ColumnCurrentCost         = "Current Cost"

	ColumnPriceChange            = "Price Change"
	ColumnPriceChangeType        = "Price Change Type"
	ColumnAvailabilityChange     = "Availability Change"
	ColumnAvailabilityChangeType = "Availability Change Type"
	ColumnCostChange             = "Cost Change"
	ColumnCostChangeType         = "Cost Change Type"
)

// Value is a single cell: either a raw string or a number. Numbers keep
// their float64 identity so recorded change deltas survive round trips
// without re-parsing.
type Value struct {
	num      float64
	str      string
	isNumber bool
}

// StringValue wraps a raw string cell.
func StringValue(s string) Value {
	return Value{str: s}
}

// NumberValue wraps a numeric cell.
func NumberValue(f float64) Value {
	return Value{num: f, isNumber: true}
}

// IsNumber reports whether the value was stored as a number.
func (v Value) IsNumber() bool {
	return v.isNumber
}

// IsEmpty reports whether the value holds nothing at all.
func (v Value) IsEmpty() bool {
	return !v.isNumber && v.str == ""
}

// Number returns the numeric interpretation of the value. String cells are
// parsed leniently: decimal commas are accepted because source files use a
// semicolon field delimiter.
func (v Value) Number() (float64, bool) {
	if v.isNumber {
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	}
	return ParseNumber(v.str)
}

// String renders the value the way it is written to delimited text.
func (v Value) String() string {
	if v.isNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// MarshalJSON keeps numbers numeric in persisted payloads.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNumber {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts either a JSON number or string.
func (v *Value) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = NumberValue(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*v = StringValue(str)
	return nil
}

// ParseNumber parses a numeric cell, tolerating a decimal comma. It returns
// false for empty or non-numeric input rather than an error.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, true
	}
	if strings.Count(raw, ",") == 1 && !strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Row is one record of a tabular dataset: an ordered mapping from column
// name to value. Source rows are immutable inputs; transformations clone
// first and mutate the clone.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow creates an empty row with the given column order.
func NewRow(columns []string) Row {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Row{columns: cols, values: make(map[string]Value, len(columns))}
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	clone := Row{
		columns: make([]string, len(r.columns)),
		values:  make(map[string]Value, len(r.values)),
	}
	copy(clone.columns, r.columns)
	for k, v := range r.values {
		clone.values[k] = v
	}
	return clone
}

// Columns returns the column order, annotation columns included once set.
func (r Row) Columns() []string {
	return r.columns
}

// Get returns the value stored for a column.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Text returns the string rendering of a column, or "" when absent.
func (r Row) Text(column string) string {
	v, ok := r.values[column]
	if !ok {
		return ""
	}
	return v.String()
}

// Number returns the numeric interpretation of a column.
func (r Row) Number(column string) (float64, bool) {
	v, ok := r.values[column]
	if !ok {
		return 0, false
	}
	return v.Number()
}

// Has reports whether a column carries a non-empty value.
func (r Row) Has(column string) bool {
	v, ok := r.values[column]
	return ok && !v.IsEmpty()
}

// Set stores a value, appending the column to the order if it is new.
func (r *Row) Set(column string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[column]; !ok {
		if !r.hasColumn(column) {
			r.columns = append(r.columns, column)
		}
	}
	r.values[column] = v
}

func (r Row) hasColumn(column string) bool {
	for _, c := range r.columns {
		if c == column {
			return true
		}
	}
	return false
}

// MarshalJSON renders the row as a flat column→value object.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]Value, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores values from a flat object. The original column
// order is not part of the payload; callers that care keep it separately.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]Value
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	columns := make([]string, 0, len(raw))
	for k := range raw {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	r.columns = columns
	r.values = raw
	return nil
}
