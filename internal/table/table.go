// Package table holds the extraction row model shared by the parser, the run
// store and the CSV/terminal renderers.
package table

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// Canonical column names, in output order.
const (
	ColumnMethod  = "Method"
	ColumnTools   = "Tools"
	ColumnDataset = "Dataset"
	ColumnMetrics = "Metrics"
	ColumnDomain  = "Domain"
)

// Fields lists the canonical columns every row carries.
var Fields = []string{ColumnMethod, ColumnTools, ColumnDataset, ColumnMetrics, ColumnDomain}

// columnAliases maps lower-cased names a model tends to emit onto canonical columns.
var columnAliases = map[string]string{
	"method":          ColumnMethod,
	"methods":         ColumnMethod,
	"tools":           ColumnTools,
	"tool":            ColumnTools,
	"tools/software":  ColumnTools,
	"software":        ColumnTools,
	"dataset":         ColumnDataset,
	"datasets":        ColumnDataset,
	"metrics":         ColumnMetrics,
	"metric":          ColumnMetrics,
	"domain":          ColumnDomain,
	"subfield/domain": ColumnDomain,
	"subfield":        ColumnDomain,
}

// Canonical returns the canonical column for name, or "" if name is not one
// of the known fields.
func Canonical(name string) string {
	return columnAliases[strings.ToLower(strings.TrimSpace(name))]
}

// Cell is an extra column the model emitted beyond the canonical fields.
type Cell struct {
	Column string
	Value  *string // nil = null
}

// Row is one extracted record. A nil field means the value was absent or null.
type Row struct {
	Method  *string
	Tools   *string
	Dataset *string
	Metrics *string
	Domain  *string
	Extra   []Cell
}

// Str returns a pointer to s.
func Str(s string) *string {
	return &s
}

func (r *Row) field(column string) **string {
	switch column {
	case ColumnMethod:
		return &r.Method
	case ColumnTools:
		return &r.Tools
	case ColumnDataset:
		return &r.Dataset
	case ColumnMetrics:
		return &r.Metrics
	case ColumnDomain:
		return &r.Domain
	}
	return nil
}

// Get returns the value stored under column. ok is false when the value is
// absent or null.
func (r Row) Get(column string) (value string, ok bool) {
	var v *string
	if canon := Canonical(column); canon != "" {
		v = *r.field(canon)
	} else {
		for _, c := range r.Extra {
			if c.Column == column {
				v = c.Value
				break
			}
		}
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Set stores value under column. Known aliases land in the canonical field;
// anything else is kept as an extra cell, replacing a previous cell of the
// same name.
func (r *Row) Set(column string, value *string) {
	if canon := Canonical(column); canon != "" {
		*r.field(canon) = value
		return
	}
	for i := range r.Extra {
		if r.Extra[i].Column == column {
			r.Extra[i].Value = value
			return
		}
	}
	r.Extra = append(r.Extra, Cell{Column: column, Value: value})
}

// IsEmpty reports whether every value in the row is absent.
func (r Row) IsEmpty() bool {
	for _, f := range Fields {
		if _, ok := r.Get(f); ok {
			return false
		}
	}
	for _, c := range r.Extra {
		if c.Value != nil {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a flat object: canonical fields first (null
// when absent), then extra cells in their original order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(i int, key string, v *string) error {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		val, err := json.Marshal(*v)
		if err != nil {
			return err
		}
		buf.Write(val)
		return nil
	}
	i := 0
	for _, f := range Fields {
		if err := write(i, f, *r.field(f)); err != nil {
			return nil, err
		}
		i++
	}
	for _, c := range r.Extra {
		if err := write(i, c.Column, c.Value); err != nil {
			return nil, err
		}
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat object produced by MarshalJSON or by a model.
func (r *Row) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("table: invalid row JSON")
	}
	obj := gjson.ParseBytes(data)
	if !obj.IsObject() {
		return errors.New("table: row must be a JSON object")
	}
	*r = FromJSON(obj)
	return nil
}

// FromJSON builds a row from a parsed JSON object, flattening nested values
// so every field ends up a string or null. Key order is preserved for extras.
func FromJSON(obj gjson.Result) Row {
	var row Row
	obj.ForEach(func(key, value gjson.Result) bool {
		row.Set(key.String(), Flatten(value))
		return true
	})
	return row
}

// Flatten converts any JSON value into a string. Arrays are joined with ", ",
// objects are kept as compact JSON text and null stays nil.
func Flatten(v gjson.Result) *string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return nil
	case v.Type == gjson.String:
		return Str(v.String())
	case v.IsArray():
		var parts []string
		v.ForEach(func(_, item gjson.Result) bool {
			if s := Flatten(item); s != nil && *s != "" {
				parts = append(parts, *s)
			}
			return true
		})
		return Str(strings.Join(parts, ", "))
	case v.IsObject():
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
			return Str(v.Raw)
		}
		return Str(buf.String())
	default:
		return Str(v.Raw)
	}
}

// Columns returns the canonical columns followed by every extra column in the
// order it was first seen across rows.
func Columns(rows []Row) []string {
	cols := append([]string(nil), Fields...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, r := range rows {
		for _, c := range r.Extra {
			if !seen[c.Column] {
				seen[c.Column] = true
				cols = append(cols, c.Column)
			}
		}
	}
	return cols
}
