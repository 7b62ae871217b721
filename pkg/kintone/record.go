package kintone

import (
	"encoding/json"
	"sort"
	"strings"
)

// Field is one kintone field value. The value shape depends on the field
// type, so it is kept raw until a typed accessor reads it.
type Field struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Record is a kintone record keyed by field code.
type Record map[string]Field

// Row is one row of a SUBTABLE field.
type Row struct {
	ID    string           `json:"id"`
	Value map[string]Field `json:"value"`
}

type recordsResponse struct {
	Records    []Record `json:"records"`
	TotalCount *string  `json:"totalCount"`
}

type recordResponse struct {
	Record Record `json:"record"`
}

func (r Record) ID() string {
	return r.String("$id")
}

// String returns the value of a text, number or drop-down field, or "" when
// the field is absent or not scalar.
func (r Record) String(code string) string {
	f, ok := r[code]
	if !ok {
		return ""
	}
	return f.String()
}

// Table decodes a SUBTABLE field. Missing or malformed tables yield nil.
func (r Record) Table(code string) []Row {
	f, ok := r[code]
	if !ok || len(f.Value) == 0 {
		return nil
	}
	var rows []Row
	if err := json.Unmarshal(f.Value, &rows); err != nil {
		return nil
	}
	return rows
}

func (f Field) String() string {
	raw := strings.TrimSpace(string(f.Value))
	if raw == "" || raw == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(f.Value, &s); err == nil {
		return s
	}

	// Numbers come back unquoted from some endpoints
	if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
		return raw
	}
	return ""
}

func (row Row) String(code string) string {
	f, ok := row.Value[code]
	if !ok {
		return ""
	}
	return f.String()
}

// Texts returns the trimmed non-empty text values of the row, ordered by
// field code so repeated exports produce identical bodies.
func (row Row) Texts() []string {
	codes := make([]string, 0, len(row.Value))
	for code := range row.Value {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	texts := make([]string, 0, len(codes))
	for _, code := range codes {
		if v := strings.TrimSpace(row.Value[code].String()); v != "" {
			texts = append(texts, v)
		}
	}
	return texts
}
