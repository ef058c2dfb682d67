// Package document implements the typed view over a raw loan API request.
// A Document is parsed once and then queried field by field by the
// validators; every accessor distinguishes "absent or null" (nil pointer, no
// error) from "present but unconvertible" (non-nil error).
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/microfin/loanval/validation"
)

// DateFormat is the wire format for all date parameters.
const DateFormat = "2006-01-02"

// Document is a parsed request body. It is read-only after Parse and safe to
// share across rule groups within one validation call.
type Document struct {
	fields map[string]json.RawMessage
}

// Parse reads a raw request body. A blank body and a body that is not a JSON
// object are structural failures, reported fail-fast before any business rule
// can run.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &validation.BlankRequestError{}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, &validation.MalformedRequestError{Underlying: err}
	}

	return &Document{fields: fields}, nil
}

// FromRaw wraps an already-decoded JSON object, used for nested array
// elements (tranches, charges, collateral entries).
func FromRaw(fields map[string]json.RawMessage) *Document {
	return &Document{fields: fields}
}

// Has reports whether the parameter is present at all, including when its
// value is JSON null.
func (d *Document) Has(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// Parameters returns the present parameter names in sorted order.
func (d *Document) Parameters() []string {
	names := make([]string, 0, len(d.fields))
	for name := range d.fields {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CheckSupported verifies every present parameter is in the allow-list,
// returning an UnsupportedParametersError naming all offenders otherwise.
func (d *Document) CheckSupported(allowed ...string) error {
	var unsupported []string
	for name := range d.fields {
		if !slices.Contains(allowed, name) {
			unsupported = append(unsupported, name)
		}
	}
	if len(unsupported) > 0 {
		return validation.NewUnsupportedParametersError(unsupported)
	}
	return nil
}

func (d *Document) raw(name string) (json.RawMessage, bool) {
	raw, ok := d.fields[name]
	if !ok {
		return nil, false
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, false
	}
	return raw, true
}

// String extracts a string parameter.
func (d *Document) String(name string) (*string, error) {
	raw, ok := d.raw(name)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parameter %s is not a string: %w", name, err)
	}
	return &s, nil
}

// Long extracts an integer parameter. Numeric strings are accepted, matching
// the lenient typing of the original API.
func (d *Document) Long(name string) (*int64, error) {
	raw, ok := d.raw(name)
	if !ok {
		return nil, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if serr := json.Unmarshal(raw, &s); serr != nil {
			return nil, fmt.Errorf("parameter %s is not an integer: %w", name, err)
		}
		num = json.Number(strings.TrimSpace(s))
	}
	n, err := num.Int64()
	if err != nil {
		return nil, fmt.Errorf("parameter %s is not an integer: %w", name, err)
	}
	return &n, nil
}

// Decimal extracts an exact decimal amount. Amounts are never read as floats.
func (d *Document) Decimal(name string) (*decimal.Decimal, error) {
	raw, ok := d.raw(name)
	if !ok {
		return nil, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		var s string
		if serr := json.Unmarshal(raw, &s); serr != nil {
			return nil, fmt.Errorf("parameter %s is not a number: %w", name, err)
		}
		num = json.Number(strings.TrimSpace(s))
	}
	dec, err := decimal.NewFromString(num.String())
	if err != nil {
		return nil, fmt.Errorf("parameter %s is not a number: %w", name, err)
	}
	return &dec, nil
}

// Bool extracts a boolean parameter.
func (d *Document) Bool(name string) (*bool, error) {
	raw, ok := d.raw(name)
	if !ok {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parameter %s is not a boolean: %w", name, err)
	}
	return &b, nil
}

// Date extracts a date parameter in the 2006-01-02 wire format.
func (d *Document) Date(name string) (*time.Time, error) {
	s, err := d.String(name)
	if err != nil {
		return nil, fmt.Errorf("parameter %s is not a date: %w", name, err)
	}
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(DateFormat, *s)
	if err != nil {
		return nil, fmt.Errorf("parameter %s is not a %s date: %w", name, DateFormat, err)
	}
	return &t, nil
}

// IsArray reports whether a present parameter holds a JSON array.
func (d *Document) IsArray(name string) bool {
	raw, ok := d.raw(name)
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// Objects extracts an array of objects as nested documents, preserving
// submission order.
func (d *Document) Objects(name string) ([]*Document, error) {
	raw, ok := d.raw(name)
	if !ok {
		return nil, nil
	}
	var elements []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("parameter %s is not an array of objects: %w", name, err)
	}
	docs := make([]*Document, len(elements))
	for i, el := range elements {
		docs[i] = FromRaw(el)
	}
	return docs, nil
}
