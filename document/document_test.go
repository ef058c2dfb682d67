package document

import (
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/validation"
)

func TestParseBlankBody(t *testing.T) {
	for _, body := range []string{"", "   ", "\n\t"} {
		_, err := Parse([]byte(body))
		var blank *validation.BlankRequestError
		assert.True(t, errors.As(err, &blank))
	}
}

func TestParseMalformedBody(t *testing.T) {
	_, err := Parse([]byte(`{"principal": `))
	var malformed *validation.MalformedRequestError
	assert.True(t, errors.As(err, &malformed))
}

func TestHasTreatsNullAsPresent(t *testing.T) {
	doc, err := Parse([]byte(`{"principal": null}`))
	assert.NoError(t, err)
	assert.True(t, doc.Has("principal"))
	assert.False(t, doc.Has("clientId"))

	// But the typed accessor reads null as absent.
	v, err := doc.Decimal("principal")
	assert.NoError(t, err)
	assert.Zero(t, v)
}

func TestCheckSupported(t *testing.T) {
	doc, err := Parse([]byte(`{"principal": 1, "foo": 2, "bar": 3}`))
	assert.NoError(t, err)

	assert.NoError(t, doc.CheckSupported("principal", "foo", "bar"))

	uerr := doc.CheckSupported("principal")
	var unsupported *validation.UnsupportedParametersError
	assert.True(t, errors.As(uerr, &unsupported))
	assert.Equal(t, []string{"bar", "foo"}, unsupported.Parameters)
}

func TestLongAcceptsNumericStrings(t *testing.T) {
	doc, err := Parse([]byte(`{"a": 42, "b": "17", "c": "x"}`))
	assert.NoError(t, err)

	a, err := doc.Long("a")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), *a)

	b, err := doc.Long("b")
	assert.NoError(t, err)
	assert.Equal(t, int64(17), *b)

	_, err = doc.Long("c")
	assert.Error(t, err)
}

func TestDecimalIsExact(t *testing.T) {
	doc, err := Parse([]byte(`{"principal": 5000.10, "rate": "12.5"}`))
	assert.NoError(t, err)

	principal, err := doc.Decimal("principal")
	assert.NoError(t, err)
	assert.True(t, principal.Equal(decimal.RequireFromString("5000.10")))

	rate, err := doc.Decimal("rate")
	assert.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("12.5")))
}

func TestDate(t *testing.T) {
	doc, err := Parse([]byte(`{"ok": "2026-03-02", "bad": "02/03/2026"}`))
	assert.NoError(t, err)

	d, err := doc.Date("ok")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), *d)

	_, err = doc.Date("bad")
	assert.Error(t, err)

	missing, err := doc.Date("absent")
	assert.NoError(t, err)
	assert.Zero(t, missing)
}

func TestObjectsPreserveOrder(t *testing.T) {
	doc, err := Parse([]byte(`{"disbursementData": [
		{"principal": 100},
		{"principal": 200},
		{"principal": 300}
	]}`))
	assert.NoError(t, err)
	assert.True(t, doc.IsArray("disbursementData"))

	entries, err := doc.Objects("disbursementData")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(entries))

	for i, want := range []int64{100, 200, 300} {
		p, err := entries[i].Decimal("principal")
		assert.NoError(t, err)
		assert.True(t, p.Equal(decimal.NewFromInt(want)))
	}
}

func TestIsArray(t *testing.T) {
	doc, err := Parse([]byte(`{"charges": [], "principal": 5}`))
	assert.NoError(t, err)
	assert.True(t, doc.IsArray("charges"))
	assert.False(t, doc.IsArray("principal"))
	assert.False(t, doc.IsArray("missing"))
}

func TestParametersSorted(t *testing.T) {
	doc, err := Parse([]byte(`{"zulu": 1, "alpha": 2, "mike": 3}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, doc.Parameters())
}
