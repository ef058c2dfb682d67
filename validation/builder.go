package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation Architecture
//
// A Context is owned by exactly one validation call. Rules run field by
// field through a FieldCheck chain started with Reset():
//
//	vc := validation.NewContext("loan")
//	vc.Reset().Parameter("principal").Value(principal).NotNull().PositiveAmount()
//	vc.Reset().Parameter("numberOfRepayments").Value(n).NotNull().IntegerGreaterThanZero()
//	...
//	return vc.ErrorsOrNil()
//
// Every failed predicate appends one Error and the chain keeps going, so a
// single run reports every violation it can find. The one exception: a failed
// NotNull or NotBlank short-circuits the remaining predicates of that chain
// only, since range or arithmetic checks against a missing value would just
// cascade noise. The outer field sequence always continues.
//
// Fail-fast errors (see errors.go) never pass through a Context; they are
// returned directly by the rule that detects them.

// Context collects parameter errors for a single validation call. It is not
// safe for concurrent use and must not be shared across requests.
type Context struct {
	resource string
	errors   []*Error
}

// NewContext creates an empty accumulator for the named resource. The
// resource name becomes the second segment of every generated error code.
func NewContext(resource string) *Context {
	return &Context{resource: resource}
}

// Resource returns the name the context was created with.
func (c *Context) Resource() string {
	return c.resource
}

// Reset starts a new field-scoped check, discarding any state from the
// previous field's chain.
func (c *Context) Reset() *FieldCheck {
	return &FieldCheck{ctx: c}
}

// AddError appends a pre-built error, preserving insertion order.
func (c *Context) AddError(err *Error) {
	c.errors = append(c.errors, err)
}

// HasErrors reports whether any check has failed so far.
func (c *Context) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns the accumulated errors in creation order.
func (c *Context) Errors() []*Error {
	return c.errors
}

// ErrorsOrNil returns the aggregate failure if any check failed, nil
// otherwise. Call it exactly once, at the end of the lifecycle context.
func (c *Context) ErrorsOrNil() error {
	if len(c.errors) == 0 {
		return nil
	}
	return NewErrors(c.errors)
}

// FieldCheck is the transient working unit of a single field's rule chain.
// It holds the parameter path and the extracted value, and evaluates one
// predicate per call.
type FieldCheck struct {
	ctx        *Context
	parameter  string
	value      any
	ignoreNil  bool
	nullFailed bool
}

// Parameter sets the parameter path for subsequent failures.
func (f *FieldCheck) Parameter(name string) *FieldCheck {
	f.parameter = name
	return f
}

// ParameterAtIndex scopes the parameter path to the i-th element of the
// current (array) parameter, e.g. "disbursementData[2].principal".
func (f *FieldCheck) ParameterAtIndex(name string, i int) *FieldCheck {
	f.parameter = fmt.Sprintf("%s[%d].%s", f.parameter, i, name)
	return f
}

// Value sets the extracted value under test. Absence is expressed with a nil
// pointer (*string, *int64, *bool, *decimal.Decimal, *time.Time).
func (f *FieldCheck) Value(v any) *FieldCheck {
	f.value = v
	return f
}

// IgnoreIfNull makes NotNull a no-op for this chain; all other predicates
// already pass on absent values.
func (f *FieldCheck) IgnoreIfNull() *FieldCheck {
	f.ignoreNil = true
	return f
}

func (f *FieldCheck) fail(rule, message string, args ...any) {
	f.ctx.AddError(&Error{
		Code:      fmt.Sprintf("validation.msg.%s.%s.%s", f.ctx.resource, f.parameter, rule),
		Message:   message,
		Parameter: f.parameter,
		Value:     f.value,
		Args:      args,
	})
}

// FailWithCode unconditionally appends an error; used for rules whose
// condition was computed beforehand.
func (f *FieldCheck) FailWithCode(code, message string, args ...any) *FieldCheck {
	f.fail(code, message, args...)
	return f
}

// NotNull fails when the value is absent, unless IgnoreIfNull was set.
// A failure short-circuits the rest of this chain.
func (f *FieldCheck) NotNull() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if isAbsent(f.value) && !f.ignoreNil {
		f.fail("cannot.be.blank", fmt.Sprintf("The parameter %s is mandatory.", f.parameter))
		f.nullFailed = true
	}
	return f
}

// NotBlank fails when a string value is absent or only whitespace.
// A failure short-circuits the rest of this chain.
func (f *FieldCheck) NotBlank() *FieldCheck {
	if f.nullFailed {
		return f
	}
	s, ok := asString(f.value)
	if !ok || strings.TrimSpace(s) == "" {
		f.fail("cannot.be.blank", fmt.Sprintf("The parameter %s is mandatory.", f.parameter))
		f.nullFailed = true
	}
	return f
}

// NotExceedingLength fails when a present string is longer than max runes.
func (f *FieldCheck) NotExceedingLength(max int) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if s, ok := asString(f.value); ok && len([]rune(s)) > max {
		f.fail("exceeds.max.length",
			fmt.Sprintf("The parameter %s exceeds max length of %d.", f.parameter, max), max)
	}
	return f
}

// IntegerGreaterThanZero fails when a present integer is zero or negative.
func (f *FieldCheck) IntegerGreaterThanZero() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if n, ok := asInt64(f.value); ok && n <= 0 {
		f.fail("not.greater.than.zero",
			fmt.Sprintf("The parameter %s must be greater than 0.", f.parameter), n)
	}
	return f
}

// IntegerZeroOrGreater fails when a present integer is negative.
func (f *FieldCheck) IntegerZeroOrGreater() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if n, ok := asInt64(f.value); ok && n < 0 {
		f.fail("not.zero.or.greater",
			fmt.Sprintf("The parameter %s must be zero or greater.", f.parameter), n)
	}
	return f
}

// InMinMaxRange fails when a present integer falls outside [min, max].
func (f *FieldCheck) InMinMaxRange(min, max int64) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if n, ok := asInt64(f.value); ok && (n < min || n > max) {
		f.fail("is.not.within.expected.range",
			fmt.Sprintf("The parameter %s must be between %d and %d inclusive.", f.parameter, min, max), min, max)
	}
	return f
}

// IsOneOf fails when a present integer is none of the allowed values.
func (f *FieldCheck) IsOneOf(allowed ...int64) *FieldCheck {
	if f.nullFailed {
		return f
	}
	n, ok := asInt64(f.value)
	if !ok {
		return f
	}
	for _, a := range allowed {
		if n == a {
			return f
		}
	}
	args := make([]any, len(allowed))
	for i, a := range allowed {
		args[i] = a
	}
	f.fail("is.not.one.of.expected.enumerations",
		fmt.Sprintf("The parameter %s must be one of %v.", f.parameter, allowed), args...)
	return f
}

// IsOneOfStrings fails when a present string is none of the allowed values.
func (f *FieldCheck) IsOneOfStrings(allowed ...string) *FieldCheck {
	if f.nullFailed {
		return f
	}
	s, ok := asString(f.value)
	if !ok {
		return f
	}
	for _, a := range allowed {
		if s == a {
			return f
		}
	}
	args := make([]any, len(allowed))
	for i, a := range allowed {
		args[i] = a
	}
	f.fail("is.not.one.of.expected.enumerations",
		fmt.Sprintf("The parameter %s must be one of %v.", f.parameter, allowed), args...)
	return f
}

// IntegerSameAsNumber fails when a present integer differs from want.
func (f *FieldCheck) IntegerSameAsNumber(want int64) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if n, ok := asInt64(f.value); ok && n != want {
		f.fail("not.equal.to.expected.number",
			fmt.Sprintf("The parameter %s must be equal to %d.", f.parameter, want), want)
	}
	return f
}

// PositiveAmount fails when a present amount is zero or negative.
func (f *FieldCheck) PositiveAmount() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if d, ok := asDecimal(f.value); ok && d.Sign() <= 0 {
		f.fail("not.greater.than.zero",
			fmt.Sprintf("The parameter %s must be greater than 0.", f.parameter), d)
	}
	return f
}

// ZeroOrPositiveAmount fails when a present amount is negative.
func (f *FieldCheck) ZeroOrPositiveAmount() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if d, ok := asDecimal(f.value); ok && d.Sign() < 0 {
		f.fail("not.zero.or.greater",
			fmt.Sprintf("The parameter %s must be zero or greater.", f.parameter), d)
	}
	return f
}

// InDecimalRange fails when a present amount falls outside [min, max].
// Either bound may be omitted by passing a nil pointer.
func (f *FieldCheck) InDecimalRange(min, max *decimal.Decimal) *FieldCheck {
	if f.nullFailed {
		return f
	}
	d, ok := asDecimal(f.value)
	if !ok {
		return f
	}
	if min != nil && max != nil && (d.LessThan(*min) || d.GreaterThan(*max)) {
		f.fail("is.not.within.min.max.range",
			fmt.Sprintf("The parameter %s must be between %s and %s inclusive.", f.parameter, min, max), *min, *max)
		return f
	}
	if min != nil && max == nil && d.LessThan(*min) {
		f.fail("is.less.than.min",
			fmt.Sprintf("The parameter %s must be at least %s.", f.parameter, min), *min)
	}
	if max != nil && min == nil && d.GreaterThan(*max) {
		f.fail("is.greater.than.max",
			fmt.Sprintf("The parameter %s must not be greater than %s.", f.parameter, max), *max)
	}
	return f
}

// NotLessThanMin fails when a present amount is below min.
func (f *FieldCheck) NotLessThanMin(min decimal.Decimal) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if d, ok := asDecimal(f.value); ok && d.LessThan(min) {
		f.fail("is.less.than.min",
			fmt.Sprintf("The parameter %s must be at least %s.", f.parameter, min), min)
	}
	return f
}

// NotGreaterThanMax fails when a present amount is above max.
func (f *FieldCheck) NotGreaterThanMax(max decimal.Decimal) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if d, ok := asDecimal(f.value); ok && d.GreaterThan(max) {
		f.fail("is.greater.than.max",
			fmt.Sprintf("The parameter %s must not be greater than %s.", f.parameter, max), max)
	}
	return f
}

// TrueOrFalseRequired fails when a required boolean is absent.
func (f *FieldCheck) TrueOrFalseRequired() *FieldCheck {
	if f.nullFailed {
		return f
	}
	if isAbsent(f.value) {
		f.fail("must.be.true.or.false",
			fmt.Sprintf("The parameter %s must be set as true or false.", f.parameter))
	}
	return f
}

// MustBeBlankWhenParameterProvided fails when both this value and the other
// parameter are present; the pair is mutually exclusive.
func (f *FieldCheck) MustBeBlankWhenParameterProvided(other string, otherValue any) *FieldCheck {
	if f.nullFailed {
		return f
	}
	if !isAbsent(f.value) && !isAbsent(otherValue) {
		f.fail(fmt.Sprintf("cannot.be.provided.when.%s.is.provided", other),
			fmt.Sprintf("The parameter %s cannot be provided when %s is provided.", f.parameter, other), other)
	}
	return f
}

// ExpectedArrayButIsNot records that the parameter was present but not an array.
func (f *FieldCheck) ExpectedArrayButIsNot() *FieldCheck {
	f.fail("is.not.an.array", fmt.Sprintf("The parameter %s must be an array.", f.parameter))
	return f
}

// isAbsent reports whether a value expresses absence: untyped nil or a nil
// typed pointer of one of the extraction result types.
func isAbsent(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *string:
		return x == nil
	case *int64:
		return x == nil
	case *bool:
		return x == nil
	case *decimal.Decimal:
		return x == nil
	case *time.Time:
		return x == nil
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	default:
		return "", false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case *int64:
		if x == nil {
			return 0, false
		}
		return *x, true
	default:
		return 0, false
	}
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	default:
		return decimal.Zero, false
	}
}
