package validation

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestContextAccumulatesAcrossFields(t *testing.T) {
	vc := NewContext("loan")

	var principal *decimal.Decimal
	var repayments *int64
	vc.Reset().Parameter("principal").Value(principal).NotNull().PositiveAmount()
	vc.Reset().Parameter("numberOfRepayments").Value(repayments).NotNull().IntegerGreaterThanZero()

	errs, ok := vc.ErrorsOrNil().(*Errors)
	assert.True(t, ok)
	assert.Equal(t, GlobalErrorCode, errs.GlobalCode)
	assert.Equal(t, 2, len(errs.Errors))
	assert.Equal(t, "validation.msg.loan.principal.cannot.be.blank", errs.Errors[0].Code)
	assert.Equal(t, "validation.msg.loan.numberOfRepayments.cannot.be.blank", errs.Errors[1].Code)
}

func TestNullFailureShortCircuitsChainOnly(t *testing.T) {
	vc := NewContext("loan")

	// The failed NotNull suppresses the rest of its own chain but the next
	// field still runs.
	var absent *int64
	negative := int64(-5)
	vc.Reset().Parameter("loanTermFrequency").Value(absent).NotNull().IntegerGreaterThanZero().InMinMaxRange(1, 10)
	vc.Reset().Parameter("repaymentEvery").Value(&negative).NotNull().IntegerGreaterThanZero()

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, 2, len(errs.Errors))
	assert.Equal(t, "validation.msg.loan.loanTermFrequency.cannot.be.blank", errs.Errors[0].Code)
	assert.Equal(t, "validation.msg.loan.repaymentEvery.not.greater.than.zero", errs.Errors[1].Code)
}

func TestChainContinuesAfterNonNullFailure(t *testing.T) {
	vc := NewContext("loan")

	value := int64(50)
	vc.Reset().Parameter("numberOfRepayments").Value(&value).NotNull().
		InMinMaxRange(1, 24).IntegerSameAsNumber(12)

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, 2, len(errs.Errors))
}

func TestIgnoreIfNull(t *testing.T) {
	vc := NewContext("loan")
	var absent *decimal.Decimal
	vc.Reset().Parameter("fixedEmiAmount").Value(absent).IgnoreIfNull().NotNull().PositiveAmount()
	assert.NoError(t, vc.ErrorsOrNil())
}

func TestDecimalPredicates(t *testing.T) {
	min := decimal.NewFromInt(1000)
	max := decimal.NewFromInt(10000)

	tests := []struct {
		name     string
		value    int64
		wantCode string
	}{
		{name: "within bounds", value: 5000, wantCode: ""},
		{name: "below min", value: 500, wantCode: "validation.msg.loan.principal.is.not.within.min.max.range"},
		{name: "above max", value: 20000, wantCode: "validation.msg.loan.principal.is.not.within.min.max.range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := NewContext("loan")
			value := decimal.NewFromInt(tt.value)
			vc.Reset().Parameter("principal").Value(&value).InDecimalRange(&min, &max)

			if tt.wantCode == "" {
				assert.NoError(t, vc.ErrorsOrNil())
				return
			}
			errs := vc.ErrorsOrNil().(*Errors)
			assert.Equal(t, tt.wantCode, errs.Errors[0].Code)
		})
	}
}

func TestDecimalOpenEndedBounds(t *testing.T) {
	min := decimal.NewFromInt(100)
	value := decimal.NewFromInt(50)

	vc := NewContext("loan")
	vc.Reset().Parameter("principal").Value(&value).InDecimalRange(&min, nil)
	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, "validation.msg.loan.principal.is.less.than.min", errs.Errors[0].Code)

	vc = NewContext("loan")
	vc.Reset().Parameter("principal").Value(&value).InDecimalRange(nil, nil)
	assert.NoError(t, vc.ErrorsOrNil())
}

func TestStringPredicates(t *testing.T) {
	vc := NewContext("loan")

	blank := "   "
	long := "abcdefghij"
	other := "declining"
	vc.Reset().Parameter("loanType").Value(&blank).NotBlank()
	vc.Reset().Parameter("externalId").Value(&long).NotExceedingLength(5)
	vc.Reset().Parameter("scheduleType").Value(&other).IsOneOfStrings("CUMULATIVE", "PROGRESSIVE")

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, 3, len(errs.Errors))
	assert.Equal(t, "validation.msg.loan.loanType.cannot.be.blank", errs.Errors[0].Code)
	assert.Equal(t, "validation.msg.loan.externalId.exceeds.max.length", errs.Errors[1].Code)
	assert.Equal(t, "validation.msg.loan.scheduleType.is.not.one.of.expected.enumerations", errs.Errors[2].Code)
}

func TestMustBeBlankWhenParameterProvided(t *testing.T) {
	vc := NewContext("loan")
	group := int64(7)
	client := int64(1)
	vc.Reset().Parameter("groupId").Value(&group).MustBeBlankWhenParameterProvided("clientId", &client)

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, "validation.msg.loan.groupId.cannot.be.provided.when.clientId.is.provided", errs.Errors[0].Code)
}

func TestParameterAtIndex(t *testing.T) {
	vc := NewContext("loan")
	vc.Reset().Parameter("disbursementData").ParameterAtIndex("principal", 2).NotNull()

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, "validation.msg.loan.disbursementData[2].principal.cannot.be.blank", errs.Errors[0].Code)
	assert.Equal(t, "disbursementData[2].principal", errs.Errors[0].Parameter)
}

func TestErrorsOrNilEmpty(t *testing.T) {
	vc := NewContext("loan")
	value := int64(5)
	vc.Reset().Parameter("numberOfRepayments").Value(&value).NotNull().IntegerGreaterThanZero()
	assert.NoError(t, vc.ErrorsOrNil())
}

func TestOneSidedAmountBounds(t *testing.T) {
	low := decimal.NewFromInt(50)
	high := decimal.NewFromInt(20000)

	vc := NewContext("loan")
	vc.Reset().Parameter("approvedLoanAmount").Value(&low).NotLessThanMin(decimal.NewFromInt(100))
	vc.Reset().Parameter("transactionAmount").Value(&high).NotGreaterThanMax(decimal.NewFromInt(10000))

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, 2, len(errs.Errors))
	assert.Equal(t, "validation.msg.loan.approvedLoanAmount.is.less.than.min", errs.Errors[0].Code)
	assert.Equal(t, "validation.msg.loan.transactionAmount.is.greater.than.max", errs.Errors[1].Code)

	vc = NewContext("loan")
	ok := decimal.NewFromInt(5000)
	vc.Reset().Parameter("approvedLoanAmount").Value(&ok).
		NotLessThanMin(decimal.NewFromInt(100)).NotGreaterThanMax(decimal.NewFromInt(10000))
	assert.NoError(t, vc.ErrorsOrNil())
}

func TestTrueOrFalseRequired(t *testing.T) {
	vc := NewContext("loan")
	vc.Reset().Parameter("isTopup").Value(nil).TrueOrFalseRequired()

	errs := vc.ErrorsOrNil().(*Errors)
	assert.Equal(t, "validation.msg.loan.isTopup.must.be.true.or.false", errs.Errors[0].Code)

	vc = NewContext("loan")
	set := false
	vc.Reset().Parameter("isTopup").Value(&set).TrueOrFalseRequired()
	assert.NoError(t, vc.ErrorsOrNil())
}
