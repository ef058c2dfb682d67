package validator

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/domain"
)

func TestResolveConstraintsScheduleType(t *testing.T) {
	progressive := testProduct()
	progressive.ScheduleType = domain.ScheduleProgressive
	c := ResolveConstraints(progressive)
	assert.True(t, c.RequiresAdvancedPaymentAllocation())
	assert.False(t, c.ForbidsAdvancedPaymentAllocation())

	cumulative := testProduct()
	c = ResolveConstraints(cumulative)
	assert.False(t, c.RequiresAdvancedPaymentAllocation())
	assert.True(t, c.ForbidsAdvancedPaymentAllocation())
}

func TestResolveConstraintsApprovalCap(t *testing.T) {
	proposed := decimal.NewFromInt(5000)

	t.Run("no over-application", func(t *testing.T) {
		c := ResolveConstraints(testProduct())
		assert.True(t, c.ApprovalCap(proposed).Equal(proposed))
	})

	t.Run("percentage margin", func(t *testing.T) {
		p := testProduct()
		p.AllowApprovedAmountOverApplied = true
		p.OverAppliedCalculationType = domain.OverAppliedPercentage
		p.OverAppliedNumber = 20
		c := ResolveConstraints(p)
		assert.True(t, c.ApprovalCap(proposed).Equal(decimal.NewFromInt(6000)))
	})

	t.Run("flat margin", func(t *testing.T) {
		p := testProduct()
		p.AllowApprovedAmountOverApplied = true
		p.OverAppliedCalculationType = domain.OverAppliedFlat
		p.OverAppliedNumber = 750
		c := ResolveConstraints(p)
		assert.True(t, c.ApprovalCap(proposed).Equal(decimal.NewFromInt(5750)))
	})
}

func TestResolveConstraintsPartialPeriodInterest(t *testing.T) {
	p := testProduct()
	c := ResolveConstraints(p)

	// Daily calculation always supports partial periods.
	assert.True(t, c.SupportsPartialPeriodInterest(domain.InterestCalculationDaily))
	assert.False(t, c.SupportsPartialPeriodInterest(domain.InterestCalculationSameAsRepayment))

	p.AllowPartialPeriodInterestCalculation = true
	c = ResolveConstraints(p)
	assert.True(t, c.SupportsPartialPeriodInterest(domain.InterestCalculationSameAsRepayment))
}

func TestResolveConstraintsFloatingRateBounds(t *testing.T) {
	p := testProduct()
	p.LinkedToFloatingRate = true
	p.FloatingRates = &domain.FloatingRateConfig{
		MinDifferentialLendingRate: decimal.NewFromInt(1),
		MaxDifferentialLendingRate: decimal.NewFromInt(5),
	}
	c := ResolveConstraints(p)
	assert.True(t, c.IsLinkedToFloatingRate())
	min, max := c.FloatingRateBounds()
	assert.True(t, min.Equal(decimal.NewFromInt(1)))
	assert.True(t, max.Equal(decimal.NewFromInt(5)))
}
