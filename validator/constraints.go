package validator

import (
	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/domain"
)

// ProductConstraints is the dynamic rule surface resolved from a loan product
// snapshot. It is computed once per validation call and threaded through the
// rule groups as a read-only value.
type ProductConstraints struct {
	product *domain.LoanProduct
}

// ResolveConstraints derives the constraint surface from the product. Pure;
// call once per entry point, not per field.
func ResolveConstraints(p *domain.LoanProduct) *ProductConstraints {
	return &ProductConstraints{product: p}
}

// CurrencyCode returns the product currency.
func (c *ProductConstraints) CurrencyCode() string {
	return c.product.CurrencyCode
}

// IsLinkedToFloatingRate reports whether the product derives its interest
// rate from a floating benchmark.
func (c *ProductConstraints) IsLinkedToFloatingRate() bool {
	return c.product.LinkedToFloatingRate
}

// FloatingRateBounds returns the allowed differential lending rate window.
// Only meaningful when IsLinkedToFloatingRate is true.
func (c *ProductConstraints) FloatingRateBounds() (min, max decimal.Decimal) {
	if c.product.FloatingRates == nil {
		return decimal.Zero, decimal.Zero
	}
	return c.product.FloatingRates.MinDifferentialLendingRate,
		c.product.FloatingRates.MaxDifferentialLendingRate
}

// AllowsFloatingCalculation reports whether applications may opt in to a
// floating interest rate of their own.
func (c *ProductConstraints) AllowsFloatingCalculation() bool {
	return c.product.FloatingRates != nil && c.product.FloatingRates.FloatingCalculationAllowed
}

// PrincipalBounds returns the configured principal window. A nil bound means
// unbounded on that side.
func (c *ProductConstraints) PrincipalBounds() (min, max *decimal.Decimal) {
	return c.product.MinPrincipal, c.product.MaxPrincipal
}

// RepaymentsBounds returns the configured number-of-repayments window. A nil
// bound means unbounded on that side.
func (c *ProductConstraints) RepaymentsBounds() (min, max *int64) {
	return c.product.MinNumberOfRepayments, c.product.MaxNumberOfRepayments
}

// IsMultiDisburse reports whether the loan is disbursed in tranches.
func (c *ProductConstraints) IsMultiDisburse() bool {
	return c.product.MultiDisburse
}

// MaxTrancheCount returns the tranche limit of a multi-disbursement product.
func (c *ProductConstraints) MaxTrancheCount() int {
	return c.product.MaxTrancheCount
}

// DisallowsExpectedDisbursements reports whether the product forbids a
// submitted disbursement schedule despite being multi-disburse.
func (c *ProductConstraints) DisallowsExpectedDisbursements() bool {
	return c.product.DisallowExpectedDisbursements
}

// RequiresAdvancedPaymentAllocation reports whether the schedule type forces
// the advanced payment allocation strategy.
func (c *ProductConstraints) RequiresAdvancedPaymentAllocation() bool {
	return c.product.ScheduleType == domain.ScheduleProgressive
}

// ForbidsAdvancedPaymentAllocation reports whether the schedule type rules
// the advanced payment allocation strategy out.
func (c *ProductConstraints) ForbidsAdvancedPaymentAllocation() bool {
	return c.product.ScheduleType == domain.ScheduleCumulative
}

// TransactionProcessingStrategy returns the strategy configured on the
// product; applications must not name a different one.
func (c *ProductConstraints) TransactionProcessingStrategy() string {
	return c.product.TransactionProcessingStrategy
}

// SupportsPartialPeriodInterest reports whether the given calculation period
// method may carry partial-period interest under this product. Daily
// calculation always supports it; same-as-repayment only when the product
// allows it.
func (c *ProductConstraints) SupportsPartialPeriodInterest(m domain.InterestCalculationPeriodMethod) bool {
	if m.IsDaily() {
		return true
	}
	return c.product.AllowPartialPeriodInterestCalculation
}

// ApprovalCap returns the maximum approvable amount for the proposed
// principal. Without over-application the cap is the proposed principal
// itself; with it, the configured percentage or flat margin is added.
func (c *ProductConstraints) ApprovalCap(proposed decimal.Decimal) decimal.Decimal {
	if !c.product.AllowApprovedAmountOverApplied {
		return proposed
	}
	margin := decimal.NewFromInt(c.product.OverAppliedNumber)
	if c.product.OverAppliedCalculationType == domain.OverAppliedPercentage {
		return proposed.Add(proposed.Mul(margin).Div(decimal.NewFromInt(100)))
	}
	return proposed.Add(margin)
}
