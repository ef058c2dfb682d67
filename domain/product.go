package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FloatingRateConfig is the floating-rate linkage of a product. It only
// exists on products linked to floating interest rates.
type FloatingRateConfig struct {
	MinDifferentialLendingRate decimal.Decimal
	MaxDifferentialLendingRate decimal.Decimal
	// FloatingCalculationAllowed permits applications to opt in to a
	// floating interest rate of their own.
	FloatingCalculationAllowed bool
}

// OverAppliedCalculationType selects how an over-applied approval cap is
// computed from the proposed principal.
type OverAppliedCalculationType string

const (
	OverAppliedPercentage OverAppliedCalculationType = "percentage"
	OverAppliedFlat       OverAppliedCalculationType = "flat"
)

// LoanProduct is the read-only product snapshot resolved before validation.
// The validation engine never mutates it; ownership stays with the product
// subsystem.
type LoanProduct struct {
	ID           int64
	Name         string
	CurrencyCode string

	MinPrincipal *decimal.Decimal
	MaxPrincipal *decimal.Decimal

	MinNumberOfRepayments *int64
	MaxNumberOfRepayments *int64

	// StartDate and CloseDate bound the window in which applications may be
	// submitted against this product.
	StartDate *time.Time
	CloseDate *time.Time

	LinkedToFloatingRate bool
	FloatingRates        *FloatingRateConfig

	InterestRecalculationEnabled          bool
	AllowPartialPeriodInterestCalculation bool
	AllowVariableInstallments             bool
	CanDefineInstallmentAmount            bool

	MultiDisburse                 bool
	MaxTrancheCount               int
	DisallowExpectedDisbursements bool

	ScheduleType                  LoanScheduleType
	ScheduleProcessingType        LoanScheduleProcessingType
	TransactionProcessingStrategy string

	CanUseForTopup bool

	// Over-application lets approvals exceed the proposed principal by a
	// configured margin; only meaningful together with
	// DisallowExpectedDisbursements.
	AllowApprovedAmountOverApplied bool
	OverAppliedCalculationType     OverAppliedCalculationType
	OverAppliedNumber              int64

	SyncExpectedWithDisbursementDate bool
}
