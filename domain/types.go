// Package domain holds the closed value types of the loan portfolio: the
// enumerations dispatched on during validation and the read-only snapshots of
// persisted entities (loan, product, client, group) the validators consume.
package domain

import "fmt"

// AccountType is the loan ownership type.
type AccountType int

const (
	AccountInvalid    AccountType = 0
	AccountIndividual AccountType = 1
	AccountGroup      AccountType = 2
	AccountJLG        AccountType = 3
	AccountGLIM       AccountType = 4
)

// AccountTypeFromName maps the wire name of a loan type to its value.
func AccountTypeFromName(name string) (AccountType, error) {
	switch name {
	case "individual":
		return AccountIndividual, nil
	case "group":
		return AccountGroup, nil
	case "jlg":
		return AccountJLG, nil
	case "glim":
		return AccountGLIM, nil
	default:
		return AccountInvalid, fmt.Errorf("unknown loan type %q", name)
	}
}

func (t AccountType) IsIndividual() bool { return t == AccountIndividual }
func (t AccountType) IsGroup() bool      { return t == AccountGroup }
func (t AccountType) IsJLG() bool        { return t == AccountJLG }

// InterestMethod is how interest accrues on the outstanding balance.
type InterestMethod int64

const (
	InterestDecliningBalance InterestMethod = 0
	InterestFlat             InterestMethod = 1
)

// InterestCalculationPeriodMethod is the granularity of interest calculation.
type InterestCalculationPeriodMethod int64

const (
	InterestCalculationDaily           InterestCalculationPeriodMethod = 0
	InterestCalculationSameAsRepayment InterestCalculationPeriodMethod = 1
)

// IsDaily reports whether interest is computed per day; daily calculation
// always supports partial periods.
func (m InterestCalculationPeriodMethod) IsDaily() bool {
	return m == InterestCalculationDaily
}

// AmortizationMethod is how principal is spread over installments.
type AmortizationMethod int64

const (
	AmortizationEqualPrincipal    AmortizationMethod = 0
	AmortizationEqualInstallments AmortizationMethod = 1
)

// PeriodFrequencyType is the unit of term and repayment frequencies.
type PeriodFrequencyType int64

const (
	FrequencyDays   PeriodFrequencyType = 0
	FrequencyWeeks  PeriodFrequencyType = 1
	FrequencyMonths PeriodFrequencyType = 2
	FrequencyYears  PeriodFrequencyType = 3
)

func (t PeriodFrequencyType) String() string {
	switch t {
	case FrequencyDays:
		return "days"
	case FrequencyWeeks:
		return "weeks"
	case FrequencyMonths:
		return "months"
	case FrequencyYears:
		return "years"
	default:
		return fmt.Sprintf("frequency(%d)", int64(t))
	}
}

// LoanScheduleType is the product's repayment schedule model.
type LoanScheduleType string

const (
	ScheduleCumulative  LoanScheduleType = "CUMULATIVE"
	ScheduleProgressive LoanScheduleType = "PROGRESSIVE"
)

// LoanScheduleProcessingType is how installments are filled during schedule
// generation.
type LoanScheduleProcessingType string

const (
	ProcessingHorizontal LoanScheduleProcessingType = "HORIZONTAL"
	ProcessingVertical   LoanScheduleProcessingType = "VERTICAL"
)

// AdvancedPaymentAllocationStrategy is the one transaction processing
// strategy compatible with progressive schedules, and incompatible with
// cumulative ones.
const AdvancedPaymentAllocationStrategy = "advanced-payment-allocation-strategy"

// LoanStatus is the lifecycle state of a loan account.
type LoanStatus int

const (
	StatusInvalid                     LoanStatus = 0
	StatusSubmittedAndPendingApproval LoanStatus = 100
	StatusApproved                    LoanStatus = 200
	StatusActive                      LoanStatus = 300
	StatusWithdrawnByClient           LoanStatus = 400
	StatusRejected                    LoanStatus = 500
	StatusClosedObligationsMet        LoanStatus = 600
	StatusClosedWrittenOff            LoanStatus = 601
	StatusClosedRescheduled           LoanStatus = 602
	StatusOverpaid                    LoanStatus = 700
)

func (s LoanStatus) IsSubmittedAndPendingApproval() bool {
	return s == StatusSubmittedAndPendingApproval
}

func (s LoanStatus) IsApproved() bool { return s == StatusApproved }
func (s LoanStatus) IsActive() bool   { return s == StatusActive }

func (s LoanStatus) String() string {
	switch s {
	case StatusSubmittedAndPendingApproval:
		return "submitted.and.pending.approval"
	case StatusApproved:
		return "approved"
	case StatusActive:
		return "active"
	case StatusWithdrawnByClient:
		return "withdrawn.by.client"
	case StatusRejected:
		return "rejected"
	case StatusClosedObligationsMet:
		return "closed.obligations.met"
	case StatusClosedWrittenOff:
		return "closed.written.off"
	case StatusClosedRescheduled:
		return "closed.rescheduled"
	case StatusOverpaid:
		return "overpaid"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
