package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisbursementTranche is one scheduled partial disbursement of a
// multi-disbursement loan.
type DisbursementTranche struct {
	Sequence     int
	ExpectedDate time.Time
	Principal    decimal.Decimal
}

// TopupDetails carries the linkage of a topup loan to the loan it closes.
type TopupDetails struct {
	LoanIDToClose int64
}

// Loan is the persisted loan snapshot handed to the modify/approve/disburse
// validators. Like LoanProduct it is read-only to the validation engine.
type Loan struct {
	ID     int64
	Status LoanStatus

	Client *Client
	Group  *Group

	Product *LoanProduct

	ProposedPrincipal decimal.Decimal
	ApprovedPrincipal decimal.Decimal
	CurrencyCode      string

	TermFrequency      int64
	TermFrequencyType  PeriodFrequencyType
	NumberOfRepayments int64
	RepaymentEvery     int64
	RepaymentEveryType PeriodFrequencyType

	InterestType              InterestMethod
	InterestCalculationPeriod InterestCalculationPeriodMethod
	InterestRatePerPeriod     *decimal.Decimal
	AmortizationType          AmortizationMethod

	TransactionProcessingStrategy string

	EqualAmortization bool
	FixedEMIAmount    *decimal.Decimal

	MaxOutstandingLoanBalance *decimal.Decimal

	SubmittedOnDate          time.Time
	ApprovedOnDate           *time.Time
	ExpectedDisbursementDate time.Time
	// DisbursementDate is the actual (or first tranche) disbursal date once
	// the loan is active.
	DisbursementDate        *time.Time
	LastUserTransactionDate *time.Time

	SyncDisbursementWithMeeting bool

	Topup        bool
	TopupDetails *TopupDetails

	Tranches []DisbursementTranche
}

// ClientID returns the owning client id, or zero when group-owned.
func (l *Loan) ClientID() int64 {
	if l.Client == nil {
		return 0
	}
	return l.Client.ID
}

// GroupID returns the owning group id, or zero when client-owned.
func (l *Loan) GroupID() int64 {
	if l.Group == nil {
		return 0
	}
	return l.Group.ID
}

// IsGroupOwned reports whether the loan belongs to a group or JLG account.
func (l *Loan) IsGroupOwned() bool {
	return l.Group != nil
}
