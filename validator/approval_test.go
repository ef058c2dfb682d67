package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
)

func pendingLoan() *domain.Loan {
	activation := day(2025, time.January, 1)
	return &domain.Loan{
		ID:                        9,
		Status:                    domain.StatusSubmittedAndPendingApproval,
		Client:                    &domain.Client{ID: 1, OfficeID: 1, Active: true, ActivationDate: &activation},
		Product:                   testProduct(),
		ProposedPrincipal:         decimal.NewFromInt(5000),
		CurrencyCode:              "USD",
		TermFrequency:             12,
		TermFrequencyType:         domain.FrequencyMonths,
		NumberOfRepayments:        12,
		RepaymentEvery:            1,
		RepaymentEveryType:        domain.FrequencyMonths,
		InterestRatePerPeriod:     dec(12),
		AmortizationType:          domain.AmortizationEqualInstallments,
		InterestCalculationPeriod: domain.InterestCalculationSameAsRepayment,
		SubmittedOnDate:           day(2026, time.March, 2),
		ExpectedDisbursementDate:  day(2026, time.March, 9),
	}
}

func TestValidateApprovalBeforeSubmittalFailsFast(t *testing.T) {
	v := testValidator()
	doc := parseDoc(t, `{"approvedOnDate": "2026-03-01"}`)

	err := v.ValidateApproval(context.Background(), doc, pendingLoan())
	var transition *validation.InvalidStateTransitionError
	assert.True(t, errors.As(err, &transition))
	assert.Equal(t, "approval", transition.Action)
	assert.Equal(t, "cannot.be.before.submittal.date", transition.Reason)

	var aggregate *validation.Errors
	assert.False(t, errors.As(err, &aggregate))
}

func TestValidateApprovalAcceptsValidCommand(t *testing.T) {
	v := testValidator()
	doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5000}`)
	assert.NoError(t, v.ValidateApproval(context.Background(), doc, pendingLoan()))
}

func TestValidateApprovalFutureDateFailsFast(t *testing.T) {
	v := testValidator()
	doc := parseDoc(t, `{"approvedOnDate": "2026-03-20"}`)

	err := v.ValidateApproval(context.Background(), doc, pendingLoan())
	var transition *validation.InvalidStateTransitionError
	assert.True(t, errors.As(err, &transition))
	assert.Equal(t, "cannot.be.in.the.future", transition.Reason)
}

func TestValidateApprovalAmountCap(t *testing.T) {
	t.Run("plain cap is proposed principal", func(t *testing.T) {
		v := testValidator()
		doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5001}`)

		err := v.ValidateApproval(context.Background(), doc, pendingLoan())
		var transition *validation.InvalidStateTransitionError
		assert.True(t, errors.As(err, &transition))
		assert.Equal(t, "amount.should.be.within.maximum.applied.loan.amount", transition.Reason)
	})

	t.Run("percentage over-application raises the cap", func(t *testing.T) {
		v := testValidator()
		loan := pendingLoan()
		loan.Product.AllowApprovedAmountOverApplied = true
		loan.Product.OverAppliedCalculationType = domain.OverAppliedPercentage
		loan.Product.OverAppliedNumber = 10

		doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5500}`)
		assert.NoError(t, v.ValidateApproval(context.Background(), doc, loan))

		over := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5501}`)
		err := v.ValidateApproval(context.Background(), over, loan)
		var transition *validation.InvalidStateTransitionError
		assert.True(t, errors.As(err, &transition))
	})

	t.Run("flat over-application raises the cap", func(t *testing.T) {
		v := testValidator()
		loan := pendingLoan()
		loan.Product.AllowApprovedAmountOverApplied = true
		loan.Product.OverAppliedCalculationType = domain.OverAppliedFlat
		loan.Product.OverAppliedNumber = 250

		doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5250}`)
		assert.NoError(t, v.ValidateApproval(context.Background(), doc, loan))
	})
}

func TestValidateApprovalRequiresPendingState(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.Status = domain.StatusApproved

	err := v.ValidateApproval(context.Background(), parseDoc(t, `{"approvedOnDate": "2026-03-03"}`), loan)
	var pending *validation.LoanNotPendingApprovalError
	assert.True(t, errors.As(err, &pending))
	assert.Equal(t, int64(9), pending.LoanID)
}

func TestValidateApprovalInactiveClient(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.Client.Active = false

	err := v.ValidateApproval(context.Background(), parseDoc(t, `{"approvedOnDate": "2026-03-03"}`), loan)
	var inactive *validation.ClientNotActiveError
	assert.True(t, errors.As(err, &inactive))
}

func TestValidateApprovalRerunsTrancheRules(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.Product.MultiDisburse = true
	loan.Product.MaxTrancheCount = 3
	loan.Tranches = []domain.DisbursementTranche{
		{Sequence: 0, ExpectedDate: day(2026, time.March, 9), Principal: decimal.NewFromInt(3000)},
		{Sequence: 1, ExpectedDate: day(2026, time.April, 9), Principal: decimal.NewFromInt(2000)},
	}

	// Approving below the scheduled sum trips the tranche sum rule again.
	doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 4000}`)
	err := v.ValidateApproval(context.Background(), doc, loan)
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("approved.amount.is.less.than.sum.of.tranches"))

	// At the full amount the persisted schedule passes.
	full := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 5000}`)
	assert.NoError(t, v.ValidateApproval(context.Background(), full, loan))
}

func TestValidateApprovalAmountBelowProductMinimum(t *testing.T) {
	v := testValidator()
	doc := parseDoc(t, `{"approvedOnDate": "2026-03-03", "approvedLoanAmount": 500}`)

	err := v.ValidateApproval(context.Background(), doc, pendingLoan())
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("validation.msg.loanapplication.approval.approvedLoanAmount.is.less.than.min"))
}
