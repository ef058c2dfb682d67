package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
)

func TestValidateForModifyRequiresPendingState(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.Status = domain.StatusActive

	err := v.ValidateForModify(context.Background(), parseDoc(t, `{"principal": 4000}`), testProduct(), loan)
	var pending *validation.LoanNotPendingApprovalError
	assert.True(t, errors.As(err, &pending))
}

func TestValidateForModifyRequiresAtLeastOneParameter(t *testing.T) {
	v := testValidator()

	for _, body := range []string{`{}`, `{"locale": "en", "dateFormat": "yyyy-MM-dd"}`} {
		err := v.ValidateForModify(context.Background(), parseDoc(t, body), testProduct(), pendingLoan())
		errs, ok := err.(*validation.Errors)
		assert.True(t, ok)
		assert.True(t, errs.HasCode("validation.msg.loan.update.no.parameters.passed"))
	}
}

func TestValidateForModifyAcceptsPartialUpdate(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.TransactionProcessingStrategy = "mifos-standard-strategy"

	// Only the principal changes; every other value is substituted from the
	// persisted loan.
	err := v.ValidateForModify(context.Background(), parseDoc(t, `{"principal": 6000}`), testProduct(), loan)
	assert.NoError(t, err)
}

func TestValidateForModifyRevalidatesPresentFields(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.TransactionProcessingStrategy = "mifos-standard-strategy"

	err := v.ValidateForModify(context.Background(), parseDoc(t, `{"principal": -10}`), testProduct(), loan)
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("validation.msg.loan.principal.not.greater.than.zero"))
}

func TestValidateForModifySubstitutesPersistedTermValues(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.TransactionProcessingStrategy = "mifos-standard-strategy"

	// Changing only the repayment count must be checked against the
	// persisted term frequency: 12 != 1 * 6.
	err := v.ValidateForModify(context.Background(), parseDoc(t, `{"numberOfRepayments": 6}`), testProduct(), loan)
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("greater.than.suggested.loan.term.frequency"))
}

func TestValidateForModifyEqualAmortizationAgainstPersistedState(t *testing.T) {
	v := testValidator()
	product := testProduct()
	product.InterestRecalculationEnabled = true
	loan := pendingLoan()

	err := v.ValidateForModify(context.Background(), parseDoc(t, `{"isEqualAmortization": true}`), product, loan)
	var incompatible *validation.EqualAmortizationUnsupportedError
	assert.True(t, errors.As(err, &incompatible))
}

func TestValidateForModifyRevalidatesCharges(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.TransactionProcessingStrategy = "mifos-standard-strategy"

	err := v.ValidateForModify(context.Background(),
		parseDoc(t, `{"charges": [{"chargeId": 3, "amount": -5}]}`), testProduct(), loan)
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("validation.msg.loan.charges[0].amount.not.greater.than.zero"))
}

func TestValidateForModifyCollateralUsesPersistedOwner(t *testing.T) {
	v := testValidator()
	loan := pendingLoan()
	loan.TransactionProcessingStrategy = "mifos-standard-strategy"

	// The update does not resend loanType; the persisted client-only loan
	// counts as individual, so the entries validate instead of being refused.
	err := v.ValidateForModify(context.Background(),
		parseDoc(t, `{"collateral": [{"quantity": 2}]}`), testProduct(), loan)
	errs, ok := err.(*validation.Errors)
	assert.True(t, ok)
	assert.True(t, errs.HasCode("validation.msg.loan.collateral[0].clientCollateralId.cannot.be.blank"))
	assert.False(t, errs.HasCode("validation.msg.loan.collateral.not.supported.for.this.loan.type"))
}
