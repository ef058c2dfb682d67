package validator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
)

// Charge payment mode 1 settles the charge from a linked savings account.
const chargePaymentModeAccountTransfer = 1

// charge is one decoded charges element; nil fields were absent or
// unconvertible and have already been reported.
type charge struct {
	ID          *int64
	ChargeID    *int64
	Amount      *decimal.Decimal
	DueDate     *time.Time
	PaymentMode *int64
}

// decodeCharges converts the submitted charges array, reporting unsupported
// and unconvertible element fields into the accumulator.
func decodeCharges(vc *validation.Context, docs []*document.Document) []charge {
	charges := make([]charge, len(docs))
	for i, doc := range docs {
		for _, name := range doc.Parameters() {
			if !slices.Contains(chargeParams, name) {
				vc.Reset().Parameter(paramCharges).ParameterAtIndex(name, i).
					FailWithCode("is.not.supported", fmt.Sprintf("The parameter %s is not supported in a charge entry.", name))
			}
		}

		id, err := doc.Long(paramID)
		if err != nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramID, i).
				FailWithCode("is.not.an.integer", err.Error())
		}
		chargeID, err := doc.Long(paramChargeID)
		if err != nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramChargeID, i).
				FailWithCode("is.not.an.integer", err.Error())
		}
		amount, err := doc.Decimal(paramAmount)
		if err != nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramAmount, i).
				FailWithCode("is.not.a.number", err.Error())
		}
		dueDate, err := doc.Date(paramDueDate)
		if err != nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramDueDate, i).
				FailWithCode("is.not.a.valid.date", err.Error())
		}
		paymentMode, err := doc.Long(paramChargePaymentMode)
		if err != nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramChargePaymentMode, i).
				FailWithCode("is.not.an.integer", err.Error())
		}
		charges[i] = charge{ID: id, ChargeID: chargeID, Amount: amount, DueDate: dueDate, PaymentMode: paymentMode}
	}
	return charges
}

// validateCharges runs the per-entry charge rules. A new entry names the
// charge definition, a resent entry names its own id; either way the amount
// must be a positive figure, a specified due date may not precede the
// expected disbursement, and an account-transfer payment mode needs the
// linked savings account on the application.
func validateCharges(vc *validation.Context, charges []charge, req *applicationRequest) {
	for i, ch := range charges {
		if ch.ID == nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramChargeID, i).
				Value(ch.ChargeID).NotNull().IntegerGreaterThanZero()
		} else {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramID, i).
				Value(ch.ID).IntegerGreaterThanZero()
		}

		vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramAmount, i).
			Value(ch.Amount).NotNull().PositiveAmount()

		if ch.DueDate != nil && req.ExpectedDisbursementDate != nil &&
			beforeDay(*ch.DueDate, *req.ExpectedDisbursementDate) {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramDueDate, i).Value(ch.DueDate).
				FailWithCode("is.before.expected.disbursement.date",
					"A charge due date may not be before the expected disbursement date.")
		}

		if ch.PaymentMode != nil && *ch.PaymentMode == chargePaymentModeAccountTransfer &&
			req.LinkAccountID == nil {
			vc.Reset().Parameter(paramCharges).ParameterAtIndex(paramChargePaymentMode, i).Value(ch.PaymentMode).
				FailWithCode("requires.linked.savings.account",
					"A charge paid by account transfer requires a linked savings account.")
		}
	}
}

// collateralItem is one decoded collateral element.
type collateralItem struct {
	ClientCollateralID *int64
	Quantity           *decimal.Decimal
}

// decodeCollateral converts the submitted collateral array, reporting
// unsupported and unconvertible element fields into the accumulator.
func decodeCollateral(vc *validation.Context, docs []*document.Document) []collateralItem {
	items := make([]collateralItem, len(docs))
	for i, doc := range docs {
		for _, name := range doc.Parameters() {
			if !slices.Contains(collateralParams, name) {
				vc.Reset().Parameter(paramCollateral).ParameterAtIndex(name, i).
					FailWithCode("is.not.supported", fmt.Sprintf("The parameter %s is not supported in a collateral entry.", name))
			}
		}

		id, err := doc.Long(paramClientCollateralID)
		if err != nil {
			vc.Reset().Parameter(paramCollateral).ParameterAtIndex(paramClientCollateralID, i).
				FailWithCode("is.not.an.integer", err.Error())
		}
		quantity, err := doc.Decimal(paramQuantity)
		if err != nil {
			vc.Reset().Parameter(paramCollateral).ParameterAtIndex(paramQuantity, i).
				FailWithCode("is.not.a.number", err.Error())
		}
		items[i] = collateralItem{ClientCollateralID: id, Quantity: quantity}
	}
	return items
}

// applicantType resolves the wire loan type, falling back to what the
// persisted owners imply when an update does not resend it.
func applicantType(loanType *string, loan *domain.Loan) domain.AccountType {
	if loanType != nil {
		if t, err := domain.AccountTypeFromName(*loanType); err == nil {
			return t
		}
	}
	if loan == nil {
		return domain.AccountInvalid
	}
	switch {
	case loan.Client != nil && loan.Group != nil:
		return domain.AccountJLG
	case loan.Group != nil:
		return domain.AccountGroup
	case loan.Client != nil:
		return domain.AccountIndividual
	}
	return domain.AccountInvalid
}

// validateCollateral runs the per-entry collateral rules. Collateral is
// pledged per client, so the entries only apply to individual loans; a group
// application carrying them is rejected wholesale.
func validateCollateral(vc *validation.Context, items []collateralItem, accountType domain.AccountType) {
	if len(items) == 0 {
		return
	}

	if !accountType.IsIndividual() {
		vc.Reset().Parameter(paramCollateral).
			FailWithCode("not.supported.for.this.loan.type",
				"Collateral may only be pledged on an individual loan.")
		return
	}

	for i, item := range items {
		vc.Reset().Parameter(paramCollateral).ParameterAtIndex(paramClientCollateralID, i).
			Value(item.ClientCollateralID).NotNull().IntegerGreaterThanZero()
		vc.Reset().Parameter(paramCollateral).ParameterAtIndex(paramQuantity, i).
			Value(item.Quantity).NotNull().PositiveAmount()
	}
}
