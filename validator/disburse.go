package validator

import (
	"context"
	"fmt"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
)

// ValidateDisbursement checks a disbursal command against the approved loan.
// Date ordering, holidays, and meeting sync are fail-fast; amount shape
// accumulates. For multi-disbursement loans the entry point runs once per
// tranche, so an already active loan is accepted.
func (v *Validator) ValidateDisbursement(ctx context.Context, doc *document.Document, loan *domain.Loan) error {
	timer := telemetry.FromContext(ctx).Start("Validate disbursement")
	defer timer.End()

	if err := doc.CheckSupported(disbursementParams...); err != nil {
		return err
	}
	if !loan.Status.IsApproved() && !loan.Status.IsActive() {
		return validation.NewInvalidStateTransitionError("disbursal",
			"account.is.not.approved",
			fmt.Sprintf("Loan %d is not in an approved state.", loan.ID))
	}

	vc := validation.NewContext("loan.disbursement")
	e := newExtractor(doc, vc)

	actual := e.date(paramActualDisbursementDate)
	transactionAmount := e.dec(paramTransactionAmount)
	netDisbursal := e.dec(paramNetDisbursalAmount)
	note := e.str(paramNote)

	vc.Reset().Parameter(paramActualDisbursementDate).Value(actual).NotNull()
	check := vc.Reset().Parameter(paramTransactionAmount).Value(transactionAmount).PositiveAmount()
	if loan.Product != nil && !loan.ApprovedPrincipal.IsZero() {
		check.NotGreaterThanMax(ResolveConstraints(loan.Product).ApprovalCap(loan.ApprovedPrincipal))
	}
	vc.Reset().Parameter(paramNetDisbursalAmount).Value(netDisbursal).ZeroOrPositiveAmount()
	vc.Reset().Parameter(paramPaymentTypeID).Value(e.long(paramPaymentTypeID)).IntegerGreaterThanZero()
	vc.Reset().Parameter(paramFixedEMIAmount).Value(e.dec(paramFixedEMIAmount)).PositiveAmount()
	vc.Reset().Parameter(paramNote).Value(note).NotExceedingLength(maxNoteLength)

	if actual != nil {
		if loan.ApprovedOnDate != nil && beforeDay(*actual, *loan.ApprovedOnDate) {
			return validation.NewInvalidStateTransitionError("disbursal",
				"cannot.be.before.approval.date",
				fmt.Sprintf("The disbursal date %s may not be before the approval date %s.",
					actual.Format(document.DateFormat), loan.ApprovedOnDate.Format(document.DateFormat)))
		}
		if beforeDay(*actual, loan.SubmittedOnDate) {
			return validation.NewInvalidStateTransitionError("disbursal",
				"cannot.be.before.submittal.date",
				fmt.Sprintf("The disbursal date %s may not be before the submittal date %s.",
					actual.Format(document.DateFormat), loan.SubmittedOnDate.Format(document.DateFormat)))
		}
		if afterDay(*actual, v.today()) {
			return validation.NewInvalidStateTransitionError("disbursal",
				"cannot.be.in.the.future",
				fmt.Sprintf("The disbursal date %s may not be in the future.", actual.Format(document.DateFormat)))
		}

		if loan.Product != nil && loan.Product.SyncExpectedWithDisbursementDate &&
			!sameDay(*actual, loan.ExpectedDisbursementDate) {
			return validation.NewInvalidStateTransitionError("disbursal",
				"actual.disbursement.date.does.not.match.expected.disbursal.date",
				fmt.Sprintf("The disbursal date %s must equal the expected disbursement date %s.",
					actual.Format(document.DateFormat), loan.ExpectedDisbursementDate.Format(document.DateFormat)))
		}

		officeID := int64(0)
		switch {
		case loan.Client != nil:
			officeID = loan.Client.OfficeID
		case loan.Group != nil:
			officeID = loan.Group.OfficeID
		}
		if err := v.validateDisbursementDateWorkable(*actual, officeID); err != nil {
			return err
		}
		if loan.SyncDisbursementWithMeeting && loan.Group != nil {
			if err := v.validateMeetingRecurrence(*actual, loan.Group.ID); err != nil {
				return err
			}
		}
	}

	return vc.ErrorsOrNil()
}
