package validator

import (
	"context"
	"fmt"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
)

// ValidateApproval checks an approval command against the pending loan. The
// approved amount is capped by the proposed principal, raised by the
// product's over-application margin when configured; breaching the cap or
// the date ordering is an illegal state transition, not bad input shape.
func (v *Validator) ValidateApproval(ctx context.Context, doc *document.Document, loan *domain.Loan) error {
	timer := telemetry.FromContext(ctx).Start("Validate approval")
	defer timer.End()

	if !loan.Status.IsSubmittedAndPendingApproval() {
		return &validation.LoanNotPendingApprovalError{LoanID: loan.ID}
	}
	if err := doc.CheckSupported(approvalParams...); err != nil {
		return err
	}

	if loan.Client != nil && !loan.Client.Active {
		return &validation.ClientNotActiveError{ClientID: loan.Client.ID}
	}
	if loan.Group != nil && !loan.Group.Active {
		return &validation.GroupNotActiveError{GroupID: loan.Group.ID}
	}

	vc := validation.NewContext("loanapplication.approval")
	e := newExtractor(doc, vc)

	approvedAmount := e.dec(paramApprovedLoanAmount)
	approvedOn := e.date(paramApprovedOnDate)
	expected := e.date(paramExpectedDisbursementDate)
	netDisbursal := e.dec(paramNetDisbursalAmount)
	note := e.str(paramNote)

	vc.Reset().Parameter(paramApprovedOnDate).Value(approvedOn).NotNull()
	vc.Reset().Parameter(paramApprovedLoanAmount).Value(approvedAmount).PositiveAmount()
	vc.Reset().Parameter(paramNetDisbursalAmount).Value(netDisbursal).ZeroOrPositiveAmount()
	vc.Reset().Parameter(paramNote).Value(note).NotExceedingLength(maxNoteLength)

	constraints := ResolveConstraints(loan.Product)

	if minPrincipal, _ := constraints.PrincipalBounds(); minPrincipal != nil {
		vc.Reset().Parameter(paramApprovedLoanAmount).Value(approvedAmount).
			NotLessThanMin(*minPrincipal)
	}

	amount := loan.ProposedPrincipal
	if approvedAmount != nil {
		amount = *approvedAmount
	}
	if limit := constraints.ApprovalCap(loan.ProposedPrincipal); amount.GreaterThan(limit) {
		return validation.NewInvalidStateTransitionError("approval",
			"amount.should.be.within.maximum.applied.loan.amount",
			fmt.Sprintf("The approved amount %s exceeds the maximum approvable amount %s.", amount, limit),
			limit)
	}

	if approvedOn != nil {
		if beforeDay(*approvedOn, loan.SubmittedOnDate) {
			return validation.NewInvalidStateTransitionError("approval",
				"cannot.be.before.submittal.date",
				fmt.Sprintf("The approval date %s may not be before the submittal date %s.",
					approvedOn.Format(document.DateFormat), loan.SubmittedOnDate.Format(document.DateFormat)))
		}
		if afterDay(*approvedOn, v.today()) {
			return validation.NewInvalidStateTransitionError("approval",
				"cannot.be.in.the.future",
				fmt.Sprintf("The approval date %s may not be in the future.", approvedOn.Format(document.DateFormat)))
		}
	}

	disbursement := loan.ExpectedDisbursementDate
	if expected != nil {
		disbursement = *expected
	}
	if approvedOn != nil && beforeDay(disbursement, *approvedOn) {
		return validation.NewInvalidStateTransitionError("expecteddisbursal",
			"should.be.on.or.after.approval.date",
			fmt.Sprintf("The expected disbursement date %s may not be before the approval date %s.",
				disbursement.Format(document.DateFormat), approvedOn.Format(document.DateFormat)))
	}

	if constraints.IsMultiDisburse() && !constraints.DisallowsExpectedDisbursements() {
		var tranches []tranche
		if doc.Has(paramDisbursementData) {
			docs, err := doc.Objects(paramDisbursementData)
			if err != nil {
				vc.Reset().Parameter(paramDisbursementData).
					FailWithCode("is.not.an.array.of.objects", err.Error())
			} else {
				if max := constraints.MaxTrancheCount(); max > 0 && len(docs) > max {
					return &validation.TrancheCountExceededError{Max: max, Actual: len(docs)}
				}
				tranches = decodeTranches(vc, docs)
			}
		} else {
			tranches = fromDomainTranches(loan.Tranches)
		}
		validateTranches(vc, tranches, &disbursement, &amount, nil)
	}

	if loan.SyncDisbursementWithMeeting && loan.Group != nil {
		if err := v.validateMeetingRecurrence(disbursement, loan.Group.ID); err != nil {
			return err
		}
	}

	return vc.ErrorsOrNil()
}
