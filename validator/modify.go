package validator

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
)

// ValidateForModify runs the submission rule set against a pending
// application update. Every field is optional; an absent field keeps its
// persisted value, which is substituted into all cross-field checks so that
// a partial update is validated against the loan it would produce.
func (v *Validator) ValidateForModify(ctx context.Context, doc *document.Document, product *domain.LoanProduct, loan *domain.Loan) error {
	timer := telemetry.FromContext(ctx).Start("Validate modify")
	defer timer.End()

	if !loan.Status.IsSubmittedAndPendingApproval() {
		return &validation.LoanNotPendingApprovalError{LoanID: loan.ID}
	}
	if err := doc.CheckSupported(applicationParams...); err != nil {
		return err
	}

	vc := validation.NewContext("loan")

	if !hasUpdateParameters(doc) {
		vc.AddError(&validation.Error{
			Code:    "validation.msg.loan.update.no.parameters.passed",
			Message: "At least one parameter must be provided for an update.",
		})
		return vc.ErrorsOrNil()
	}

	t := timer.Child("Extract fields")
	req := extractApplication(newExtractor(doc, vc))
	t.End()

	merged := mergePersisted(req, loan, product)
	constraints := ResolveConstraints(product)

	if err := v.checkEqualAmortization(merged, product); err != nil {
		return err
	}

	client, group, err := v.resolveModifiedApplicant(vc, req, loan)
	if err != nil {
		return err
	}

	t = timer.Child("Field rules")
	v.validateApplicationFields(vc, merged, product, constraints)
	t.End()

	if err := v.checkStrategyCompatibility(vc, merged.TransactionProcessingStrategy, constraints); err != nil {
		return err
	}
	if err := v.checkLinkedSavings(vc, req); err != nil {
		return err
	}
	if err := v.checkTopupChain(vc, merged, product); err != nil {
		return err
	}

	t = timer.Child("Charges and collateral")
	validateCharges(vc, decodeCharges(vc, req.Charges), merged)
	validateCollateral(vc, decodeCollateral(vc, req.Collateral), applicantType(req.LoanType, loan))
	t.End()

	t = timer.Child("Disbursement schedule")
	if err := v.validateModifiedSchedule(vc, merged, loan, constraints); err != nil {
		t.End()
		return err
	}
	t.End()

	t = timer.Child("Temporal rules")
	if err := v.validateCreateDates(merged, product, client, group); err != nil {
		t.End()
		return err
	}
	t.End()

	return vc.ErrorsOrNil()
}

// hasUpdateParameters reports whether the document carries anything beyond
// formatting hints.
func hasUpdateParameters(doc *document.Document) bool {
	for _, name := range doc.Parameters() {
		if !slices.Contains([]string{paramLocale, paramDateFormat}, name) {
			return true
		}
	}
	return false
}

// resolveModifiedApplicant re-resolves client/group only when the update
// names them, falling back to the persisted snapshots otherwise.
func (v *Validator) resolveModifiedApplicant(vc *validation.Context, req *applicationRequest, loan *domain.Loan) (*domain.Client, *domain.Group, error) {
	client := loan.Client
	group := loan.Group

	if req.LoanType != nil {
		vc.Reset().Parameter(paramLoanType).Value(req.LoanType).NotBlank().
			IsOneOfStrings("individual", "group", "jlg", "glim")
	}
	vc.Reset().Parameter(paramClientID).Value(req.ClientID).IntegerGreaterThanZero()
	vc.Reset().Parameter(paramGroupID).Value(req.GroupID).IntegerGreaterThanZero()

	if req.ClientID != nil && v.clients != nil {
		c, err := v.clients.Client(*req.ClientID)
		if err != nil {
			return nil, nil, err
		}
		if !c.Active {
			return nil, nil, &validation.ClientNotActiveError{ClientID: c.ID}
		}
		client = c
	}
	if req.GroupID != nil && v.groups != nil {
		g, err := v.groups.Group(*req.GroupID)
		if err != nil {
			return nil, nil, err
		}
		if !g.Active {
			return nil, nil, &validation.GroupNotActiveError{GroupID: g.ID}
		}
		group = g
	}
	return client, group, nil
}

// mergePersisted fills absent request fields with the loan's persisted
// values so cross-field rules see the state the update would produce.
func mergePersisted(req *applicationRequest, loan *domain.Loan, product *domain.LoanProduct) *applicationRequest {
	merged := *req

	if merged.ProductID == nil && product != nil {
		merged.ProductID = ptr(product.ID)
	}
	if merged.Principal == nil {
		principal := loan.ProposedPrincipal
		merged.Principal = &principal
	}
	if merged.LoanTermFrequency == nil {
		merged.LoanTermFrequency = ptr(loan.TermFrequency)
	}
	if merged.LoanTermFrequencyType == nil {
		merged.LoanTermFrequencyType = ptr(int64(loan.TermFrequencyType))
	}
	if merged.NumberOfRepayments == nil {
		merged.NumberOfRepayments = ptr(loan.NumberOfRepayments)
	}
	if merged.RepaymentEvery == nil {
		merged.RepaymentEvery = ptr(loan.RepaymentEvery)
	}
	if merged.RepaymentFrequencyType == nil {
		merged.RepaymentFrequencyType = ptr(int64(loan.RepaymentEveryType))
	}
	if merged.InterestType == nil {
		merged.InterestType = ptr(int64(loan.InterestType))
	}
	if merged.InterestCalculationPeriod == nil {
		merged.InterestCalculationPeriod = ptr(int64(loan.InterestCalculationPeriod))
	}
	if merged.InterestRatePerPeriod == nil {
		merged.InterestRatePerPeriod = loan.InterestRatePerPeriod
	}
	if merged.AmortizationType == nil {
		merged.AmortizationType = ptr(int64(loan.AmortizationType))
	}
	if merged.FixedEMIAmount == nil {
		merged.FixedEMIAmount = loan.FixedEMIAmount
	}
	if merged.MaxOutstandingLoanBalance == nil {
		merged.MaxOutstandingLoanBalance = loan.MaxOutstandingLoanBalance
	}
	if merged.SubmittedOnDate == nil {
		submitted := loan.SubmittedOnDate
		merged.SubmittedOnDate = &submitted
	}
	if merged.ExpectedDisbursementDate == nil {
		expected := loan.ExpectedDisbursementDate
		merged.ExpectedDisbursementDate = &expected
	}
	if merged.TransactionProcessingStrategy == nil {
		strategy := loan.TransactionProcessingStrategy
		if strategy == "" {
			strategy = product.TransactionProcessingStrategy
		}
		merged.TransactionProcessingStrategy = &strategy
	}
	if merged.IsEqualAmortization == nil {
		merged.IsEqualAmortization = ptr(loan.EqualAmortization)
	}
	if merged.IsTopup == nil {
		merged.IsTopup = ptr(loan.Topup)
	}
	if merged.LoanIDToClose == nil && loan.TopupDetails != nil {
		merged.LoanIDToClose = ptr(loan.TopupDetails.LoanIDToClose)
	}
	if merged.SyncDisbursementWithMeeting == nil {
		merged.SyncDisbursementWithMeeting = ptr(loan.SyncDisbursementWithMeeting)
	}

	return &merged
}

// validateModifiedSchedule re-runs the tranche rules against the updated
// schedule, or against the persisted one when the update does not resend it.
func (v *Validator) validateModifiedSchedule(vc *validation.Context, merged *applicationRequest, loan *domain.Loan, constraints *ProductConstraints) error {
	if !constraints.IsMultiDisburse() || constraints.DisallowsExpectedDisbursements() {
		if merged.HasTranches {
			return &validation.MultiDisbursementNotAllowedError{}
		}
		return nil
	}

	var tranches []tranche
	switch {
	case merged.HasTranches:
		if max := constraints.MaxTrancheCount(); max > 0 && len(merged.Tranches) > max {
			return &validation.TrancheCountExceededError{Max: max, Actual: len(merged.Tranches)}
		}
		tranches = decodeTranches(vc, merged.Tranches)
	case len(loan.Tranches) > 0:
		tranches = fromDomainTranches(loan.Tranches)
	default:
		return &validation.MultiDisbursementRequiredError{}
	}

	validateTranches(vc, tranches, merged.ExpectedDisbursementDate, merged.Principal, merged.InterestType)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
