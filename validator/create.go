package validator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
)

// ValidateForCreate runs the full submission rule set against a new loan
// application. It returns nil, an aggregated *validation.Errors, or a typed
// fail-fast error.
func (v *Validator) ValidateForCreate(ctx context.Context, doc *document.Document, product *domain.LoanProduct) error {
	timer := telemetry.FromContext(ctx).Start("Validate create")
	defer timer.End()

	if err := doc.CheckSupported(applicationParams...); err != nil {
		return err
	}

	vc := validation.NewContext("loan")

	t := timer.Child("Extract fields")
	req := extractApplication(newExtractor(doc, vc))
	t.End()

	constraints := ResolveConstraints(product)

	if err := v.checkEqualAmortization(req, product); err != nil {
		return err
	}

	client, group, err := v.resolveApplicant(vc, req)
	if err != nil {
		return err
	}

	t = timer.Child("Field rules")
	v.validateApplicationFields(vc, req, product, constraints)
	t.End()

	if err := v.checkStrategyCompatibility(vc, req.TransactionProcessingStrategy, constraints); err != nil {
		return err
	}
	if err := v.checkLinkedSavings(vc, req); err != nil {
		return err
	}
	if err := v.checkTopupChain(vc, req, product); err != nil {
		return err
	}

	t = timer.Child("Charges and collateral")
	validateCharges(vc, decodeCharges(vc, req.Charges), req)
	validateCollateral(vc, decodeCollateral(vc, req.Collateral), applicantType(req.LoanType, nil))
	t.End()

	t = timer.Child("Disbursement schedule")
	if err := v.validateDisbursementData(vc, req, constraints, req.Principal); err != nil {
		t.End()
		return err
	}
	t.End()

	t = timer.Child("Temporal rules")
	if err := v.validateCreateDates(req, product, client, group); err != nil {
		t.End()
		return err
	}
	t.End()

	return vc.ErrorsOrNil()
}

// checkEqualAmortization rejects logically contradictory feature pairings.
// These abort immediately; the rest of the request is meaningless.
func (v *Validator) checkEqualAmortization(req *applicationRequest, product *domain.LoanProduct) error {
	if req.IsEqualAmortization == nil || !*req.IsEqualAmortization {
		return nil
	}
	if product.InterestRecalculationEnabled {
		return validation.NewEqualAmortizationUnsupportedError("interest.recalculation", "interest recalculation")
	}
	if product.LinkedToFloatingRate {
		return validation.NewEqualAmortizationUnsupportedError("floating.interest.rate", "floating interest rates")
	}
	if req.FixedEMIAmount != nil {
		return validation.NewEqualAmortizationUnsupportedError("fixed.emi", "a fixed EMI amount")
	}
	if req.HasTranches || product.MultiDisburse {
		return validation.NewEqualAmortizationUnsupportedError("tranche.disbursal", "tranche disbursal")
	}
	return nil
}

// resolveApplicant validates the loan-type branch and resolves the owning
// client and/or group. Lookup failures and inactive applicants are fail-fast.
func (v *Validator) resolveApplicant(vc *validation.Context, req *applicationRequest) (*domain.Client, *domain.Group, error) {
	vc.Reset().Parameter(paramLoanType).Value(req.LoanType).NotBlank().
		IsOneOfStrings("individual", "group", "jlg", "glim")

	var accountType domain.AccountType
	if req.LoanType != nil {
		accountType, _ = domain.AccountTypeFromName(*req.LoanType)
	}

	switch {
	case accountType.IsIndividual():
		vc.Reset().Parameter(paramClientID).Value(req.ClientID).NotNull().IntegerGreaterThanZero()
		if req.GroupID != nil {
			vc.Reset().Parameter(paramGroupID).Value(req.GroupID).
				FailWithCode("not.supported.for.individual.loan",
					"The parameter groupId is not supported for an individual loan.")
		}
	case accountType.IsGroup():
		vc.Reset().Parameter(paramGroupID).Value(req.GroupID).NotNull().IntegerGreaterThanZero()
		if req.ClientID != nil {
			vc.Reset().Parameter(paramClientID).Value(req.ClientID).
				FailWithCode("not.supported.for.group.loan",
					"The parameter clientId is not supported for a group loan.")
		}
	case accountType.IsJLG():
		vc.Reset().Parameter(paramClientID).Value(req.ClientID).NotNull().IntegerGreaterThanZero()
		vc.Reset().Parameter(paramGroupID).Value(req.GroupID).NotNull().IntegerGreaterThanZero()
	}

	var client *domain.Client
	var group *domain.Group

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

	if accountType.IsJLG() && client != nil && group != nil {
		if !group.HasMember(client.ID) {
			return nil, nil, &validation.ClientNotInGroupError{ClientID: client.ID, GroupID: group.ID}
		}
		if v.settings.MeetingMandatoryForJLG && v.meetings != nil {
			meeting, err := v.meetings.MeetingCalendar(group.ID)
			if err != nil {
				return nil, nil, err
			}
			if meeting == nil {
				return nil, nil, &validation.NotFoundError{Resource: "meeting", ID: group.ID}
			}
		}
	}

	return client, group, nil
}

// validateApplicationFields runs the accumulated per-field and cross-field
// rules of a submission.
func (v *Validator) validateApplicationFields(vc *validation.Context, req *applicationRequest, product *domain.LoanProduct, constraints *ProductConstraints) {
	vc.Reset().Parameter(paramProductID).Value(req.ProductID).NotNull().IntegerGreaterThanZero()

	minPrincipal, maxPrincipal := constraints.PrincipalBounds()
	vc.Reset().Parameter(paramPrincipal).Value(req.Principal).NotNull().
		PositiveAmount().InDecimalRange(minPrincipal, maxPrincipal)

	vc.Reset().Parameter(paramNumberOfRepayments).Value(req.NumberOfRepayments).
		NotNull().IntegerGreaterThanZero()
	minRepayments, maxRepayments := constraints.RepaymentsBounds()
	checkIntBounds(vc, paramNumberOfRepayments, req.NumberOfRepayments, minRepayments, maxRepayments)

	vc.Reset().Parameter(paramLoanTermFrequency).Value(req.LoanTermFrequency).
		NotNull().IntegerGreaterThanZero()
	vc.Reset().Parameter(paramLoanTermFrequencyType).Value(req.LoanTermFrequencyType).
		NotNull().IsOneOf(
		int64(domain.FrequencyDays), int64(domain.FrequencyWeeks),
		int64(domain.FrequencyMonths), int64(domain.FrequencyYears))
	vc.Reset().Parameter(paramRepaymentEvery).Value(req.RepaymentEvery).
		NotNull().IntegerGreaterThanZero()
	vc.Reset().Parameter(paramRepaymentFrequencyType).Value(req.RepaymentFrequencyType).
		NotNull().IsOneOf(
		int64(domain.FrequencyDays), int64(domain.FrequencyWeeks),
		int64(domain.FrequencyMonths), int64(domain.FrequencyYears))

	validateTermArithmetic(vc, req)

	vc.Reset().Parameter(paramInterestType).Value(req.InterestType).NotNull().
		IsOneOf(int64(domain.InterestDecliningBalance), int64(domain.InterestFlat))
	vc.Reset().Parameter(paramInterestCalculationPeriod).Value(req.InterestCalculationPeriod).
		NotNull().IsOneOf(
		int64(domain.InterestCalculationDaily), int64(domain.InterestCalculationSameAsRepayment))

	if req.AllowPartialPeriodInterest != nil && *req.AllowPartialPeriodInterest &&
		req.InterestCalculationPeriod != nil &&
		!constraints.SupportsPartialPeriodInterest(domain.InterestCalculationPeriodMethod(*req.InterestCalculationPeriod)) {
		vc.Reset().Parameter(paramAllowPartialPeriodInterest).Value(req.AllowPartialPeriodInterest).
			FailWithCode("not.supported.for.this.product",
				"Partial period interest calculation is not supported for this loan product.")
	}

	vc.Reset().Parameter(paramAmortizationType).Value(req.AmortizationType).NotNull().
		IsOneOf(int64(domain.AmortizationEqualPrincipal), int64(domain.AmortizationEqualInstallments))

	one := decimal.NewFromInt(1)
	hundred := decimal.NewFromInt(100)
	vc.Reset().Parameter(paramFixedPrincipalPercentage).Value(req.FixedPrincipalPercentage).
		IgnoreIfNull().InDecimalRange(&one, &hundred)
	if req.FixedPrincipalPercentage != nil && req.AmortizationType != nil &&
		domain.AmortizationMethod(*req.AmortizationType) != domain.AmortizationEqualPrincipal {
		vc.Reset().Parameter(paramFixedPrincipalPercentage).Value(req.FixedPrincipalPercentage).
			FailWithCode("not.supported.for.selected.amortization.type",
				"A fixed principal percentage per installment requires equal principal amortization.")
	}

	v.validateFloatingRate(vc, req, constraints)

	vc.Reset().Parameter(paramGraceOnPrincipalPayment).Value(req.GraceOnPrincipalPayment).IntegerZeroOrGreater()
	vc.Reset().Parameter(paramGraceOnInterestPayment).Value(req.GraceOnInterestPayment).IntegerZeroOrGreater()
	vc.Reset().Parameter(paramGraceOnInterestCharged).Value(req.GraceOnInterestCharged).IntegerZeroOrGreater()
	vc.Reset().Parameter(paramGraceOnArrearsAgeing).Value(req.GraceOnArrearsAgeing).IntegerZeroOrGreater()
	vc.Reset().Parameter(paramInArrearsTolerance).Value(req.InArrearsTolerance).ZeroOrPositiveAmount()

	vc.Reset().Parameter(paramFixedEMIAmount).Value(req.FixedEMIAmount).PositiveAmount()
	if req.FixedEMIAmount != nil && !product.CanDefineInstallmentAmount {
		vc.Reset().Parameter(paramFixedEMIAmount).Value(req.FixedEMIAmount).
			FailWithCode("not.supported.for.this.product",
				"A fixed EMI amount may not be defined for this loan product.")
	}

	if constraints.IsMultiDisburse() {
		vc.Reset().Parameter(paramMaxOutstandingLoanBalance).Value(req.MaxOutstandingLoanBalance).
			NotNull().PositiveAmount()
	} else {
		vc.Reset().Parameter(paramMaxOutstandingLoanBalance).Value(req.MaxOutstandingLoanBalance).
			PositiveAmount()
	}

	vc.Reset().Parameter(paramTransactionProcessingStrategy).Value(req.TransactionProcessingStrategy).NotBlank()

	vc.Reset().Parameter(paramLoanScheduleProcessingType).Value(req.ScheduleProcessingType).
		IgnoreIfNull().IsOneOfStrings(
		string(domain.ProcessingHorizontal), string(domain.ProcessingVertical))
	if req.ScheduleProcessingType != nil &&
		domain.LoanScheduleProcessingType(*req.ScheduleProcessingType) == domain.ProcessingVertical &&
		(req.TransactionProcessingStrategy == nil || *req.TransactionProcessingStrategy != domain.AdvancedPaymentAllocationStrategy) {
		vc.Reset().Parameter(paramLoanScheduleProcessingType).Value(req.ScheduleProcessingType).
			FailWithCode("supported.only.with.advanced.payment.allocation.strategy",
				"Vertical schedule processing requires the advanced payment allocation strategy.")
	}

	vc.Reset().Parameter(paramSubmittedOnDate).Value(req.SubmittedOnDate).NotNull()
	vc.Reset().Parameter(paramExpectedDisbursementDate).Value(req.ExpectedDisbursementDate).NotNull()

	vc.Reset().Parameter(paramNote).Value(req.Note).NotExceedingLength(maxNoteLength)
	vc.Reset().Parameter(paramExternalID).Value(req.ExternalID).NotExceedingLength(100)
}

// validateTermArithmetic enforces the loan-term consistency rule. Undershoot
// and overshoot carry distinct codes since downstream clients branch on them.
func validateTermArithmetic(vc *validation.Context, req *applicationRequest) {
	if req.LoanTermFrequencyType != nil && req.RepaymentFrequencyType != nil &&
		*req.LoanTermFrequencyType != *req.RepaymentFrequencyType {
		vc.Reset().Parameter(paramLoanTermFrequencyType).Value(req.LoanTermFrequencyType).
			FailWithCode("not.the.same.as.repaymentFrequencyType",
				"The loan term frequency type must match the repayment frequency type.")
	}

	if req.LoanTermFrequency == nil || req.RepaymentEvery == nil || req.NumberOfRepayments == nil {
		return
	}
	suggested := *req.RepaymentEvery * *req.NumberOfRepayments
	switch {
	case *req.LoanTermFrequency < suggested:
		vc.Reset().Parameter(paramLoanTermFrequency).Value(req.LoanTermFrequency).
			FailWithCode("lesser.than.suggested.loan.term.frequency",
				fmt.Sprintf("The loan term frequency %d is less than the suggested term %d.", *req.LoanTermFrequency, suggested),
				suggested)
	case *req.LoanTermFrequency > suggested:
		vc.Reset().Parameter(paramLoanTermFrequency).Value(req.LoanTermFrequency).
			FailWithCode("greater.than.suggested.loan.term.frequency",
				fmt.Sprintf("The loan term frequency %d is greater than the suggested term %d.", *req.LoanTermFrequency, suggested),
				suggested)
	}
}

// validateFloatingRate enforces the mutually exclusive parameter sets around
// floating-rate linkage.
func (v *Validator) validateFloatingRate(vc *validation.Context, req *applicationRequest, constraints *ProductConstraints) {
	if constraints.IsLinkedToFloatingRate() {
		if req.InterestRatePerPeriod != nil {
			vc.Reset().Parameter(paramInterestRatePerPeriod).Value(req.InterestRatePerPeriod).
				FailWithCode("not.supported.when.linked.to.floating.rates",
					"An interest rate may not be given when the product is linked to floating rates.")
		}
		if req.IsFloatingInterestRate != nil && *req.IsFloatingInterestRate && !constraints.AllowsFloatingCalculation() {
			vc.Reset().Parameter(paramIsFloatingInterestRate).Value(req.IsFloatingInterestRate).
				FailWithCode("not.allowed.for.this.product",
					"Floating interest rate calculation is not allowed for this loan product.")
		}
		minRate, maxRate := constraints.FloatingRateBounds()
		vc.Reset().Parameter(paramInterestRateDifferential).Value(req.InterestRateDifferential).
			NotNull().ZeroOrPositiveAmount().InDecimalRange(&minRate, &maxRate)
		if req.InterestType != nil && domain.InterestMethod(*req.InterestType) != domain.InterestDecliningBalance {
			vc.Reset().Parameter(paramInterestType).Value(req.InterestType).
				FailWithCode("should.be.declining.balance.for.floating.rate.loan",
					"A floating rate loan requires declining balance interest.")
		}
		return
	}

	if req.IsFloatingInterestRate != nil {
		vc.Reset().Parameter(paramIsFloatingInterestRate).Value(req.IsFloatingInterestRate).
			FailWithCode("not.supported.when.not.linked.to.floating.rates",
				"The parameter isFloatingInterestRate is only supported for floating rate products.")
	}
	if req.InterestRateDifferential != nil {
		vc.Reset().Parameter(paramInterestRateDifferential).Value(req.InterestRateDifferential).
			FailWithCode("not.supported.when.not.linked.to.floating.rates",
				"The parameter interestRateDifferential is only supported for floating rate products.")
	}
	vc.Reset().Parameter(paramInterestRatePerPeriod).Value(req.InterestRatePerPeriod).
		NotNull().ZeroOrPositiveAmount()
}

// checkStrategyCompatibility enforces schedule-type/strategy pairing. The
// progressive and cumulative contradictions are fail-fast; naming a strategy
// the product is not configured with accumulates.
func (v *Validator) checkStrategyCompatibility(vc *validation.Context, strategy *string, constraints *ProductConstraints) error {
	if strategy == nil {
		return nil
	}
	advanced := *strategy == domain.AdvancedPaymentAllocationStrategy
	if constraints.RequiresAdvancedPaymentAllocation() && !advanced {
		return validation.NewDomainRuleError(
			"error.msg.loan.repayment.strategy.can.not.be.different.from.advanced.payment.allocation.strategy",
			"A progressive schedule requires the advanced payment allocation strategy.")
	}
	if constraints.ForbidsAdvancedPaymentAllocation() && advanced {
		return validation.NewDomainRuleError(
			"error.msg.loan.repayment.strategy.can.not.be.equal.to.advanced.payment.allocation.strategy",
			"A cumulative schedule may not use the advanced payment allocation strategy.")
	}
	if *strategy != constraints.TransactionProcessingStrategy() {
		vc.Reset().Parameter(paramTransactionProcessingStrategy).Value(strategy).
			FailWithCode("not.configured.on.loan.product",
				fmt.Sprintf("The strategy %s is not configured on the loan product.", *strategy))
	}
	return nil
}

// checkLinkedSavings verifies a linked savings account exists, is active, and
// belongs to the applying client.
func (v *Validator) checkLinkedSavings(vc *validation.Context, req *applicationRequest) error {
	vc.Reset().Parameter(paramLinkAccountID).Value(req.LinkAccountID).IntegerGreaterThanZero()
	if req.LinkAccountID == nil || v.savings == nil {
		return nil
	}
	account, err := v.savings.SavingsAccount(*req.LinkAccountID)
	if err != nil {
		return err
	}
	if !account.Active {
		vc.Reset().Parameter(paramLinkAccountID).Value(req.LinkAccountID).
			FailWithCode("is.not.active", "The linked savings account is not active.")
	}
	if req.ClientID != nil && account.ClientID != *req.ClientID {
		vc.Reset().Parameter(paramLinkAccountID).Value(req.LinkAccountID).
			FailWithCode("not.belonging.to.client", "The linked savings account belongs to a different client.")
	}
	return nil
}

// checkTopupChain verifies the topup linkage against the loan being closed.
// Violations here are fail-fast domain rules; an invalid chain makes the
// application meaningless.
func (v *Validator) checkTopupChain(vc *validation.Context, req *applicationRequest, product *domain.LoanProduct) error {
	if req.IsTopup == nil || !*req.IsTopup {
		return nil
	}
	if !product.CanUseForTopup {
		vc.Reset().Parameter(paramIsTopup).Value(req.IsTopup).
			FailWithCode("not.supported.for.this.product",
				"Topup is not allowed for this loan product.")
		return nil
	}
	vc.Reset().Parameter(paramLoanIDToClose).Value(req.LoanIDToClose).NotNull().IntegerGreaterThanZero()
	if req.LoanIDToClose == nil || v.loans == nil {
		return nil
	}

	loanToClose, err := v.loans.NonClosedLoan(*req.LoanIDToClose)
	if err != nil {
		return err
	}
	if !loanToClose.Status.IsActive() {
		return validation.NewDomainRuleError("error.msg.loan.to.be.closed.with.topup.is.not.active",
			fmt.Sprintf("Loan %d to be closed with topup is not active.", loanToClose.ID))
	}
	if loanToClose.CurrencyCode != product.CurrencyCode {
		return validation.NewDomainRuleError("error.msg.loan.to.be.closed.has.different.currency",
			fmt.Sprintf("Loan %d to be closed is in a different currency.", loanToClose.ID))
	}
	if req.SubmittedOnDate != nil && loanToClose.DisbursementDate != nil &&
		!afterDay(*req.SubmittedOnDate, *loanToClose.DisbursementDate) {
		return validation.NewDomainRuleError("error.msg.loan.submitted.date.should.be.after.topup.loan.disbursal.date",
			"The submitted on date must be after the disbursal date of the loan being closed.")
	}
	if req.ExpectedDisbursementDate != nil && loanToClose.LastUserTransactionDate != nil &&
		beforeDay(*req.ExpectedDisbursementDate, *loanToClose.LastUserTransactionDate) {
		return validation.NewDomainRuleError("error.msg.loan.disbursal.date.should.be.after.last.transaction.date.of.loan.to.be.closed",
			"The disbursal date must not be before the last transaction on the loan being closed.")
	}
	if req.Principal != nil && req.ExpectedDisbursementDate != nil {
		outstanding, err := v.loans.OutstandingBalance(loanToClose.ID, *req.ExpectedDisbursementDate)
		if err != nil {
			return err
		}
		if req.Principal.LessThan(outstanding) {
			return validation.NewDomainRuleError("error.msg.loan.amount.less.than.outstanding.of.loan.to.be.closed",
				fmt.Sprintf("The principal must cover the outstanding amount %s of the loan being closed.", outstanding))
		}
	}
	return nil
}

// validateDisbursementData runs the multi-tranche rules. Schedule presence
// and size are fail-fast; per-entry checks accumulate.
func (v *Validator) validateDisbursementData(vc *validation.Context, req *applicationRequest, constraints *ProductConstraints, total *decimal.Decimal) error {
	if !constraints.IsMultiDisburse() {
		if req.HasTranches {
			return &validation.MultiDisbursementNotAllowedError{}
		}
		return nil
	}

	if constraints.DisallowsExpectedDisbursements() {
		if req.HasTranches {
			return &validation.MultiDisbursementNotAllowedError{}
		}
		return nil
	}

	if !req.HasTranches {
		return &validation.MultiDisbursementRequiredError{}
	}
	if max := constraints.MaxTrancheCount(); max > 0 && len(req.Tranches) > max {
		return &validation.TrancheCountExceededError{Max: max, Actual: len(req.Tranches)}
	}

	tranches := decodeTranches(vc, req.Tranches)
	validateTranches(vc, tranches, req.ExpectedDisbursementDate, total, req.InterestType)
	return nil
}

// validateCreateDates runs the fail-fast temporal rules of a submission.
func (v *Validator) validateCreateDates(req *applicationRequest, product *domain.LoanProduct, client *domain.Client, group *domain.Group) error {
	if err := v.validateSubmittedOnDate(req.SubmittedOnDate, req.ExpectedDisbursementDate, product, client, group); err != nil {
		return err
	}
	if req.ExpectedDisbursementDate == nil {
		return nil
	}

	officeID := int64(0)
	switch {
	case client != nil:
		officeID = client.OfficeID
	case group != nil:
		officeID = group.OfficeID
	}
	if err := v.validateDisbursementDateWorkable(*req.ExpectedDisbursementDate, officeID); err != nil {
		return err
	}

	if req.SyncDisbursementWithMeeting != nil && *req.SyncDisbursementWithMeeting && group != nil {
		if err := v.validateMeetingRecurrence(*req.ExpectedDisbursementDate, group.ID); err != nil {
			return err
		}
	}
	return nil
}

// checkIntBounds accumulates a range error when a present integer falls
// outside the product-configured window; either bound may be absent.
func checkIntBounds(vc *validation.Context, parameter string, value, min, max *int64) {
	if value == nil {
		return
	}
	switch {
	case min != nil && max != nil:
		vc.Reset().Parameter(parameter).Value(value).InMinMaxRange(*min, *max)
	case min != nil && *value < *min:
		vc.Reset().Parameter(parameter).Value(value).
			FailWithCode("is.less.than.min",
				fmt.Sprintf("The parameter %s must be at least %d.", parameter, *min), *min)
	case max != nil && *value > *max:
		vc.Reset().Parameter(parameter).Value(value).
			FailWithCode("is.greater.than.max",
				fmt.Sprintf("The parameter %s must not be greater than %d.", parameter, *max), *max)
	}
}
