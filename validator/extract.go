package validator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/validation"
)

// extractor reads typed values out of the request document. A parameter that
// is present but unconvertible is recorded as an accumulated error and read
// as absent, so later cross-field rules never trip over garbage input.
type extractor struct {
	doc *document.Document
	vc  *validation.Context
}

func newExtractor(doc *document.Document, vc *validation.Context) *extractor {
	return &extractor{doc: doc, vc: vc}
}

func (e *extractor) has(name string) bool {
	return e.doc.Has(name)
}

func (e *extractor) str(name string) *string {
	v, err := e.doc.String(name)
	if err != nil {
		e.vc.Reset().Parameter(name).FailWithCode("is.not.a.string", err.Error())
		return nil
	}
	return v
}

func (e *extractor) long(name string) *int64 {
	v, err := e.doc.Long(name)
	if err != nil {
		e.vc.Reset().Parameter(name).FailWithCode("is.not.an.integer", err.Error())
		return nil
	}
	return v
}

func (e *extractor) dec(name string) *decimal.Decimal {
	v, err := e.doc.Decimal(name)
	if err != nil {
		e.vc.Reset().Parameter(name).FailWithCode("is.not.a.number", err.Error())
		return nil
	}
	return v
}

// boolean reads an optional flag. A present value that is not a JSON boolean
// fails the TrueOrFalseRequired rule and reads as absent.
func (e *extractor) boolean(name string) *bool {
	v, err := e.doc.Bool(name)
	if err != nil {
		e.vc.Reset().Parameter(name).Value(nil).TrueOrFalseRequired()
		return nil
	}
	return v
}

func (e *extractor) date(name string) *time.Time {
	v, err := e.doc.Date(name)
	if err != nil {
		e.vc.Reset().Parameter(name).FailWithCode("is.not.a.valid.date", err.Error())
		return nil
	}
	return v
}

// applicationRequest is the typed view of a create/modify document. Nil
// fields are absent from the request.
type applicationRequest struct {
	LoanType  *string
	ClientID  *int64
	GroupID   *int64
	ProductID *int64

	Principal *decimal.Decimal

	LoanTermFrequency      *int64
	LoanTermFrequencyType  *int64
	NumberOfRepayments     *int64
	RepaymentEvery         *int64
	RepaymentFrequencyType *int64

	InterestType               *int64
	InterestRatePerPeriod      *decimal.Decimal
	InterestCalculationPeriod  *int64
	AllowPartialPeriodInterest *bool

	AmortizationType         *int64
	FixedPrincipalPercentage *decimal.Decimal

	ExpectedDisbursementDate   *time.Time
	RepaymentsStartingFromDate *time.Time
	InterestChargedFromDate    *time.Time
	SubmittedOnDate            *time.Time

	TransactionProcessingStrategy *string
	ScheduleProcessingType        *string

	GraceOnPrincipalPayment *int64
	GraceOnInterestPayment  *int64
	GraceOnInterestCharged  *int64
	GraceOnArrearsAgeing    *int64
	InArrearsTolerance      *decimal.Decimal

	FixedEMIAmount            *decimal.Decimal
	MaxOutstandingLoanBalance *decimal.Decimal

	LinkAccountID             *int64
	CreateStandingInstruction *bool

	IsTopup       *bool
	LoanIDToClose *int64

	IsEqualAmortization      *bool
	IsFloatingInterestRate   *bool
	InterestRateDifferential *decimal.Decimal

	SyncDisbursementWithMeeting *bool

	ExternalID     *string
	LoanOfficerID  *int64
	LoanPurposeID  *int64
	FundID         *int64
	DaysInYearType *int64

	Note *string

	HasTranches bool
	Tranches    []*document.Document

	Charges    []*document.Document
	Collateral []*document.Document
}

// objects reads a present array parameter into its element documents,
// accumulating a shape error when it is not an array of objects.
func (e *extractor) objects(name string) []*document.Document {
	if !e.has(name) {
		return nil
	}
	if !e.doc.IsArray(name) {
		e.vc.Reset().Parameter(name).ExpectedArrayButIsNot()
		return nil
	}
	elements, err := e.doc.Objects(name)
	if err != nil {
		e.vc.Reset().Parameter(name).
			FailWithCode("is.not.an.array.of.objects", err.Error())
		return nil
	}
	return elements
}

// extractApplication pulls every known parameter out of the document,
// recording conversion failures on the way.
func extractApplication(e *extractor) *applicationRequest {
	req := &applicationRequest{
		LoanType:  e.str(paramLoanType),
		ClientID:  e.long(paramClientID),
		GroupID:   e.long(paramGroupID),
		ProductID: e.long(paramProductID),

		Principal: e.dec(paramPrincipal),

		LoanTermFrequency:      e.long(paramLoanTermFrequency),
		LoanTermFrequencyType:  e.long(paramLoanTermFrequencyType),
		NumberOfRepayments:     e.long(paramNumberOfRepayments),
		RepaymentEvery:         e.long(paramRepaymentEvery),
		RepaymentFrequencyType: e.long(paramRepaymentFrequencyType),

		InterestType:               e.long(paramInterestType),
		InterestRatePerPeriod:      e.dec(paramInterestRatePerPeriod),
		InterestCalculationPeriod:  e.long(paramInterestCalculationPeriod),
		AllowPartialPeriodInterest: e.boolean(paramAllowPartialPeriodInterest),

		AmortizationType:         e.long(paramAmortizationType),
		FixedPrincipalPercentage: e.dec(paramFixedPrincipalPercentage),

		ExpectedDisbursementDate:   e.date(paramExpectedDisbursementDate),
		RepaymentsStartingFromDate: e.date(paramRepaymentsStartingFromDate),
		InterestChargedFromDate:    e.date(paramInterestChargedFromDate),
		SubmittedOnDate:            e.date(paramSubmittedOnDate),

		TransactionProcessingStrategy: e.str(paramTransactionProcessingStrategy),
		ScheduleProcessingType:        e.str(paramLoanScheduleProcessingType),

		GraceOnPrincipalPayment: e.long(paramGraceOnPrincipalPayment),
		GraceOnInterestPayment:  e.long(paramGraceOnInterestPayment),
		GraceOnInterestCharged:  e.long(paramGraceOnInterestCharged),
		GraceOnArrearsAgeing:    e.long(paramGraceOnArrearsAgeing),
		InArrearsTolerance:      e.dec(paramInArrearsTolerance),

		FixedEMIAmount:            e.dec(paramFixedEMIAmount),
		MaxOutstandingLoanBalance: e.dec(paramMaxOutstandingLoanBalance),

		LinkAccountID:             e.long(paramLinkAccountID),
		CreateStandingInstruction: e.boolean(paramCreateStandingInstruction),

		IsTopup:       e.boolean(paramIsTopup),
		LoanIDToClose: e.long(paramLoanIDToClose),

		IsEqualAmortization:      e.boolean(paramIsEqualAmortization),
		IsFloatingInterestRate:   e.boolean(paramIsFloatingInterestRate),
		InterestRateDifferential: e.dec(paramInterestRateDifferential),

		SyncDisbursementWithMeeting: e.boolean(paramSyncDisbursementWithMeeting),

		ExternalID:     e.str(paramExternalID),
		LoanOfficerID:  e.long(paramLoanOfficerID),
		LoanPurposeID:  e.long(paramLoanPurposeID),
		FundID:         e.long(paramFundID),
		DaysInYearType: e.long(paramDaysInYearType),

		Note: e.str(paramNote),
	}

	req.Tranches = e.objects(paramDisbursementData)
	req.HasTranches = len(req.Tranches) > 0

	req.Charges = e.objects(paramCharges)
	req.Collateral = e.objects(paramCollateral)

	return req
}
