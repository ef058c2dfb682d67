package validator

// Wire parameter names. Each lifecycle context declares an explicit
// allow-list; any other top-level parameter in the request is rejected
// before business rules run.
const (
	paramLoanType                      = "loanType"
	paramClientID                      = "clientId"
	paramGroupID                       = "groupId"
	paramProductID                     = "productId"
	paramPrincipal                     = "principal"
	paramLoanTermFrequency             = "loanTermFrequency"
	paramLoanTermFrequencyType         = "loanTermFrequencyType"
	paramNumberOfRepayments            = "numberOfRepayments"
	paramRepaymentEvery                = "repaymentEvery"
	paramRepaymentFrequencyType        = "repaymentFrequencyType"
	paramInterestType                  = "interestType"
	paramInterestRatePerPeriod         = "interestRatePerPeriod"
	paramInterestCalculationPeriod     = "interestCalculationPeriodType"
	paramAllowPartialPeriodInterest    = "allowPartialPeriodInterestCalculation"
	paramAmortizationType              = "amortizationType"
	paramFixedPrincipalPercentage      = "fixedPrincipalPercentagePerInstallment"
	paramExpectedDisbursementDate      = "expectedDisbursementDate"
	paramRepaymentsStartingFromDate    = "repaymentsStartingFromDate"
	paramInterestChargedFromDate       = "interestChargedFromDate"
	paramSubmittedOnDate               = "submittedOnDate"
	paramTransactionProcessingStrategy = "transactionProcessingStrategyCode"
	paramLoanScheduleProcessingType    = "loanScheduleProcessingType"
	paramGraceOnPrincipalPayment       = "graceOnPrincipalPayment"
	paramGraceOnInterestPayment        = "graceOnInterestPayment"
	paramGraceOnInterestCharged        = "graceOnInterestCharged"
	paramGraceOnArrearsAgeing          = "graceOnArrearsAgeing"
	paramInArrearsTolerance            = "inArrearsTolerance"
	paramCharges                       = "charges"
	paramCollateral                    = "collateral"
	paramDisbursementData              = "disbursementData"
	paramFixedEMIAmount                = "fixedEmiAmount"
	paramMaxOutstandingLoanBalance     = "maxOutstandingLoanBalance"
	paramLinkAccountID                 = "linkAccountId"
	paramCreateStandingInstruction     = "createStandingInstructionAtDisbursement"
	paramIsTopup                       = "isTopup"
	paramLoanIDToClose                 = "loanIdToClose"
	paramIsEqualAmortization           = "isEqualAmortization"
	paramIsFloatingInterestRate        = "isFloatingInterestRate"
	paramInterestRateDifferential      = "interestRateDifferential"
	paramSyncDisbursementWithMeeting   = "syncDisbursementWithMeeting"
	paramExternalID                    = "externalId"
	paramFundID                        = "fundId"
	paramLoanOfficerID                 = "loanOfficerId"
	paramLoanPurposeID                 = "loanPurposeId"
	paramDaysInYearType                = "daysInYearType"
	paramNote                          = "note"
	paramLocale                        = "locale"
	paramDateFormat                    = "dateFormat"

	paramID                    = "id"
	paramChargeID              = "chargeId"
	paramAmount                = "amount"
	paramChargeTimeType        = "chargeTimeType"
	paramChargeCalculationType = "chargeCalculationType"
	paramChargePaymentMode     = "chargePaymentMode"
	paramDueDate               = "dueDate"
	paramClientCollateralID    = "clientCollateralId"
	paramQuantity              = "quantity"

	paramApprovedLoanAmount     = "approvedLoanAmount"
	paramApprovedOnDate         = "approvedOnDate"
	paramNetDisbursalAmount     = "netDisbursalAmount"
	paramRejectedOnDate         = "rejectedOnDate"
	paramWithdrawnOnDate        = "withdrawnOnDate"
	paramActualDisbursementDate = "actualDisbursementDate"
	paramTransactionAmount      = "transactionAmount"
	paramPaymentTypeID          = "paymentTypeId"
)

// maxNoteLength bounds free-text notes on lifecycle events.
const maxNoteLength = 1000

// applicationParams is the shared allow-list of create and modify.
var applicationParams = []string{
	paramLoanType, paramClientID, paramGroupID, paramProductID,
	paramPrincipal, paramLoanTermFrequency, paramLoanTermFrequencyType,
	paramNumberOfRepayments, paramRepaymentEvery, paramRepaymentFrequencyType,
	paramInterestType, paramInterestRatePerPeriod, paramInterestCalculationPeriod,
	paramAllowPartialPeriodInterest, paramAmortizationType,
	paramFixedPrincipalPercentage, paramExpectedDisbursementDate,
	paramRepaymentsStartingFromDate, paramInterestChargedFromDate,
	paramSubmittedOnDate, paramTransactionProcessingStrategy,
	paramLoanScheduleProcessingType, paramGraceOnPrincipalPayment,
	paramGraceOnInterestPayment, paramGraceOnInterestCharged,
	paramGraceOnArrearsAgeing, paramInArrearsTolerance, paramCharges,
	paramCollateral, paramDisbursementData, paramFixedEMIAmount,
	paramMaxOutstandingLoanBalance, paramLinkAccountID,
	paramCreateStandingInstruction, paramIsTopup, paramLoanIDToClose,
	paramIsEqualAmortization, paramIsFloatingInterestRate,
	paramInterestRateDifferential, paramSyncDisbursementWithMeeting,
	paramExternalID, paramFundID, paramLoanOfficerID, paramLoanPurposeID,
	paramDaysInYearType, paramNote, paramLocale, paramDateFormat,
}

var approvalParams = []string{
	paramApprovedLoanAmount, paramApprovedOnDate, paramExpectedDisbursementDate,
	paramNetDisbursalAmount, paramDisbursementData,
	paramNote, paramLocale, paramDateFormat,
}

var rejectionParams = []string{
	paramRejectedOnDate, paramNote, paramLocale, paramDateFormat,
}

var withdrawalParams = []string{
	paramWithdrawnOnDate, paramNote, paramLocale, paramDateFormat,
}

var undoParams = []string{
	paramNote,
}

var disbursementParams = []string{
	paramActualDisbursementDate, paramTransactionAmount, paramNetDisbursalAmount,
	paramPaymentTypeID, paramFixedEMIAmount,
	paramNote, paramLocale, paramDateFormat,
}

// trancheParams is the allow-list of a single disbursementData element.
var trancheParams = []string{
	paramExpectedDisbursementDate, paramPrincipal,
}

// chargeParams is the allow-list of a single charges element.
var chargeParams = []string{
	paramID, paramChargeID, paramAmount, paramChargeTimeType,
	paramChargeCalculationType, paramDueDate, paramChargePaymentMode,
	paramExternalID,
}

// collateralParams is the allow-list of a single collateral element.
var collateralParams = []string{
	paramClientCollateralID, paramQuantity,
}
