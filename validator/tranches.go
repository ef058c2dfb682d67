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

// tranche is one decoded disbursementData element; nil fields were absent or
// unconvertible and have already been reported.
type tranche struct {
	ExpectedDate *time.Time
	Principal    *decimal.Decimal
}

// decodeTranches converts the submitted disbursementData array, reporting
// unsupported and unconvertible element fields into the accumulator.
func decodeTranches(vc *validation.Context, docs []*document.Document) []tranche {
	tranches := make([]tranche, len(docs))
	for i, doc := range docs {
		for _, name := range doc.Parameters() {
			if !slices.Contains(trancheParams, name) {
				vc.Reset().Parameter(paramDisbursementData).ParameterAtIndex(name, i).
					FailWithCode("is.not.supported", fmt.Sprintf("The parameter %s is not supported in a disbursement entry.", name))
			}
		}

		date, err := doc.Date(paramExpectedDisbursementDate)
		if err != nil {
			vc.Reset().Parameter(paramDisbursementData).ParameterAtIndex(paramExpectedDisbursementDate, i).
				FailWithCode("is.not.a.valid.date", err.Error())
		}
		principal, err := doc.Decimal(paramPrincipal)
		if err != nil {
			vc.Reset().Parameter(paramDisbursementData).ParameterAtIndex(paramPrincipal, i).
				FailWithCode("is.not.a.number", err.Error())
		}
		tranches[i] = tranche{ExpectedDate: date, Principal: principal}
	}
	return tranches
}

// fromDomainTranches converts a persisted disbursement schedule for
// re-validation, preserving sequence order.
func fromDomainTranches(persisted []domain.DisbursementTranche) []tranche {
	tranches := make([]tranche, len(persisted))
	for i, tr := range persisted {
		date := tr.ExpectedDate
		principal := tr.Principal
		tranches[i] = tranche{ExpectedDate: &date, Principal: &principal}
	}
	return tranches
}

// validateTranches runs the disbursement-schedule rules: pairwise date
// ordering over submission order, an ordered walk pinning the first date to
// the overall expected disbursement date and rejecting early or duplicate
// dates, principal presence with a cumulative sum against the total, and the
// declining-balance interest requirement. It only appends to the accumulator
// and may be re-run at approval time with an updated total.
func validateTranches(vc *validation.Context, tranches []tranche, expectedDisbursementDate *time.Time, totalPrincipal *decimal.Decimal, interestType *int64) {
	// Any inversion in submission order is reported, not just adjacent ones.
	for i := 0; i < len(tranches); i++ {
		if tranches[i].ExpectedDate == nil {
			continue
		}
		for j := i + 1; j < len(tranches); j++ {
			if tranches[j].ExpectedDate == nil {
				continue
			}
			if afterDay(*tranches[i].ExpectedDate, *tranches[j].ExpectedDate) {
				vc.Reset().Parameter(paramDisbursementData).ParameterAtIndex(paramExpectedDisbursementDate, i).
					FailWithCode("disbursement.dates.must.be.in.ascending.order",
						fmt.Sprintf("Disbursement dates must be in ascending order; entry %d is after entry %d.", i, j))
			}
		}
	}

	sum := decimal.Zero
	seen := make([]time.Time, 0, len(tranches))
	for i, tr := range tranches {
		check := vc.Reset().Parameter(paramDisbursementData)

		if tr.ExpectedDate == nil {
			check.ParameterAtIndex(paramExpectedDisbursementDate, i).NotNull()
		} else {
			date := truncateDay(*tr.ExpectedDate)
			switch {
			case i == 0 && expectedDisbursementDate != nil && !sameDay(date, *expectedDisbursementDate):
				check.ParameterAtIndex(paramExpectedDisbursementDate, i).Value(tr.ExpectedDate).
					FailWithCode("first.disbursement.date.must.match.expected.disbursement.date",
						"The first disbursement date must equal the expected disbursement date.")
			case i > 0 && expectedDisbursementDate != nil && beforeDay(date, *expectedDisbursementDate):
				check.ParameterAtIndex(paramExpectedDisbursementDate, i).Value(tr.ExpectedDate).
					FailWithCode("disbursement.date.cannot.be.before.expected.disbursement.date",
						"A disbursement date may not be before the expected disbursement date.")
			}
			if slices.ContainsFunc(seen, func(s time.Time) bool { return sameDay(s, date) }) {
				check.ParameterAtIndex(paramExpectedDisbursementDate, i).Value(tr.ExpectedDate).
					FailWithCode("disbursement.date.must.be.unique",
						"Disbursement dates must be unique.")
			}
			seen = append(seen, date)
		}

		vc.Reset().Parameter(paramDisbursementData).
			ParameterAtIndex(paramPrincipal, i).Value(tr.Principal).NotNull()
		if tr.Principal != nil {
			sum = sum.Add(*tr.Principal)
		}
	}

	if totalPrincipal != nil && sum.GreaterThan(*totalPrincipal) {
		vc.Reset().Parameter(paramPrincipal).Value(totalPrincipal).
			FailWithCode("approved.amount.is.less.than.sum.of.tranches",
				fmt.Sprintf("The sum of scheduled disbursements (%s) exceeds the loan principal (%s).", sum, totalPrincipal))
	}

	if interestType != nil && domain.InterestMethod(*interestType) != domain.InterestDecliningBalance {
		vc.Reset().Parameter(paramInterestType).Value(interestType).
			FailWithCode("supported.only.for.declining.balance",
				"Tranche disbursal is supported only with declining balance interest.")
	}
}
