package validator

import (
	"fmt"
	"time"

	"github.com/microfin/loanval/calendar"
	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
)

// validateSubmittedOnDate checks the submission date against the product
// window, today, the applicant's activation dates, and the expected
// disbursement date. All violations are fail-fast; a submission on an
// impossible date cannot be partially tolerated.
func (v *Validator) validateSubmittedOnDate(submitted, expectedDisbursement *time.Time, product *domain.LoanProduct, client *domain.Client, group *domain.Group) error {
	if submitted == nil {
		return nil
	}
	date := truncateDay(*submitted)

	if date.After(v.today()) {
		return validation.NewApplicationDateError("submitted.on.date.in.the.future",
			fmt.Sprintf("The submitted on date %s may not be in the future.", date.Format(document.DateFormat)))
	}
	if product.StartDate != nil && beforeDay(date, *product.StartDate) {
		return validation.NewApplicationDateError("submitted.on.date.before.product.start.date",
			fmt.Sprintf("The submitted on date %s is before the loan product is available.", date.Format(document.DateFormat)),
			*product.StartDate)
	}
	if product.CloseDate != nil && afterDay(date, *product.CloseDate) {
		return validation.NewApplicationDateError("submitted.on.date.after.product.close.date",
			fmt.Sprintf("The submitted on date %s is after the loan product closed.", date.Format(document.DateFormat)),
			*product.CloseDate)
	}
	if client != nil && client.ActivatedAfter(date) {
		return validation.NewApplicationDateError("submitted.on.date.before.client.activation",
			fmt.Sprintf("The submitted on date %s is before client %d was activated.", date.Format(document.DateFormat), client.ID))
	}
	if group != nil && group.ActivatedAfter(date) {
		return validation.NewApplicationDateError("submitted.on.date.before.group.activation",
			fmt.Sprintf("The submitted on date %s is before group %d was activated.", date.Format(document.DateFormat), group.ID))
	}
	if client != nil && client.OfficeJoiningDate != nil && beforeDay(date, *client.OfficeJoiningDate) {
		return validation.NewApplicationDateError("submitted.on.date.before.office.joining.date",
			fmt.Sprintf("The submitted on date %s is before client %d joined its office.", date.Format(document.DateFormat), client.ID))
	}
	if expectedDisbursement != nil && afterDay(date, *expectedDisbursement) {
		return validation.NewInvalidStateTransitionError("submittal",
			"cannot.be.after.expected.disbursement.date",
			"The submitted on date may not be after the expected disbursement date.")
	}
	return nil
}

// validateDisbursementDateWorkable checks a disbursement date against the
// holiday and working-day snapshots, honoring the institution toggles.
func (v *Validator) validateDisbursementDateWorkable(date time.Time, officeID int64) error {
	if !v.settings.AllowTransactionsOnHoliday && v.holidays != nil {
		holidays, err := v.holidays.Holidays(officeID)
		if err != nil {
			return err
		}
		if calendar.IsHoliday(date, holidays) {
			return validation.NewApplicationDateError("disbursement.date.on.holiday",
				fmt.Sprintf("The disbursement date %s falls on a holiday.", date.Format(document.DateFormat)))
		}
	}
	if !v.settings.AllowTransactionsOnNonWorkingDay && !v.workingDays.IsWorkingDay(date) {
		return validation.NewApplicationDateError("disbursement.date.on.non.working.day",
			fmt.Sprintf("The disbursement date %s falls on a non-working day.", date.Format(document.DateFormat)))
	}
	return nil
}

// validateMeetingRecurrence checks a synced disbursement date against the
// group's meeting calendar.
func (v *Validator) validateMeetingRecurrence(date time.Time, groupID int64) error {
	if v.meetings == nil {
		return nil
	}
	meeting, err := v.meetings.MeetingCalendar(groupID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return &validation.NotFoundError{Resource: "meeting", ID: groupID}
	}
	if !meeting.IsValidRecurringDate(date) {
		return validation.NewApplicationDateError("disbursement.date.not.on.meeting.date",
			fmt.Sprintf("The disbursement date %s does not fall on a meeting of the attached calendar.", date.Format(document.DateFormat)))
	}
	return nil
}
