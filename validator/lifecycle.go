package validator

import (
	"context"
	"fmt"

	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/telemetry"
	"github.com/microfin/loanval/validation"
)

// ValidateRejection checks a rejection command: a required event date and an
// optional bounded note.
func (v *Validator) ValidateRejection(ctx context.Context, doc *document.Document) error {
	timer := telemetry.FromContext(ctx).Start("Validate rejection")
	defer timer.End()

	return v.validateEvent(doc, "loanapplication.rejection", paramRejectedOnDate, rejectionParams)
}

// ValidateWithdrawal checks a withdrawal command: a required event date and
// an optional bounded note.
func (v *Validator) ValidateWithdrawal(ctx context.Context, doc *document.Document) error {
	timer := telemetry.FromContext(ctx).Start("Validate withdrawal")
	defer timer.End()

	return v.validateEvent(doc, "loanapplication.withdrawal", paramWithdrawnOnDate, withdrawalParams)
}

// ValidateUndo checks an approval-undo command. Only a bounded note is
// accepted; the undo has no business date of its own.
func (v *Validator) ValidateUndo(ctx context.Context, doc *document.Document) error {
	timer := telemetry.FromContext(ctx).Start("Validate undo")
	defer timer.End()

	if err := doc.CheckSupported(undoParams...); err != nil {
		return err
	}

	vc := validation.NewContext("loanapplication.undo")
	e := newExtractor(doc, vc)
	vc.Reset().Parameter(paramNote).Value(e.str(paramNote)).NotExceedingLength(maxNoteLength)
	return vc.ErrorsOrNil()
}

func (v *Validator) validateEvent(doc *document.Document, resource, dateParam string, allowed []string) error {
	if err := doc.CheckSupported(allowed...); err != nil {
		return err
	}

	vc := validation.NewContext(resource)
	e := newExtractor(doc, vc)

	eventDate := e.date(dateParam)
	vc.Reset().Parameter(dateParam).Value(eventDate).NotNull()
	if eventDate != nil && afterDay(*eventDate, v.today()) {
		vc.Reset().Parameter(dateParam).Value(eventDate).
			FailWithCode("cannot.be.in.the.future",
				fmt.Sprintf("The date %s may not be in the future.", eventDate.Format(document.DateFormat)))
	}

	vc.Reset().Parameter(paramNote).Value(e.str(paramNote)).NotExceedingLength(maxNoteLength)

	return vc.ErrorsOrNil()
}
