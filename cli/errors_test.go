package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/microfin/loanval/validation"
)

func TestErrorRendererAccumulated(t *testing.T) {
	errs := validation.NewErrors([]*validation.Error{
		{
			Code:      "validation.msg.loan.principal.not.within.allowed.range",
			Message:   "The principal must be between 1000 and 10000.",
			Parameter: "principal",
		},
		{
			Code:      "validation.msg.loan.loanTermFrequency.cannot.be.blank",
			Message:   "The parameter loanTermFrequency is mandatory.",
			Parameter: "loanTermFrequency",
		},
	})

	renderer := NewErrorRenderer()
	output := renderer.Render(errs)

	assert.Contains(t, output, validation.GlobalErrorCode)
	assert.Contains(t, output, "principal")
	assert.Contains(t, output, "validation.msg.loan.principal.not.within.allowed.range")
	assert.Contains(t, output, "The parameter loanTermFrequency is mandatory.")

	// Error order is preserved.
	assert.True(t, strings.Index(output, "principal.not.within") < strings.Index(output, "loanTermFrequency.cannot"))
}

func TestErrorRendererUnsupportedParameters(t *testing.T) {
	err := validation.NewUnsupportedParametersError([]string{"foo", "bar"})

	output := NewErrorRenderer().Render(err)

	assert.Contains(t, output, "error.msg.parameters.unsupported")
	assert.Contains(t, output, "bar")
	assert.Contains(t, output, "foo")
}

func TestErrorRendererFailFast(t *testing.T) {
	err := validation.NewInvalidStateTransitionError("approval", "cannot.be.before.submittal.date",
		"The approval date may not be before the submittal date.")

	output := NewErrorRenderer().Render(err)

	assert.Contains(t, output, "error.msg.loan.approval.cannot.be.before.submittal.date")
}
