package cli

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/microfin/loanval/validation"
)

var (
	errCodeStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errParamStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders validation outcomes with terminal styling. Parameter
// errors come out as an aligned table; fail-fast errors as a single styled
// line.
type ErrorRenderer struct{}

// NewErrorRenderer creates a renderer.
func NewErrorRenderer() *ErrorRenderer {
	return &ErrorRenderer{}
}

// Render formats an error returned by a validation run.
func (r *ErrorRenderer) Render(err error) string {
	var validationErrors *validation.Errors
	if stdErrors.As(err, &validationErrors) {
		return r.renderAccumulated(validationErrors)
	}

	var unsupported *validation.UnsupportedParametersError
	if stdErrors.As(err, &unsupported) {
		return r.renderUnsupported(unsupported)
	}

	return errCodeStyle.Render(err.Error())
}

// renderAccumulated formats the parameter error table. Rows keep the order
// the rules produced them in, so two runs over the same request render
// identically.
func (r *ErrorRenderer) renderAccumulated(errs *validation.Errors) string {
	var buf strings.Builder

	buf.WriteString(errContextStyle.Render(errs.GlobalCode))
	buf.WriteString("\n\n")

	paramWidth := 0
	for _, e := range errs.Errors {
		if w := runewidth.StringWidth(e.Parameter); w > paramWidth {
			paramWidth = w
		}
	}

	for i, e := range errs.Errors {
		param := runewidth.FillRight(e.Parameter, paramWidth)
		buf.WriteString("   ")
		buf.WriteString(errParamStyle.Render(param))
		buf.WriteString("  ")
		buf.WriteString(errCodeStyle.Render(e.Code))
		buf.WriteByte('\n')

		if e.Message != "" {
			buf.WriteString("   ")
			buf.WriteString(strings.Repeat(" ", paramWidth+2))
			buf.WriteString(errContextStyle.Render(e.Message))
			buf.WriteByte('\n')
		}

		if i < len(errs.Errors)-1 {
			buf.WriteByte('\n')
		}
	}

	return strings.TrimRight(buf.String(), "\n")
}

func (r *ErrorRenderer) renderUnsupported(err *validation.UnsupportedParametersError) string {
	var buf strings.Builder

	buf.WriteString(errCodeStyle.Render("error.msg.parameters.unsupported"))
	buf.WriteByte('\n')

	for _, p := range err.Parameters {
		buf.WriteString("   ")
		buf.WriteString(errParamStyle.Render(p))
		buf.WriteString("  ")
		buf.WriteString(errContextStyle.Render(fmt.Sprintf("parameter %s is not supported for this action", p)))
		buf.WriteByte('\n')
	}

	return strings.TrimRight(buf.String(), "\n")
}
