package validation

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// GlobalErrorCode identifies an aggregate of accumulated parameter errors.
const GlobalErrorCode = "validation.msg.validation.errors.exist"

// Error is a single accumulated parameter failure. Identity is structural and
// creation order is preserved by the owning Context, so two validation runs
// over the same inputs produce identical error lists.
type Error struct {
	Code      string
	Message   string
	Parameter string
	Value     any
	Args      []any
}

func (e *Error) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: parameter %s: %s", e.Code, e.Parameter, e.Message)
}

// Errors wraps every parameter error found during one validation run. The
// caller should treat it as "fix all of these and retry".
type Errors struct {
	GlobalCode string
	Errors     []*Error
}

// NewErrors builds the aggregate failure for a non-empty error list.
func NewErrors(errs []*Error) *Errors {
	return &Errors{GlobalCode: GlobalErrorCode, Errors: errs}
}

func (e *Errors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *Errors) Unwrap() []error {
	unwrapped := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		unwrapped[i] = err
	}
	return unwrapped
}

// HasCode reports whether any accumulated error carries the given code,
// matched against the full code or its final dotted segments.
func (e *Errors) HasCode(code string) bool {
	for _, err := range e.Errors {
		if err.Code == code || strings.HasSuffix(err.Code, "."+code) {
			return true
		}
	}
	return false
}

// Fail-fast errors. These abort validation immediately and bypass the
// accumulator: they describe requests that are structurally unreadable,
// logically self-contradictory, or illegal in the loan's current lifecycle
// state. Callers detect them with errors.As.

// BlankRequestError is raised when the request body is empty or whitespace.
type BlankRequestError struct{}

func (e *BlankRequestError) Error() string {
	return "error.msg.invalid.request.body: request body may not be blank"
}

// MalformedRequestError is raised when the request body cannot be parsed.
type MalformedRequestError struct {
	Underlying error
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("error.msg.invalid.request.body: request body is not valid JSON: %v", e.Underlying)
}

func (e *MalformedRequestError) Unwrap() error {
	return e.Underlying
}

// UnsupportedParametersError is raised when the document carries parameters
// outside the lifecycle context's allow-list.
type UnsupportedParametersError struct {
	Parameters []string
}

// NewUnsupportedParametersError sorts the offending names for deterministic output.
func NewUnsupportedParametersError(parameters []string) *UnsupportedParametersError {
	sorted := slices.Clone(parameters)
	slices.Sort(sorted)
	return &UnsupportedParametersError{Parameters: sorted}
}

func (e *UnsupportedParametersError) Error() string {
	return fmt.Sprintf("error.msg.parameters.unsupported: unsupported parameters: %s",
		strings.Join(e.Parameters, ", "))
}

// InvalidStateTransitionError is raised when an operation's dates or amounts
// contradict the loan's lifecycle (approval before submittal, disbursal before
// approval, amounts above the approved cap).
type InvalidStateTransitionError struct {
	Action  string
	Reason  string
	Message string
	Args    []any
}

func NewInvalidStateTransitionError(action, reason, message string, args ...any) *InvalidStateTransitionError {
	return &InvalidStateTransitionError{Action: action, Reason: reason, Message: message, Args: args}
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("error.msg.loan.%s.%s: %s", e.Action, e.Reason, e.Message)
}

// Code returns the full dotted error code for the transition failure.
func (e *InvalidStateTransitionError) Code() string {
	return fmt.Sprintf("error.msg.loan.%s.%s", e.Action, e.Reason)
}

// ApplicationDateError is raised when a date in the application falls outside
// an absolute window (product open/close dates, holidays, non-working days,
// meeting recurrence).
type ApplicationDateError struct {
	Reason  string
	Message string
	Args    []any
}

func NewApplicationDateError(reason, message string, args ...any) *ApplicationDateError {
	return &ApplicationDateError{Reason: reason, Message: message, Args: args}
}

func (e *ApplicationDateError) Error() string {
	return fmt.Sprintf("error.msg.loan.%s: %s", e.Reason, e.Message)
}

// EqualAmortizationUnsupportedError is raised when equal amortization is
// combined with a product feature it cannot coexist with (interest
// recalculation, floating rates, fixed EMI, tranche disbursal). The request is
// self-contradictory, so validation stops immediately.
type EqualAmortizationUnsupportedError struct {
	FeatureCode string
	FeatureName string
}

func NewEqualAmortizationUnsupportedError(featureCode, featureName string) *EqualAmortizationUnsupportedError {
	return &EqualAmortizationUnsupportedError{FeatureCode: featureCode, FeatureName: featureName}
}

func (e *EqualAmortizationUnsupportedError) Error() string {
	return fmt.Sprintf("error.msg.loan.equal.amortization.not.supported.with.%s: equal amortization is not supported with %s",
		e.FeatureCode, e.FeatureName)
}

// DomainRuleError is raised for business rules whose violation makes the rest
// of the request meaningless (topup chain failures, strategy/schedule-type
// contradictions).
type DomainRuleError struct {
	RuleCode string
	Message  string
}

func NewDomainRuleError(code, message string) *DomainRuleError {
	return &DomainRuleError{RuleCode: code, Message: message}
}

func (e *DomainRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.RuleCode, e.Message)
}

// ClientNotActiveError is raised when the applying client is not active.
type ClientNotActiveError struct {
	ClientID int64
}

func (e *ClientNotActiveError) Error() string {
	return fmt.Sprintf("error.msg.loan.client.not.active: client %d is not active", e.ClientID)
}

// GroupNotActiveError is raised when the applying group is not active.
type GroupNotActiveError struct {
	GroupID int64
}

func (e *GroupNotActiveError) Error() string {
	return fmt.Sprintf("error.msg.loan.group.not.active: group %d is not active", e.GroupID)
}

// ClientNotInGroupError is raised for JLG applications naming a client outside
// the named group.
type ClientNotInGroupError struct {
	ClientID int64
	GroupID  int64
}

func (e *ClientNotInGroupError) Error() string {
	return fmt.Sprintf("error.msg.loan.client.not.in.group: client %d is not a member of group %d", e.ClientID, e.GroupID)
}

// LoanNotPendingApprovalError is raised when an operation requires the loan to
// be submitted and pending approval but it is not.
type LoanNotPendingApprovalError struct {
	LoanID int64
}

func (e *LoanNotPendingApprovalError) Error() string {
	return fmt.Sprintf("error.msg.loan.not.in.submitted.and.pending.approval.state: loan %d is not in submitted and pending approval state", e.LoanID)
}

// TrancheCountExceededError is raised when more tranches are submitted than
// the product allows.
type TrancheCountExceededError struct {
	Max    int
	Actual int
}

func (e *TrancheCountExceededError) Error() string {
	return fmt.Sprintf("error.msg.loan.tranche.count.exceeded: number of tranches (%d) may not be greater than %d", e.Actual, e.Max)
}

// MultiDisbursementRequiredError is raised when a multi-disbursement product
// is submitted without disbursement details.
type MultiDisbursementRequiredError struct{}

func (e *MultiDisbursementRequiredError) Error() string {
	return "error.msg.loan.disbursement.details.required: disbursement details must be provided for this loan product"
}

// MultiDisbursementNotAllowedError is raised when disbursement details are
// submitted for a product that disallows expected disbursements.
type MultiDisbursementNotAllowedError struct{}

func (e *MultiDisbursementNotAllowedError) Error() string {
	return "error.msg.loan.disbursement.details.not.allowed: disbursement details are not allowed for this loan product"
}

// NotFoundError is raised when a referenced resource does not exist. Lookup
// failures surface immediately rather than being accumulated.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("error.msg.%s.id.invalid: %s with identifier %d does not exist", e.Resource, e.Resource, e.ID)
}
