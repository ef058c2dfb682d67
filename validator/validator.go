// Package validator implements the cross-field business rules guarding the
// loan application lifecycle. Each lifecycle context (create, modify,
// approve, reject, withdraw, undo, disburse) has one entry point that parses
// the request document, resolves the product's constraint surface once, and
// runs its rule set into a single validation.Context. Field and consistency
// violations accumulate; structural, feature-incompatibility, and
// state-precondition violations abort immediately with typed errors.
package validator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/calendar"
	"github.com/microfin/loanval/domain"
)

// ClientLookup resolves borrower snapshots. Lookups are blocking reads;
// a missing id surfaces as a fail-fast NotFoundError, never accumulated.
type ClientLookup interface {
	Client(id int64) (*domain.Client, error)
}

// GroupLookup resolves group snapshots.
type GroupLookup interface {
	Group(id int64) (*domain.Group, error)
}

// LoanLookup resolves persisted loans, used by the topup chain.
type LoanLookup interface {
	// NonClosedLoan returns the loan with the given id when it is not yet
	// closed, for topup linkage.
	NonClosedLoan(id int64) (*domain.Loan, error)

	// OutstandingBalance returns the total outstanding amount of the loan
	// as of the given date.
	OutstandingBalance(loanID int64, on time.Time) (decimal.Decimal, error)
}

// SavingsLookup resolves savings accounts linked to applications.
type SavingsLookup interface {
	SavingsAccount(id int64) (*domain.SavingsAccount, error)
}

// CalendarLookup resolves the meeting calendar attached to a group, if any.
type CalendarLookup interface {
	MeetingCalendar(groupID int64) (*calendar.MeetingCalendar, error)
}

// HolidayLookup resolves office holidays overlapping a date.
type HolidayLookup interface {
	Holidays(officeID int64) ([]calendar.Holiday, error)
}

// Settings are the institution-wide toggles consulted during validation.
type Settings struct {
	// MeetingMandatoryForJLG requires JLG applications to carry a meeting
	// calendar on their group.
	MeetingMandatoryForJLG bool

	AllowTransactionsOnHoliday       bool
	AllowTransactionsOnNonWorkingDay bool
}

// Validator runs lifecycle validations against read-only snapshots. It holds
// no per-request state; one Validator may serve concurrent calls.
type Validator struct {
	clients  ClientLookup
	groups   GroupLookup
	loans    LoanLookup
	savings  SavingsLookup
	meetings CalendarLookup
	holidays HolidayLookup

	workingDays *calendar.WorkingDays
	settings    Settings

	// now is swapped in tests to pin "today".
	now func() time.Time
}

// Deps wires the lookup ports a Validator needs. Nil lookups disable the
// rules that would consult them.
type Deps struct {
	Clients  ClientLookup
	Groups   GroupLookup
	Loans    LoanLookup
	Savings  SavingsLookup
	Meetings CalendarLookup
	Holidays HolidayLookup

	WorkingDays *calendar.WorkingDays
	Settings    Settings
}

// New creates a Validator over the given dependencies.
func New(deps Deps) *Validator {
	return &Validator{
		clients:     deps.Clients,
		groups:      deps.Groups,
		loans:       deps.Loans,
		savings:     deps.Savings,
		meetings:    deps.Meetings,
		holidays:    deps.Holidays,
		workingDays: deps.WorkingDays,
		settings:    deps.Settings,
		now:         time.Now,
	}
}

// today returns the current date truncated to midnight UTC; all date
// comparisons run at day granularity.
func (v *Validator) today() time.Time {
	n := v.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func beforeDay(a, b time.Time) bool {
	return truncateDay(a).Before(truncateDay(b))
}

func afterDay(a, b time.Time) bool {
	return truncateDay(a).After(truncateDay(b))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
