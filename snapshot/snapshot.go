// Package snapshot reads the JSON snapshot files the command line tool
// consumes: the loan product, the persisted loan, and the surrounding
// read-side state (borrowers, groups, calendars, office config). A Store
// built from these snapshots backs every validator lookup in memory.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/microfin/loanval/calendar"
	"github.com/microfin/loanval/document"
	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
	"github.com/microfin/loanval/validator"
)

// Date is a calendar date in the request wire format.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(document.DateFormat, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected %s", s, document.DateFormat)
	}
	d.Time = t
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// FloatingRate is the wire form of a product's floating rate linkage.
type FloatingRate struct {
	MinDifferentialLendingRate decimal.Decimal `json:"minDifferentialLendingRate"`
	MaxDifferentialLendingRate decimal.Decimal `json:"maxDifferentialLendingRate"`
	FloatingCalculationAllowed bool            `json:"floatingCalculationAllowed"`
}

// Product is the on-disk form of a loan product.
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`

	MinPrincipal *decimal.Decimal `json:"minPrincipal"`
	MaxPrincipal *decimal.Decimal `json:"maxPrincipal"`

	MinNumberOfRepayments *int64 `json:"minNumberOfRepayments"`
	MaxNumberOfRepayments *int64 `json:"maxNumberOfRepayments"`

	StartDate *Date `json:"startDate"`
	CloseDate *Date `json:"closeDate"`

	LinkedToFloatingRate bool          `json:"linkedToFloatingRate"`
	FloatingRates        *FloatingRate `json:"floatingRates"`

	InterestRecalculationEnabled          bool `json:"interestRecalculationEnabled"`
	AllowPartialPeriodInterestCalculation bool `json:"allowPartialPeriodInterestCalculation"`
	AllowVariableInstallments             bool `json:"allowVariableInstallments"`
	CanDefineInstallmentAmount            bool `json:"canDefineInstallmentAmount"`

	MultiDisburse                 bool `json:"multiDisburse"`
	MaxTrancheCount               int  `json:"maxTrancheCount"`
	DisallowExpectedDisbursements bool `json:"disallowExpectedDisbursements"`

	ScheduleType                  string `json:"scheduleType"`
	ScheduleProcessingType        string `json:"scheduleProcessingType"`
	TransactionProcessingStrategy string `json:"transactionProcessingStrategyCode"`

	CanUseForTopup bool `json:"canUseForTopup"`

	AllowApprovedAmountOverApplied bool   `json:"allowApprovedAmountOverApplied"`
	OverAppliedCalculationType     string `json:"overAppliedCalculationType"`
	OverAppliedNumber              int64  `json:"overAppliedNumber"`

	SyncExpectedWithDisbursementDate bool `json:"syncExpectedWithDisbursementDate"`
}

// ToDomain converts the snapshot into the read-only product the validators
// consume.
func (s *Product) ToDomain() *domain.LoanProduct {
	p := &domain.LoanProduct{
		ID:           s.ID,
		Name:         s.Name,
		CurrencyCode: s.CurrencyCode,

		MinPrincipal: s.MinPrincipal,
		MaxPrincipal: s.MaxPrincipal,

		MinNumberOfRepayments: s.MinNumberOfRepayments,
		MaxNumberOfRepayments: s.MaxNumberOfRepayments,

		StartDate: s.StartDate.ptr(),
		CloseDate: s.CloseDate.ptr(),

		LinkedToFloatingRate: s.LinkedToFloatingRate,

		InterestRecalculationEnabled:          s.InterestRecalculationEnabled,
		AllowPartialPeriodInterestCalculation: s.AllowPartialPeriodInterestCalculation,
		AllowVariableInstallments:             s.AllowVariableInstallments,
		CanDefineInstallmentAmount:            s.CanDefineInstallmentAmount,

		MultiDisburse:                 s.MultiDisburse,
		MaxTrancheCount:               s.MaxTrancheCount,
		DisallowExpectedDisbursements: s.DisallowExpectedDisbursements,

		ScheduleType:                  domain.LoanScheduleType(s.ScheduleType),
		ScheduleProcessingType:        domain.LoanScheduleProcessingType(s.ScheduleProcessingType),
		TransactionProcessingStrategy: s.TransactionProcessingStrategy,

		CanUseForTopup: s.CanUseForTopup,

		AllowApprovedAmountOverApplied: s.AllowApprovedAmountOverApplied,
		OverAppliedCalculationType:     domain.OverAppliedCalculationType(s.OverAppliedCalculationType),
		OverAppliedNumber:              s.OverAppliedNumber,

		SyncExpectedWithDisbursementDate: s.SyncExpectedWithDisbursementDate,
	}
	if s.FloatingRates != nil {
		p.FloatingRates = &domain.FloatingRateConfig{
			MinDifferentialLendingRate: s.FloatingRates.MinDifferentialLendingRate,
			MaxDifferentialLendingRate: s.FloatingRates.MaxDifferentialLendingRate,
			FloatingCalculationAllowed: s.FloatingRates.FloatingCalculationAllowed,
		}
	}
	return p
}

// Client is the on-disk form of a borrower.
type Client struct {
	ID                int64 `json:"id"`
	OfficeID          int64 `json:"officeId"`
	Active            bool  `json:"active"`
	ActivationDate    *Date `json:"activationDate"`
	OfficeJoiningDate *Date `json:"officeJoiningDate"`
}

// ToDomain converts the snapshot into the read-only client.
func (s *Client) ToDomain() *domain.Client {
	return &domain.Client{
		ID:                s.ID,
		OfficeID:          s.OfficeID,
		Active:            s.Active,
		ActivationDate:    s.ActivationDate.ptr(),
		OfficeJoiningDate: s.OfficeJoiningDate.ptr(),
	}
}

// Group is the on-disk form of a borrower group.
type Group struct {
	ID             int64   `json:"id"`
	OfficeID       int64   `json:"officeId"`
	Active         bool    `json:"active"`
	ActivationDate *Date   `json:"activationDate"`
	MemberIDs      []int64 `json:"memberIds"`
}

// ToDomain converts the snapshot into the read-only group.
func (s *Group) ToDomain() *domain.Group {
	return &domain.Group{
		ID:             s.ID,
		OfficeID:       s.OfficeID,
		Active:         s.Active,
		ActivationDate: s.ActivationDate.ptr(),
		MemberIDs:      s.MemberIDs,
	}
}

// Savings is the on-disk form of a linked savings account.
type Savings struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"clientId"`
	Active   bool  `json:"active"`
}

// Tranche is one scheduled partial disbursement.
type Tranche struct {
	Sequence     int             `json:"sequence"`
	ExpectedDate Date            `json:"expectedDisbursementDate"`
	Principal    decimal.Decimal `json:"principal"`
}

// Loan is the on-disk form of a persisted loan, consumed by the lifecycle
// actions that run against an existing account.
type Loan struct {
	ID       int64 `json:"id"`
	Status   int   `json:"status"`
	ClientID int64 `json:"clientId"`
	GroupID  int64 `json:"groupId"`

	ProposedPrincipal decimal.Decimal `json:"proposedPrincipal"`
	ApprovedPrincipal decimal.Decimal `json:"approvedPrincipal"`
	CurrencyCode      string          `json:"currencyCode"`

	TermFrequency      int64 `json:"loanTermFrequency"`
	TermFrequencyType  int64 `json:"loanTermFrequencyType"`
	NumberOfRepayments int64 `json:"numberOfRepayments"`
	RepaymentEvery     int64 `json:"repaymentEvery"`
	RepaymentEveryType int64 `json:"repaymentFrequencyType"`

	InterestType              int64            `json:"interestType"`
	InterestCalculationPeriod int64            `json:"interestCalculationPeriodType"`
	InterestRatePerPeriod     *decimal.Decimal `json:"interestRatePerPeriod"`
	AmortizationType          int64            `json:"amortizationType"`

	TransactionProcessingStrategy string `json:"transactionProcessingStrategyCode"`

	EqualAmortization bool             `json:"isEqualAmortization"`
	FixedEMIAmount    *decimal.Decimal `json:"fixedEmiAmount"`

	MaxOutstandingLoanBalance *decimal.Decimal `json:"maxOutstandingLoanBalance"`

	SubmittedOnDate          Date  `json:"submittedOnDate"`
	ApprovedOnDate           *Date `json:"approvedOnDate"`
	ExpectedDisbursementDate Date  `json:"expectedDisbursementDate"`
	DisbursementDate         *Date `json:"actualDisbursementDate"`
	LastUserTransactionDate  *Date `json:"lastTransactionDate"`

	SyncDisbursementWithMeeting bool `json:"syncDisbursementWithMeeting"`

	Topup         bool   `json:"isTopup"`
	LoanIDToClose *int64 `json:"loanIdToClose"`

	Tranches []Tranche `json:"disbursementData"`
}

// ToDomain converts the snapshot into the read-only loan. The product and
// store resolve the owning product, client and group; either may be nil.
func (s *Loan) ToDomain(product *domain.LoanProduct, store *Store) *domain.Loan {
	l := &domain.Loan{
		ID:      s.ID,
		Status:  domain.LoanStatus(s.Status),
		Product: product,

		ProposedPrincipal: s.ProposedPrincipal,
		ApprovedPrincipal: s.ApprovedPrincipal,
		CurrencyCode:      s.CurrencyCode,

		TermFrequency:      s.TermFrequency,
		TermFrequencyType:  domain.PeriodFrequencyType(s.TermFrequencyType),
		NumberOfRepayments: s.NumberOfRepayments,
		RepaymentEvery:     s.RepaymentEvery,
		RepaymentEveryType: domain.PeriodFrequencyType(s.RepaymentEveryType),

		InterestType:              domain.InterestMethod(s.InterestType),
		InterestCalculationPeriod: domain.InterestCalculationPeriodMethod(s.InterestCalculationPeriod),
		InterestRatePerPeriod:     s.InterestRatePerPeriod,
		AmortizationType:          domain.AmortizationMethod(s.AmortizationType),

		TransactionProcessingStrategy: s.TransactionProcessingStrategy,

		EqualAmortization: s.EqualAmortization,
		FixedEMIAmount:    s.FixedEMIAmount,

		MaxOutstandingLoanBalance: s.MaxOutstandingLoanBalance,

		SubmittedOnDate:          s.SubmittedOnDate.Time,
		ApprovedOnDate:           s.ApprovedOnDate.ptr(),
		ExpectedDisbursementDate: s.ExpectedDisbursementDate.Time,
		DisbursementDate:         s.DisbursementDate.ptr(),
		LastUserTransactionDate:  s.LastUserTransactionDate.ptr(),

		SyncDisbursementWithMeeting: s.SyncDisbursementWithMeeting,

		Topup: s.Topup,
	}
	if s.LoanIDToClose != nil {
		l.TopupDetails = &domain.TopupDetails{LoanIDToClose: *s.LoanIDToClose}
	}
	for _, t := range s.Tranches {
		l.Tranches = append(l.Tranches, domain.DisbursementTranche{
			Sequence:     t.Sequence,
			ExpectedDate: t.ExpectedDate.Time,
			Principal:    t.Principal,
		})
	}
	if store != nil {
		if c, ok := store.clients[s.ClientID]; ok {
			l.Client = c
		}
		if g, ok := store.groups[s.GroupID]; ok {
			l.Group = g
		}
	}
	return l
}

// Holiday is the on-disk form of an office holiday.
type Holiday struct {
	Name     string `json:"name"`
	FromDate Date   `json:"fromDate"`
	ToDate   Date   `json:"toDate"`
}

// Meeting is the on-disk form of a group's meeting calendar.
type Meeting struct {
	GroupID   int64 `json:"groupId"`
	StartDate Date  `json:"startDate"`
	Frequency int64 `json:"frequency"`
	Interval  int64 `json:"interval"`
}

// Balance is the outstanding balance of a related loan, keyed by id.
type Balance struct {
	LoanID  int64           `json:"loanId"`
	Balance decimal.Decimal `json:"balance"`
}

// Environment is the on-disk form of the read-side state surrounding a
// request.
type Environment struct {
	Clients  []Client  `json:"clients"`
	Groups   []Group   `json:"groups"`
	Savings  []Savings `json:"savingsAccounts"`
	Loans    []Loan    `json:"loans"`
	Balances []Balance `json:"outstandingBalances"`
	Holidays []Holiday `json:"holidays"`
	Meetings []Meeting `json:"meetingCalendars"`

	WorkingDays []string `json:"workingDays"`

	MeetingMandatoryForJLG           bool `json:"meetingMandatoryForJlgLoans"`
	AllowTransactionsOnHoliday       bool `json:"allowTransactionsOnHoliday"`
	AllowTransactionsOnNonWorkingDay bool `json:"allowTransactionsOnNonWorkingDay"`
}

// Store backs every validator lookup from in-memory snapshots.
type Store struct {
	clients  map[int64]*domain.Client
	groups   map[int64]*domain.Group
	savings  map[int64]*domain.SavingsAccount
	loans    map[int64]*domain.Loan
	balances map[int64]decimal.Decimal
	meetings map[int64]*calendar.MeetingCalendar
	holidays []calendar.Holiday

	workingDays *calendar.WorkingDays
	settings    validator.Settings
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NewStore builds a Store from an environment snapshot. A nil environment
// yields an empty store with the default working week.
func NewStore(env *Environment) (*Store, error) {
	store := &Store{
		clients:  make(map[int64]*domain.Client),
		groups:   make(map[int64]*domain.Group),
		savings:  make(map[int64]*domain.SavingsAccount),
		loans:    make(map[int64]*domain.Loan),
		balances: make(map[int64]decimal.Decimal),
		meetings: make(map[int64]*calendar.MeetingCalendar),

		workingDays: calendar.DefaultWorkingDays(),
	}
	if env == nil {
		return store, nil
	}

	for i := range env.Clients {
		c := env.Clients[i].ToDomain()
		store.clients[c.ID] = c
	}
	for i := range env.Groups {
		g := env.Groups[i].ToDomain()
		store.groups[g.ID] = g
	}
	for _, a := range env.Savings {
		store.savings[a.ID] = &domain.SavingsAccount{ID: a.ID, ClientID: a.ClientID, Active: a.Active}
	}
	for i := range env.Loans {
		l := env.Loans[i].ToDomain(nil, store)
		store.loans[l.ID] = l
	}
	for _, b := range env.Balances {
		store.balances[b.LoanID] = b.Balance
	}
	for _, h := range env.Holidays {
		store.holidays = append(store.holidays, calendar.Holiday{
			Name:     h.Name,
			FromDate: h.FromDate.Time,
			ToDate:   h.ToDate.Time,
		})
	}
	for _, m := range env.Meetings {
		store.meetings[m.GroupID] = &calendar.MeetingCalendar{
			StartDate: m.StartDate.Time,
			Frequency: domain.PeriodFrequencyType(m.Frequency),
			Interval:  int(m.Interval),
		}
	}

	if len(env.WorkingDays) > 0 {
		days := make(map[time.Weekday]bool, len(env.WorkingDays))
		for _, name := range env.WorkingDays {
			day, ok := weekdayNames[name]
			if !ok {
				return nil, fmt.Errorf("unknown working day %q", name)
			}
			days[day] = true
		}
		store.workingDays = &calendar.WorkingDays{Days: days}
	}

	store.settings = validator.Settings{
		MeetingMandatoryForJLG:           env.MeetingMandatoryForJLG,
		AllowTransactionsOnHoliday:       env.AllowTransactionsOnHoliday,
		AllowTransactionsOnNonWorkingDay: env.AllowTransactionsOnNonWorkingDay,
	}

	return store, nil
}

// Client implements validator.ClientLookup.
func (s *Store) Client(id int64) (*domain.Client, error) {
	c, ok := s.clients[id]
	if !ok {
		return nil, &validation.NotFoundError{Resource: "client", ID: id}
	}
	return c, nil
}

// Group implements validator.GroupLookup.
func (s *Store) Group(id int64) (*domain.Group, error) {
	g, ok := s.groups[id]
	if !ok {
		return nil, &validation.NotFoundError{Resource: "group", ID: id}
	}
	return g, nil
}

// SavingsAccount implements validator.SavingsLookup.
func (s *Store) SavingsAccount(id int64) (*domain.SavingsAccount, error) {
	a, ok := s.savings[id]
	if !ok {
		return nil, &validation.NotFoundError{Resource: "savingsaccount", ID: id}
	}
	return a, nil
}

// NonClosedLoan implements validator.LoanLookup.
func (s *Store) NonClosedLoan(id int64) (*domain.Loan, error) {
	l, ok := s.loans[id]
	if !ok {
		return nil, &validation.NotFoundError{Resource: "loan", ID: id}
	}
	return l, nil
}

// OutstandingBalance implements validator.LoanLookup. Unknown loans report a
// zero balance.
func (s *Store) OutstandingBalance(loanID int64, on time.Time) (decimal.Decimal, error) {
	return s.balances[loanID], nil
}

// MeetingCalendar implements validator.CalendarLookup. Groups without a
// calendar resolve to nil.
func (s *Store) MeetingCalendar(groupID int64) (*calendar.MeetingCalendar, error) {
	return s.meetings[groupID], nil
}

// Holidays implements validator.HolidayLookup.
func (s *Store) Holidays(officeID int64) ([]calendar.Holiday, error) {
	return s.holidays, nil
}

// Validator assembles a Validator whose lookups all read from the store.
func (s *Store) Validator() *validator.Validator {
	return validator.New(validator.Deps{
		Clients:  s,
		Groups:   s,
		Loans:    s,
		Savings:  s,
		Meetings: s,
		Holidays: s,

		WorkingDays: s.workingDays,
		Settings:    s.settings,
	})
}

// LoadProduct reads a product snapshot from a JSON file.
func LoadProduct(path string) (*Product, error) {
	var p Product
	if err := loadFile(path, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadLoan reads a loan snapshot from a JSON file.
func LoadLoan(path string) (*Loan, error) {
	var l Loan
	if err := loadFile(path, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// LoadEnvironment reads an environment snapshot from a JSON file.
func LoadEnvironment(path string) (*Environment, error) {
	var e Environment
	if err := loadFile(path, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func loadFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
