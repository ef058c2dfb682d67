package snapshot

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/microfin/loanval/domain"
	"github.com/microfin/loanval/validation"
)

func TestProductToDomain(t *testing.T) {
	raw := `{
		"id": 12,
		"name": "Working capital",
		"currencyCode": "USD",
		"minPrincipal": "1000",
		"maxPrincipal": "10000",
		"minNumberOfRepayments": 1,
		"maxNumberOfRepayments": 24,
		"startDate": "2025-01-01",
		"scheduleType": "CUMULATIVE",
		"transactionProcessingStrategyCode": "mifos-standard-strategy",
		"multiDisburse": true,
		"maxTrancheCount": 3
	}`

	var snap Product
	assert.NoError(t, json.Unmarshal([]byte(raw), &snap))

	product := snap.ToDomain()
	assert.Equal(t, product.ID, int64(12))
	assert.Equal(t, product.CurrencyCode, "USD")
	assert.Equal(t, product.MinPrincipal.String(), "1000")
	assert.Equal(t, *product.MaxNumberOfRepayments, int64(24))
	assert.Equal(t, product.StartDate.Format("2006-01-02"), "2025-01-01")
	assert.True(t, product.CloseDate == nil)
	assert.Equal(t, product.ScheduleType, domain.ScheduleCumulative)
	assert.True(t, product.MultiDisburse)
	assert.Equal(t, product.MaxTrancheCount, 3)
}

func TestDateRejectsOtherFormats(t *testing.T) {
	var snap Product
	err := json.Unmarshal([]byte(`{"startDate": "01/02/2025"}`), &snap)
	assert.Error(t, err)
}

func TestLoanToDomain(t *testing.T) {
	raw := `{
		"id": 7,
		"status": 100,
		"clientId": 1,
		"proposedPrincipal": "5000",
		"currencyCode": "USD",
		"submittedOnDate": "2026-03-02",
		"expectedDisbursementDate": "2026-03-09",
		"isTopup": true,
		"loanIdToClose": 3,
		"disbursementData": [
			{"sequence": 1, "expectedDisbursementDate": "2026-03-09", "principal": "3000"},
			{"sequence": 2, "expectedDisbursementDate": "2026-04-09", "principal": "2000"}
		]
	}`

	var snap Loan
	assert.NoError(t, json.Unmarshal([]byte(raw), &snap))

	loan := snap.ToDomain(nil, nil)
	assert.True(t, loan.Status.IsSubmittedAndPendingApproval())
	assert.Equal(t, loan.ProposedPrincipal.String(), "5000")
	assert.True(t, loan.ApprovedOnDate == nil)
	assert.True(t, loan.Topup)
	assert.Equal(t, loan.TopupDetails.LoanIDToClose, int64(3))
	assert.Equal(t, len(loan.Tranches), 2)
	assert.Equal(t, loan.Tranches[1].Principal.String(), "2000")
}

func TestLoanResolvesOwnerFromStore(t *testing.T) {
	store, err := NewStore(&Environment{
		Clients: []Client{{ID: 1, OfficeID: 4, Active: true}},
	})
	assert.NoError(t, err)

	snap := Loan{ID: 7, ClientID: 1}
	loan := snap.ToDomain(nil, store)

	assert.True(t, loan.Client != nil)
	assert.Equal(t, loan.Client.OfficeID, int64(4))
	assert.True(t, loan.Group == nil)
}

func TestStoreLookups(t *testing.T) {
	store, err := NewStore(&Environment{
		Clients: []Client{{ID: 1, OfficeID: 4, Active: true}},
		Groups:  []Group{{ID: 7, Active: true, MemberIDs: []int64{1}}},
		Holidays: []Holiday{{
			Name:     "Founding day",
			FromDate: Date{time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
			ToDate:   Date{time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		}},
		Meetings: []Meeting{{
			GroupID:   7,
			StartDate: Date{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			Frequency: 1,
			Interval:  2,
		}},
		WorkingDays: []string{"monday", "tuesday"},
	})
	assert.NoError(t, err)

	client, err := store.Client(1)
	assert.NoError(t, err)
	assert.Equal(t, client.OfficeID, int64(4))

	_, err = store.Client(99)
	var notFound *validation.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, notFound.Resource, "client")

	group, err := store.Group(7)
	assert.NoError(t, err)
	assert.True(t, group.HasMember(1))

	holidays, err := store.Holidays(4)
	assert.NoError(t, err)
	assert.Equal(t, len(holidays), 1)

	cal, err := store.MeetingCalendar(7)
	assert.NoError(t, err)
	assert.Equal(t, cal.Interval, 2)
	// Fortnightly from 2026-03-02: two weeks later recurs, one week later does not.
	assert.True(t, cal.IsValidRecurringDate(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsValidRecurringDate(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))

	assert.True(t, store.workingDays.IsWorkingDay(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.False(t, store.workingDays.IsWorkingDay(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))) // Wednesday
}

func TestStoreRejectsUnknownWorkingDay(t *testing.T) {
	_, err := NewStore(&Environment{WorkingDays: []string{"moonday"}})
	assert.Error(t, err)
}

func TestEmptyStoreDefaults(t *testing.T) {
	store, err := NewStore(nil)
	assert.NoError(t, err)

	// Saturday is off under the default working week.
	assert.False(t, store.workingDays.IsWorkingDay(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)))

	cal, err := store.MeetingCalendar(7)
	assert.NoError(t, err)
	assert.True(t, cal == nil)
}
