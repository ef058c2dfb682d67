// Package calendar provides the read-only temporal snapshots consulted when
// validating loan dates: office holidays, the institution's working-day
// pattern, and the meeting recurrence of group/JLG calendars. All predicates
// are pure; the caller supplies the snapshots.
package calendar

import (
	"time"

	"github.com/microfin/loanval/domain"
)

// Holiday is an office holiday window, inclusive on both ends.
type Holiday struct {
	Name     string
	FromDate time.Time
	ToDate   time.Time
}

// Contains reports whether the date falls in the holiday window.
func (h Holiday) Contains(date time.Time) bool {
	return !date.Before(h.FromDate) && !date.After(h.ToDate)
}

// IsHoliday reports whether the date falls on any of the holidays.
func IsHoliday(date time.Time, holidays []Holiday) bool {
	for _, h := range holidays {
		if h.Contains(date) {
			return true
		}
	}
	return false
}

// WorkingDays is the institution-wide working-day pattern.
type WorkingDays struct {
	Days map[time.Weekday]bool
}

// DefaultWorkingDays is the Monday-to-Friday pattern used when no explicit
// configuration is supplied.
func DefaultWorkingDays() *WorkingDays {
	return &WorkingDays{Days: map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}}
}

// IsWorkingDay reports whether transactions may happen on the date. A nil
// receiver permits every day.
func (w *WorkingDays) IsWorkingDay(date time.Time) bool {
	if w == nil || len(w.Days) == 0 {
		return true
	}
	return w.Days[date.Weekday()]
}

// MeetingCalendar is the recurrence of a group meeting that JLG and group
// loans may sync their disbursements to.
type MeetingCalendar struct {
	StartDate time.Time
	Frequency domain.PeriodFrequencyType
	// Interval is the recurrence step in Frequency units; zero means one.
	Interval int
}

// IsValidRecurringDate reports whether the date falls on a meeting occurrence.
func (c *MeetingCalendar) IsValidRecurringDate(date time.Time) bool {
	if c == nil {
		return true
	}
	if date.Before(c.StartDate) {
		return false
	}
	interval := c.Interval
	if interval <= 0 {
		interval = 1
	}

	switch c.Frequency {
	case domain.FrequencyDays:
		days := daysBetween(c.StartDate, date)
		return days%interval == 0
	case domain.FrequencyWeeks:
		days := daysBetween(c.StartDate, date)
		return days%7 == 0 && (days/7)%interval == 0
	case domain.FrequencyMonths:
		if date.Day() != c.StartDate.Day() {
			return false
		}
		months := monthsBetween(c.StartDate, date)
		return months%interval == 0
	case domain.FrequencyYears:
		if date.Day() != c.StartDate.Day() || date.Month() != c.StartDate.Month() {
			return false
		}
		years := date.Year() - c.StartDate.Year()
		return years%interval == 0
	default:
		return false
	}
}

func daysBetween(from, to time.Time) int {
	from = truncate(from)
	to = truncate(to)
	return int(to.Sub(from).Hours() / 24)
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
