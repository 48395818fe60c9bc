// Package billing computes subscription renewal dates.
//
// Every subscription remembers the day-of-month it was first billed on (the preserved
// billing day). Monthly and yearly renewals land on that day whenever the target month
// has it and fall back to the month's last day otherwise. The fallback only affects the
// single date returned, so a subscriber billed on the 31st goes Jan 31, Feb 29, Mar 31,
// Apr 30, May 31.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/dromara/carbon/v2"
)

var (
	ErrInvalidPreservedDay = errors.New("preservedBillingDay must be between 1 and 31")
	ErrInvalidUnit         = errors.New("invalid billing cycle unit")
)

// IsInvalidInput reports whether err was caused by bad calculator input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidPreservedDay) || errors.Is(err, ErrInvalidUnit)
}

// NextRenewal returns the renewal date that follows from for the given cycle.
//
// Only the calendar date of from is used; the result is midnight UTC. preservedDay
// must be within 1..31 even for daily cycles, where it is otherwise ignored.
func NextRenewal(from time.Time, cycle Cycle, preservedDay int) (time.Time, error) {
	if preservedDay < 1 || preservedDay > 31 {
		return time.Time{}, ErrInvalidPreservedDay
	}

	year, month, day := from.Date()

	switch cycle.Unit {
	case UnitDay:
		return date(year, int(month), day).AddDays(cycle.Value).StdTime(), nil

	case UnitMonth:
		// Day 1 never overflows into the following month.
		target := date(year, int(month), 1).AddMonths(cycle.Value)
		return onPreservedDay(target, preservedDay), nil

	case UnitYear:
		target := date(year, int(month), 1).AddYears(cycle.Value)
		if target.Month() == int(time.February) && preservedDay == 29 {
			if target.IsLeapYear() {
				return date(target.Year(), target.Month(), 29).StdTime(), nil
			}
			return date(target.Year(), target.Month(), 28).StdTime(), nil
		}
		return onPreservedDay(target, preservedDay), nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidUnit, cycle.Unit)
}

// onPreservedDay places preservedDay in the month of target, clamped to its last day.
func onPreservedDay(target *carbon.Carbon, preservedDay int) time.Time {
	day := preservedDay
	if last := target.DaysInMonth(); day > last {
		day = last
	}
	return date(target.Year(), target.Month(), day).StdTime()
}

func date(year, month, day int) *carbon.Carbon {
	return carbon.CreateFromDateTime(year, month, day, 0, 0, 0, carbon.UTC)
}

// DateOf strips the time of day and location from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the length of the given month, leap-year aware.
func DaysInMonth(year, month int) int {
	return date(year, month, 1).DaysInMonth()
}

// IsLeapYear reports whether year has a Feb 29.
func IsLeapYear(year int) bool {
	return date(year, 1, 1).IsLeapYear()
}

// ResolvePreservedDay returns the stored preserved billing day, or the anchor's
// day-of-month for records created before the day was stored.
func ResolvePreservedDay(stored *int, anchor time.Time) int {
	if stored != nil {
		return *stored
	}
	return anchor.Day()
}
