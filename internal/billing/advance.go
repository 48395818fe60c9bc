package billing

import (
	"fmt"
	"time"
)

// Step is the outcome of rolling a renewal date forward past a point in time.
type Step struct {
	// Last is the most recent renewal on or before now. Zero when Periods is 0.
	Last time.Time
	// Next is the first renewal strictly after now.
	Next time.Time
	// Periods counts how many renewals were passed.
	Periods int
}

// Advance applies NextRenewal starting at from until the result falls after now's
// calendar date. Each step starts from the previous result with the same preserved day.
//
// from itself counts as a renewal when it is on or before now. Pass a date already
// known to be a renewal (the current next renewal) or the first billing date.
func Advance(from time.Time, cycle Cycle, preservedDay int, now time.Time) (Step, error) {
	if cycle.Value < 1 {
		return Step{}, fmt.Errorf("%w: value must be at least 1", ErrInvalidCycle)
	}

	today := DateOf(now)
	current := DateOf(from)
	var step Step

	for !current.After(today) {
		next, err := NextRenewal(current, cycle, preservedDay)
		if err != nil {
			return Step{}, err
		}
		step.Last = current
		step.Periods++
		current = next
	}

	step.Next = current
	return step, nil
}
