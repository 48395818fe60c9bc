package billing

import (
	"errors"
	"fmt"
	"strings"
)

// Unit is the period a billing cycle is counted in.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Maximum cycle values accepted from users. The calculator itself does not enforce them.
const (
	MaxDays   = 365
	MaxMonths = 12
	MaxYears  = 5
)

// ErrInvalidCycle is returned by Cycle.Validate and Advance.
var ErrInvalidCycle = errors.New("invalid billing cycle")

// Cycle is a billing period such as "every 3 months".
type Cycle struct {
	Value int  `json:"value"`
	Unit  Unit `json:"unit"`
}

// ParseUnit accepts day/month/year in any case, singular or plural.
func ParseUnit(s string) (Unit, error) {
	u := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	switch Unit(u) {
	case UnitDay, UnitMonth, UnitYear:
		return Unit(u), nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidUnit, s)
}

// Validate applies the per-unit range limits used by the API layer.
func (c Cycle) Validate() error {
	if c.Value < 1 {
		return fmt.Errorf("%w: value must be at least 1", ErrInvalidCycle)
	}

	var limit int
	switch c.Unit {
	case UnitDay:
		limit = MaxDays
	case UnitMonth:
		limit = MaxMonths
	case UnitYear:
		limit = MaxYears
	default:
		return fmt.Errorf("%w: %s", ErrInvalidUnit, c.Unit)
	}

	if c.Value > limit {
		return fmt.Errorf("%w: %d %s exceeds maximum of %d", ErrInvalidCycle, c.Value, c.Unit, limit)
	}
	return nil
}

func (c Cycle) String() string {
	if c.Value == 1 {
		return fmt.Sprintf("1 %s", c.Unit)
	}
	return fmt.Sprintf("%d %ss", c.Value, c.Unit)
}
