package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestNextRenewal_Monthly(t *testing.T) {
	monthly := Cycle{Value: 1, Unit: UnitMonth}

	tests := []struct {
		name      string
		from      time.Time
		cycle     Cycle
		preserved int
		expected  time.Time
	}{
		{"Jan 31 to leap Feb 29", d(2024, 1, 31), monthly, 31, d(2024, 2, 29)},
		{"leap Feb 29 back to Mar 31", d(2024, 2, 29), monthly, 31, d(2024, 3, 31)},
		{"Mar 31 adjusted to Apr 30", d(2024, 3, 31), monthly, 31, d(2024, 4, 30)},
		{"Apr 30 back to May 31", d(2024, 4, 30), monthly, 31, d(2024, 5, 31)},
		{"Jan 31 to non-leap Feb 28", d(2023, 1, 31), monthly, 31, d(2023, 2, 28)},
		{"Feb 28 back to Mar 30 for day 30", d(2023, 2, 28), monthly, 30, d(2023, 3, 30)},
		{"Jan 30 to Feb 29 for day 30", d(2024, 1, 30), monthly, 30, d(2024, 2, 29)},
		{"Jan 29 to Feb 28 in non-leap year", d(2023, 1, 29), monthly, 29, d(2023, 2, 28)},
		{"mid-month day is kept", d(2024, 1, 15), monthly, 15, d(2024, 2, 15)},
		{"Dec rolls into next year", d(2024, 12, 31), monthly, 31, d(2025, 1, 31)},
		{"quarterly from Nov 30 to Feb 28", d(2024, 11, 30), Cycle{Value: 3, Unit: UnitMonth}, 30, d(2025, 2, 28)},
		{"quarterly from Nov 30 leap Feb 29", d(2023, 11, 30), Cycle{Value: 3, Unit: UnitMonth}, 31, d(2024, 2, 29)},
		{"semi-annual Aug 31 to Feb 28", d(2022, 8, 31), Cycle{Value: 6, Unit: UnitMonth}, 31, d(2023, 2, 28)},
		{"twelve months Jan 31", d(2024, 1, 31), Cycle{Value: 12, Unit: UnitMonth}, 31, d(2025, 1, 31)},
		{"value above user maximum still computes", d(2024, 1, 31), Cycle{Value: 25, Unit: UnitMonth}, 31, d(2026, 2, 28)},
		{"preserved day differs from anchor day", d(2024, 2, 29), monthly, 30, d(2024, 3, 30)},
		{"century non-leap Feb 1900", d(1900, 1, 31), monthly, 31, d(1900, 2, 28)},
		{"century leap Feb 2000", d(2000, 1, 31), monthly, 31, d(2000, 2, 29)},
		{"century non-leap Feb 2100", d(2100, 1, 31), monthly, 31, d(2100, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NextRenewal(tt.from, tt.cycle, tt.preserved)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNextRenewal_MonthlyChainIsNotSticky(t *testing.T) {
	expected := []time.Time{
		d(2024, 2, 29), d(2024, 3, 31), d(2024, 4, 30), d(2024, 5, 31), d(2024, 6, 30),
		d(2024, 7, 31), d(2024, 8, 31), d(2024, 9, 30), d(2024, 10, 31), d(2024, 11, 30),
		d(2024, 12, 31), d(2025, 1, 31), d(2025, 2, 28), d(2025, 3, 31),
	}

	current := d(2024, 1, 31)
	for _, want := range expected {
		next, err := NextRenewal(current, Cycle{Value: 1, Unit: UnitMonth}, 31)
		require.NoError(t, err)
		assert.Equal(t, want, next, "renewal after %s", current.Format("2006-01-02"))
		current = next
	}
}

func TestNextRenewal_Yearly(t *testing.T) {
	yearly := Cycle{Value: 1, Unit: UnitYear}

	tests := []struct {
		name      string
		from      time.Time
		cycle     Cycle
		preserved int
		expected  time.Time
	}{
		{"leap Feb 29 to Feb 28", d(2024, 2, 29), yearly, 29, d(2025, 2, 28)},
		{"Feb 28 stays Feb 28 in non-leap year", d(2025, 2, 28), yearly, 29, d(2026, 2, 28)},
		{"Feb 28 to leap Feb 29", d(2027, 2, 28), yearly, 29, d(2028, 2, 29)},
		{"four years lands on leap day", d(2024, 2, 29), Cycle{Value: 4, Unit: UnitYear}, 29, d(2028, 2, 29)},
		{"2096 plus four is non-leap 2100", d(2096, 2, 29), Cycle{Value: 4, Unit: UnitYear}, 29, d(2100, 2, 28)},
		{"1996 plus four is leap 2000", d(1996, 2, 29), Cycle{Value: 4, Unit: UnitYear}, 29, d(2000, 2, 29)},
		{"Feb 28 subscriber never moves to 29", d(2023, 2, 28), yearly, 28, d(2024, 2, 28)},
		{"Jan 31 yearly", d(2024, 1, 31), yearly, 31, d(2025, 1, 31)},
		{"Apr 30 with preserved 31 clamps", d(2023, 4, 30), yearly, 31, d(2024, 4, 30)},
		{"Feb with preserved 31 clamps to month end", d(2023, 2, 28), yearly, 31, d(2024, 2, 29)},
		{"Feb with preserved 30 in non-leap year", d(2024, 2, 29), yearly, 30, d(2025, 2, 28)},
		{"five years mid-month", d(2024, 6, 15), Cycle{Value: 5, Unit: UnitYear}, 15, d(2029, 6, 15)},
		{"value above user maximum still computes", d(2000, 2, 29), Cycle{Value: 100, Unit: UnitYear}, 29, d(2100, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NextRenewal(tt.from, tt.cycle, tt.preserved)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNextRenewal_YearlyLeapDayChain(t *testing.T) {
	expected := []time.Time{
		d(2025, 2, 28), d(2026, 2, 28), d(2027, 2, 28), d(2028, 2, 29),
		d(2029, 2, 28), d(2030, 2, 28), d(2031, 2, 28), d(2032, 2, 29),
	}

	current := d(2024, 2, 29)
	for _, want := range expected {
		next, err := NextRenewal(current, Cycle{Value: 1, Unit: UnitYear}, 29)
		require.NoError(t, err)
		assert.Equal(t, want, next)
		current = next
	}
}

func TestNextRenewal_Daily(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		value    int
		expected time.Time
	}{
		{"seven days across month end", d(2024, 1, 31), 7, d(2024, 2, 7)},
		{"one day into leap day", d(2024, 2, 28), 1, d(2024, 2, 29)},
		{"one day over non-leap Feb", d(2023, 2, 28), 1, d(2023, 3, 1)},
		{"thirty days", d(2024, 1, 1), 30, d(2024, 1, 31)},
		{"across year end", d(2024, 12, 25), 14, d(2025, 1, 8)},
		{"365 days in a leap year", d(2024, 1, 1), 365, d(2024, 12, 31)},
		{"value above user maximum still computes", d(2024, 1, 1), 400, d(2025, 2, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NextRenewal(tt.from, Cycle{Value: tt.value, Unit: UnitDay}, tt.from.Day())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNextRenewal_DailyIgnoresPreservedDay(t *testing.T) {
	from := d(2024, 1, 31)
	cycle := Cycle{Value: 7, Unit: UnitDay}

	for day := 1; day <= 31; day++ {
		result, err := NextRenewal(from, cycle, day)
		require.NoError(t, err)
		assert.Equal(t, d(2024, 2, 7), result, "preserved day %d", day)
	}
}

func TestNextRenewal_PreservedDayWinsWhenItFits(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		from := d(2023, month, 1)
		for day := 1; day <= 31; day++ {
			result, err := NextRenewal(from, Cycle{Value: 1, Unit: UnitMonth}, day)
			require.NoError(t, err)

			target := from.AddDate(0, 1, 0)
			last := DaysInMonth(target.Year(), int(target.Month()))
			if day <= last {
				assert.Equal(t, day, result.Day())
			} else {
				assert.Equal(t, last, result.Day())
			}
			assert.Equal(t, target.Month(), result.Month())
		}
	}
}

func TestNextRenewal_IgnoresTimeOfDayAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*60*60)
	from := time.Date(2024, 1, 31, 23, 59, 59, 0, loc)

	result, err := NextRenewal(from, Cycle{Value: 1, Unit: UnitMonth}, 31)
	require.NoError(t, err)
	assert.Equal(t, d(2024, 2, 29), result)
	assert.Equal(t, time.UTC, result.Location())
}

func TestNextRenewal_IsPure(t *testing.T) {
	from := d(2024, 1, 31)
	cycle := Cycle{Value: 1, Unit: UnitMonth}

	first, err := NextRenewal(from, cycle, 31)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := NextRenewal(from, cycle, 31)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, d(2024, 1, 31), from)
}

func TestNextRenewal_InvalidPreservedDay(t *testing.T) {
	for _, day := range []int{0, 32, -1, 100} {
		_, err := NextRenewal(d(2024, 1, 15), Cycle{Value: 1, Unit: UnitMonth}, day)
		assert.ErrorIs(t, err, ErrInvalidPreservedDay, "day %d", day)
		assert.EqualError(t, err, "preservedBillingDay must be between 1 and 31")
		assert.True(t, IsInvalidInput(err))
	}

	_, err := NextRenewal(d(2024, 1, 15), Cycle{Value: 7, Unit: UnitDay}, 0)
	assert.ErrorIs(t, err, ErrInvalidPreservedDay, "daily cycles still validate the day")
}

func TestNextRenewal_InvalidUnit(t *testing.T) {
	_, err := NextRenewal(d(2024, 1, 15), Cycle{Value: 1, Unit: "fortnight"}, 15)
	assert.ErrorIs(t, err, ErrInvalidUnit)
	assert.NotErrorIs(t, err, ErrInvalidPreservedDay)
	assert.Contains(t, err.Error(), "fortnight")
	assert.True(t, IsInvalidInput(err))
}

func TestResolvePreservedDay(t *testing.T) {
	stored := 31
	assert.Equal(t, 31, ResolvePreservedDay(&stored, d(2024, 4, 30)))
	assert.Equal(t, 30, ResolvePreservedDay(nil, d(2024, 4, 30)))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2100))
	assert.False(t, IsLeapYear(2023))
}
