package handlers

import (
	"fmt"
	"time"

	"github.com/dromara/carbon/v2"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD string as UTC midnight.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing date, expected YYYY-MM-DD")
	}
	c := carbon.ParseByLayout(value, dateLayout, carbon.UTC)
	if c == nil || c.Error != nil || c.IsInvalid() {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return c.StdTime(), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
