package metrics

import (
	"time"
)

const (
	confirming    = "Conf."
	nonConforming = "NC"
)

// conformity classifies a duration against an SLA threshold in hours.
// Thresholds are inclusive. An unparseable duration is never conforming.
func conformity(hours float64, limit float64, valid bool) string {
	if valid && hours <= limit {
		return confirming
	}
	return nonConforming
}

// IsHoliday reports whether a date is a Sunday or appears in the supplied
// holiday set (keys in "2006-01-02" form). The national-holiday list is
// exact calendar dates, re-supplied yearly, not recurring rules.
func IsHoliday(t time.Time, holidays map[string]struct{}) bool {
	if t.Weekday() == time.Sunday {
		return true
	}
	_, ok := holidays[t.Format("2006-01-02")]
	return ok
}

// DayNight buckets a log hour: [6,18) is Day, the rest Night.
func DayNight(t time.Time) string {
	if h := t.Hour(); h >= 6 && h < 18 {
		return "Day"
	}
	return "Night"
}

// Quarter maps a calendar month onto the April-start fiscal year.
func Quarter(m time.Month) string {
	switch m {
	case time.April, time.May, time.June:
		return "Q1"
	case time.July, time.August, time.September:
		return "Q2"
	case time.October, time.November, time.December:
		return "Q3"
	default:
		return "Q4"
	}
}

// MonthLabel renders a log date as "FullMonthName YY".
func MonthLabel(t time.Time) string {
	return t.Format("January 06")
}
