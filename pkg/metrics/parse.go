package metrics

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the portal's day-month-year date text form.
	DateLayout = "02-01-2006"
	// TimestampLayout is the combined date+time text form.
	TimestampLayout = "02-01-2006 15:04:05"
)

// ParseDate parses a portal date cell.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseTimestamp combines a date cell and a time cell into one timestamp.
// This is the single place raw portal text becomes a time; every caller
// treats an error as "all derived fields absent" rather than re-deriving
// fallback behavior per call site.
func ParseTimestamp(datePart, timePart string) (time.Time, error) {
	combined := strings.TrimSpace(datePart) + " " + strings.TrimSpace(timePart)
	return time.Parse(TimestampLayout, combined)
}

// FormatHoursMinutes renders a duration as zero-padded "HH:MM". Hours run
// past 24 with no day rollover, matching how the SLA sheets are read.
func FormatHoursMinutes(d time.Duration) string {
	sec := int64(d.Seconds())
	sign := ""
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	return fmt.Sprintf("%s%02d:%02d", sign, sec/3600, (sec%3600)/60)
}
