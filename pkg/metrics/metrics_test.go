package metrics

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testEngine() *Engine {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEngine([]string{"2025-01-26", "2025-08-15"}, log)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("01-06-2025", "10:00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("want %v, got %v", want, ts)
	}

	if _, err := ParseTimestamp("garbage", "10:00:00"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := ParseTimestamp("", ""); err == nil {
		t.Fatal("expected parse error for empty cells")
	}
}

func TestFormatHoursMinutes(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "01:30"},
		{10 * time.Hour, "10:00"},
		{26*time.Hour + 5*time.Minute, "26:05"}, // no day rollover
		{0, "00:00"},
		{45 * time.Second, "00:00"},
	}
	for _, c := range cases {
		if got := FormatHoursMinutes(c.d); got != c.want {
			t.Errorf("FormatHoursMinutes(%v): want %q, got %q", c.d, c.want, got)
		}
	}
}

func TestQuarterIsTotalOverAllMonths(t *testing.T) {
	want := map[time.Month]string{
		time.January: "Q4", time.February: "Q4", time.March: "Q4",
		time.April: "Q1", time.May: "Q1", time.June: "Q1",
		time.July: "Q2", time.August: "Q2", time.September: "Q2",
		time.October: "Q3", time.November: "Q3", time.December: "Q3",
	}
	for m := time.January; m <= time.December; m++ {
		got := Quarter(m)
		if got != want[m] {
			t.Errorf("Quarter(%v): want %s, got %s", m, want[m], got)
		}
	}
}

func TestIsHoliday(t *testing.T) {
	holidays := testEngine().Holidays

	sunday := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !IsHoliday(sunday, holidays) {
		t.Error("every Sunday is a holiday")
	}

	listed := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC) // a Friday
	if !IsHoliday(listed, holidays) {
		t.Error("listed dates are holidays")
	}

	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if IsHoliday(monday, holidays) {
		t.Error("ordinary weekday is not a holiday")
	}
}

func TestDayNight(t *testing.T) {
	if DayNight(time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)) != "Day" {
		t.Error("06:00 is Day")
	}
	if DayNight(time.Date(2025, 6, 1, 17, 59, 0, 0, time.UTC)) != "Day" {
		t.Error("17:59 is Day")
	}
	if DayNight(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)) != "Night" {
		t.Error("18:00 is Night")
	}
	if DayNight(time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)) != "Night" {
		t.Error("02:00 is Night")
	}
}

func sheetWith(rows ...[]string) [][]string {
	header := []string{
		"Ticket Number", "Call Log Date", "Call Log Time",
		"Actual Response/Reach Date as per Dealer", "Actual Response/Reach Time as per Dealer",
		"Actual Restoration Date Dealer", "Actual Restoration Time Dealer",
		"Restoration Type",
	}
	return append([][]string{header}, rows...)
}

func findCol(t *testing.T, header []string, name string) int {
	t.Helper()
	for i, h := range header {
		if h == name {
			return i
		}
	}
	t.Fatalf("column %q missing from %v", name, header)
	return -1
}

func TestProcessSheetDerivesScenario(t *testing.T) {
	// log 10:00, response 11:30, restored 20:00 on Sunday 01-06-2025.
	rows := testEngine().ProcessSheet(sheetWith(
		[]string{"T1", "01-06-2025", "10:00:00", "01-06-2025", "11:30:00", "01-06-2025", "20:00:00", "Restored By Support"},
	))

	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	header, row := rows[0], rows[1]

	check := func(col, want string) {
		t.Helper()
		if got := row[findCol(t, header, col)]; got != want {
			t.Errorf("%s: want %q, got %q", col, want, got)
		}
	}

	check("Response Time", "01:30")
	check("Response Confirmity (2 Hrs)", "Conf.")
	check("Response Confirmity (4 Hrs)", "Conf.")
	check("Restoration Time", "10:00")
	check("Restore Confirmity", "Conf.") // 10h is inside the inclusive 12h threshold
	check("Day/Night", "Day")
	check("Quarter", "Q1")
	check("Month", "June 25")
	check("Holiday Count", "true") // 01-06-2025 is a Sunday
	check("Date Time (TTBL)", "01-06-2025 10:00:00")
}

func TestProcessSheetConformityMonotone(t *testing.T) {
	// 3h response: NC on the 2h flag must still be Conf. on the 4h flag.
	rows := testEngine().ProcessSheet(sheetWith(
		[]string{"T1", "02-06-2025", "08:00:00", "02-06-2025", "11:00:00", "02-06-2025", "21:00:00", "Restored By Support"},
	))
	header, row := rows[0], rows[1]

	twoHr := row[findCol(t, header, "Response Confirmity (2 Hrs)")]
	fourHr := row[findCol(t, header, "Response Confirmity (4 Hrs)")]
	if twoHr != "NC" || fourHr != "Conf." {
		t.Fatalf("3h response: want NC/Conf., got %s/%s", twoHr, fourHr)
	}
	restore := row[findCol(t, header, "Restore Confirmity")]
	if restore != "NC" {
		t.Fatalf("13h restoration: want NC, got %s", restore)
	}
}

func TestProcessSheetExcludesOtherRestorationTypes(t *testing.T) {
	rows := testEngine().ProcessSheet(sheetWith(
		[]string{"T1", "01-06-2025", "10:00:00", "01-06-2025", "11:30:00", "01-06-2025", "20:00:00", "Restored By Customer"},
		[]string{"T2", "01-06-2025", "10:00:00", "01-06-2025", "11:30:00", "01-06-2025", "20:00:00", "Restored By Support"},
	))

	if len(rows) != 2 {
		t.Fatalf("expected only the support-restored row, got %d data rows", len(rows)-1)
	}
	if rows[1][0] != "T2" {
		t.Fatalf("wrong row survived the filter: %v", rows[1])
	}
}

func TestProcessSheetEmptyFilterSkipsDerivation(t *testing.T) {
	rows := testEngine().ProcessSheet(sheetWith(
		[]string{"T1", "01-06-2025", "10:00:00", "01-06-2025", "11:30:00", "01-06-2025", "20:00:00", "Towed To Workshop"},
	))

	if len(rows) != 1 {
		t.Fatalf("expected bare header frame, got %d rows", len(rows))
	}
	for _, col := range rows[0] {
		if col == "Response Time" {
			t.Fatal("derived columns must not appear for an empty filtered set")
		}
	}
}

func TestProcessSheetUnparseableTimestampsDegradeGracefully(t *testing.T) {
	rows := testEngine().ProcessSheet(sheetWith(
		[]string{"T1", "bad-date", "10:00:00", "01-06-2025", "11:30:00", "", "", "Restored By Support"},
	))
	header, row := rows[0], rows[1]

	for _, col := range []string{"Response Time", "Restoration Time", "Date Time (TTBL)", "Day/Night", "Quarter", "Month"} {
		if got := row[findCol(t, header, col)]; got != "" {
			t.Errorf("%s: want empty for unparseable input, got %q", col, got)
		}
	}
	for _, col := range []string{"Response Confirmity (2 Hrs)", "Response Confirmity (4 Hrs)", "Restore Confirmity"} {
		if got := row[findCol(t, header, col)]; got != "NC" {
			t.Errorf("%s: unparseable rows are never conforming, got %q", col, got)
		}
	}
	if got := row[findCol(t, header, "Holiday Count")]; got != "false" {
		t.Errorf("Holiday Count: want false for unparseable input, got %q", got)
	}
}

func TestProcessSheetOmitsMissingColumns(t *testing.T) {
	rows := testEngine().ProcessSheet([][]string{
		{"Ticket Number", "Call Log Date", "Call Log Time", "Restoration Type", "Unlisted Column"},
		{"T1", "01-06-2025", "10:00:00", "Restored By Support", "x"},
	})
	header := rows[0]

	for _, col := range header {
		if col == "Unlisted Column" {
			t.Fatal("columns outside the keep-list must be dropped")
		}
		if col == "Company Name" {
			t.Fatal("absent source columns must be omitted, not invented")
		}
	}
	// Derivation still happens off the columns that do exist.
	if got := rows[1][findCol(t, header, "Quarter")]; got != "Q1" {
		t.Fatalf("Quarter: want Q1, got %q", got)
	}
}
