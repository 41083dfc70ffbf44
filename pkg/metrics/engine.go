// Package metrics turns the raw ticket exports of the combined workbook
// into SLA classifications: response and restoration durations measured
// against the contractual 2h/4h/12h thresholds, plus holiday, day/night,
// and fiscal-quarter tagging.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Source column names as the portal exports them.
const (
	colLogDate         = "Call Log Date"
	colLogTime         = "Call Log Time"
	colResponseDate    = "Actual Response/Reach Date as per Dealer"
	colResponseTime    = "Actual Response/Reach Time as per Dealer"
	colRestorationDate = "Actual Restoration Date Dealer"
	colRestorationTime = "Actual Restoration Time Dealer"
	colRestorationType = "Restoration Type"
)

// restoredBySupport is the only restoration type in scope for SLA review.
const restoredBySupport = "Restored By Support"

// DefaultColumns is the keep-list applied to every sheet; columns a sheet
// does not have are simply omitted, never an error.
var DefaultColumns = []string{
	"Ticket Number", colLogDate, colLogTime,
	colResponseDate, colResponseTime,
	"Response/Reach Gap", colRestorationDate, colRestorationTime,
	"Total Restoration Time", "Company Name", "Registration Number", "Chassis Number",
	"Customer Type", colRestorationType, "Estimated Response/Reach Time",
}

// derivedHeader lists the computed columns, in output order.
var derivedHeader = []string{
	"Month",
	"Date Time (TTBL)",
	"Date Time (Dealer)",
	"Restored as per Dealer",
	"Response Time",
	"Restoration Time",
	"Response Confirmity (2 Hrs)",
	"Response Confirmity (4 Hrs)",
	"Restore Confirmity",
	"Holiday Count",
	"Day/Night",
	"Quarter",
}

// ProcessedFileName is the canonical output name for a dd-mm-yyyy date.
func ProcessedFileName(date string) string {
	return fmt.Sprintf("Processed_Combined_Report_%s.xlsx", date)
}

// Engine computes the derived SLA columns. Holidays hold exact dates in
// "2006-01-02" form.
type Engine struct {
	Holidays map[string]struct{}
	Columns  []string
	Log      *logrus.Logger
}

func NewEngine(holidays []string, log *logrus.Logger) *Engine {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return &Engine{Holidays: set, Columns: DefaultColumns, Log: log}
}

// ProcessWorkbook derives SLA metrics for every sheet of the combined
// workbook and writes the processed workbook to outPath.
func (e *Engine) ProcessWorkbook(inPath, outPath string) error {
	in, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer in.Close()

	out := excelize.NewFile()
	defer out.Close()

	for i, sheet := range in.GetSheetList() {
		rows, err := in.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("reading sheet %q: %w", sheet, err)
		}

		processed := e.ProcessSheet(rows)

		if i == 0 {
			if err := out.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := out.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeGrid(out, sheet, processed); err != nil {
			return err
		}
		e.Log.Infof("Processed sheet %q: %d rows in scope", sheet, max(0, len(processed)-1))
	}

	if err := autoFit(out); err != nil {
		return err
	}
	if err := out.SaveAs(outPath); err != nil {
		return fmt.Errorf("saving %s: %w", outPath, err)
	}
	return nil
}

// ProcessSheet keeps the configured columns, filters to support-restored
// tickets, and appends the derived columns. An empty filtered set comes
// back as the bare kept-column frame with no derived computation.
func (e *Engine) ProcessSheet(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}

	srcIdx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		srcIdx[name] = i
	}

	var kept []string
	for _, name := range e.Columns {
		if _, ok := srcIdx[name]; ok {
			kept = append(kept, name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := srcIdx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var filtered [][]string
	for _, row := range rows[1:] {
		if cell(row, colRestorationType) == restoredBySupport {
			filtered = append(filtered, row)
		}
	}

	if len(filtered) == 0 {
		return [][]string{kept}
	}

	out := [][]string{append(append([]string{}, kept...), derivedHeader...)}
	for _, row := range filtered {
		outRow := make([]string, 0, len(kept)+len(derivedHeader))
		for _, name := range kept {
			outRow = append(outRow, cell(row, name))
		}
		outRow = append(outRow, e.deriveRow(
			cell(row, colLogDate), cell(row, colLogTime),
			cell(row, colResponseDate), cell(row, colResponseTime),
			cell(row, colRestorationDate), cell(row, colRestorationTime),
		)...)
		out = append(out, outRow)
	}
	return out
}

// deriveRow computes the twelve derived cells for one ticket. Any parse
// failure degrades the affected cells to empty values; it never aborts.
func (e *Engine) deriveRow(logDate, logTime, respDate, respTime, restDate, restTime string) []string {
	logTS, logErr := ParseTimestamp(logDate, logTime)
	respTS, respErr := ParseTimestamp(respDate, respTime)
	restTS, restErr := ParseTimestamp(restDate, restTime)

	month := ""
	if d, err := ParseDate(logDate); err == nil {
		month = MonthLabel(d)
	}

	fmtTS := func(ok bool, v interface{ Format(string) string }) string {
		if !ok {
			return ""
		}
		return v.Format(TimestampLayout)
	}

	respValid := logErr == nil && respErr == nil
	restValid := logErr == nil && restErr == nil

	responseTime, restorationTime := "", ""
	var respHours, restHours float64
	if respValid {
		d := respTS.Sub(logTS)
		responseTime = FormatHoursMinutes(d)
		respHours = d.Hours()
	}
	if restValid {
		d := restTS.Sub(logTS)
		restorationTime = FormatHoursMinutes(d)
		restHours = d.Hours()
	}

	holiday := "false"
	dayNight := ""
	quarter := ""
	if logErr == nil {
		holiday = strconv.FormatBool(IsHoliday(logTS, e.Holidays))
		dayNight = DayNight(logTS)
		quarter = Quarter(logTS.Month())
	}

	return []string{
		month,
		fmtTS(logErr == nil, logTS),
		fmtTS(respErr == nil, respTS),
		fmtTS(restErr == nil, restTS),
		responseTime,
		restorationTime,
		conformity(respHours, 2, respValid),
		conformity(respHours, 4, respValid),
		conformity(restHours, 12, restValid),
		holiday,
		dayNight,
		quarter,
	}
}

func writeGrid(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

// autoFit widens every column to its longest cell and wraps cell text,
// matching how the report is read by hand afterwards.
func autoFit(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return err
		}

		maxCols := 0
		widths := make(map[int]int)
		for _, row := range rows {
			if len(row) > maxCols {
				maxCols = len(row)
			}
			for i, v := range row {
				if len(v) > widths[i] {
					widths[i] = len(v)
				}
			}
		}
		if maxCols == 0 {
			continue
		}

		for i := 0; i < maxCols; i++ {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, col, col, float64(widths[i]+2)); err != nil {
				return err
			}
		}

		last, err := excelize.CoordinatesToCellName(maxCols, max(1, len(rows)))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
	}
	return nil
}
