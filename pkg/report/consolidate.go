// Package report merges the per-(account, mode) export files of one day
// into a single combined workbook, in either of two shapes: one sheet per
// source file, or a single tagged row-set with provenance columns.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/dealerops/ticketscope/internal/utils"
)

// CombinedFileName is the canonical name of the consolidated workbook for
// a given dd-mm-yyyy date string.
func CombinedFileName(date string) string {
	return fmt.Sprintf("Combined_Report_%s.xlsx", date)
}

// FindArtifacts lists the day's export files in dir, excluding previously
// produced combined/processed workbooks.
func FindArtifacts(dir, date string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".xlsx") && !strings.HasSuffix(strings.ToLower(name), ".xls") {
			continue
		}
		if strings.HasPrefix(name, "Combined_Report_") || strings.HasPrefix(name, "Processed_Combined_Report_") {
			continue
		}
		if !strings.Contains(name, date) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Consolidator merges artifact files. Unreadable or empty source files are
// skipped with a diagnostic, never fatal to the batch.
type Consolidator struct {
	Log *logrus.Logger
}

// CombineSheets writes one sheet per artifact into outPath. Sheet names
// are the source basenames, truncated to Excel's 31-char limit and kept
// unique. Returns the number of sheets written; when zero, no file is
// produced.
func (c *Consolidator) CombineSheets(paths []string, outPath string) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	written := 0

	for _, path := range paths {
		rows, err := readRows(path)
		if err != nil {
			c.Log.Warnf("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		if len(rows) == 0 {
			c.Log.Warnf("Skipped empty file: %s", filepath.Base(path))
			continue
		}

		sheet := uniqueSheetName(filepath.Base(path), used)
		if _, err := f.NewSheet(sheet); err != nil {
			c.Log.Warnf("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		if err := writeRows(f, sheet, rows); err != nil {
			return written, err
		}
		written++
		c.Log.Infof("Added sheet %q (%d rows)", sheet, len(rows))
	}

	if written == 0 {
		return 0, nil
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return written, err
	}
	if err := f.SaveAs(outPath); err != nil {
		return written, fmt.Errorf("saving %s: %w", outPath, err)
	}
	return written, nil
}

// provenanceHeader are the tag columns appended in concat mode.
var provenanceHeader = []string{"Dealer", "SupportMode", "TicketStatus", "ProcessDate"}

// CombineTagged concatenates all artifacts into one sheet, each row tagged
// with provenance parsed from the canonical filename, plus a Summary sheet
// counting rows per (dealer, mode, status). Returns the number of data
// rows written.
func (c *Consolidator) CombineTagged(paths []string, processDate, outPath string) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Combined"
	var header []string
	headerIdx := make(map[string]int)
	var outRows [][]string
	counts := make(map[string]int)
	filesRead := 0

	for _, path := range paths {
		rows, err := readRows(path)
		if err != nil {
			c.Log.Warnf("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		if len(rows) < 2 {
			c.Log.Warnf("Skipped empty file: %s", filepath.Base(path))
			continue
		}

		prov, tagged := ParseArtifactName(path)
		if !tagged {
			c.Log.Warnf("Non-canonical artifact name %s, rows kept untagged", filepath.Base(path))
		}

		// Column union across files, first-seen order.
		for _, col := range rows[0] {
			if _, ok := headerIdx[col]; !ok {
				headerIdx[col] = len(header)
				header = append(header, col)
			}
		}

		for _, row := range rows[1:] {
			mapped := make([]string, len(header))
			for i, cell := range row {
				if i < len(rows[0]) {
					mapped[headerIdx[rows[0][i]]] = cell
				}
			}
			mapped = append(mapped, prov.Dealer, prov.Mode, prov.TicketStatus, processDate)
			outRows = append(outRows, mapped)
			counts[prov.Dealer+"\x00"+prov.Mode+"\x00"+prov.TicketStatus]++
		}
		filesRead++
	}

	if len(outRows) == 0 {
		return 0, nil
	}

	if _, err := f.NewSheet(sheet); err != nil {
		return 0, err
	}

	// Rows were mapped against a growing header; right-pad the early ones.
	full := append(append([]string{}, header...), provenanceHeader...)
	grid := [][]string{full}
	for _, row := range outRows {
		tags := row[len(row)-len(provenanceHeader):]
		data := row[:len(row)-len(provenanceHeader)]
		padded := make([]string, len(header))
		copy(padded, data)
		grid = append(grid, append(padded, tags...))
	}
	if err := writeRows(f, sheet, grid); err != nil {
		return 0, err
	}

	if err := c.writeSummary(f, counts); err != nil {
		return 0, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return 0, err
	}
	if err := f.SaveAs(outPath); err != nil {
		return 0, fmt.Errorf("saving %s: %w", outPath, err)
	}

	c.Log.Infof("Combined %d files, %d records", filesRead, len(outRows))
	return len(outRows), nil
}

func (c *Consolidator) writeSummary(f *excelize.File, counts map[string]int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	grid := [][]string{{"Dealer", "SupportMode", "TicketStatus", "Record_Count"}}
	for _, k := range keys {
		parts := strings.SplitN(k, "\x00", 3)
		grid = append(grid, []string{parts[0], parts[1], parts[2], fmt.Sprintf("%d", counts[k])})
	}
	return writeRows(f, sheet, grid)
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
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

// uniqueSheetName sanitizes a source filename into a sheet name that fits
// Excel's 31-char limit and has not been used yet in this workbook.
// Truncation must stay stable per distinct source so reruns are idempotent.
func uniqueSheetName(filename string, used map[string]bool) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("[", "", "]", "", "*", "", "?", "", "/", "_", "\\", "_", ":", "_").Replace(base)
	name := utils.TruncateSheetName(base)

	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		name = utils.TruncateSheetName(base[:min(len(base), 31-len(suffix))]) + suffix
	}
	used[name] = true
	return name
}
