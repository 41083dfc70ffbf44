package report

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Provenance is what a canonical artifact filename encodes:
// {dealer}_{dd-mm-yyyy}_{S|E}_ALL_TICKET_STATUS.xlsx
type Provenance struct {
	Dealer       string
	Date         string
	Mode         string
	TicketStatus string
}

var datePart = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// ParseArtifactName recovers provenance from a canonical artifact name.
// ok is false for files that kept their original portal name (rename
// failures); those still get consolidated, just without tags.
func ParseArtifactName(filename string) (Provenance, bool) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := strings.Split(base, "_")

	dateIdx := -1
	for i, p := range parts {
		if datePart.MatchString(p) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 1 || dateIdx+1 >= len(parts) {
		return Provenance{}, false
	}

	mode := "Standard Support"
	if parts[dateIdx+1] == "E" {
		mode = "Elite Support"
	} else if parts[dateIdx+1] != "S" {
		return Provenance{}, false
	}

	status := strings.Join(parts[dateIdx+2:], " ")
	if status == "" {
		status = "ALL TICKET STATUS"
	}

	return Provenance{
		Dealer:       strings.Join(parts[:dateIdx], " "),
		Date:         parts[dateIdx],
		Mode:         mode,
		TicketStatus: status,
	}, true
}
