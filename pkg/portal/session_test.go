package portal

import (
	"strings"
	"testing"
	"time"
)

func TestArtifactFileName(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)

	got := ArtifactFileName("TTBL Faridabad", date, EliteSupport)
	want := "TTBL_Faridabad_12-06-2025_E_ALL_TICKET_STATUS.xlsx"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}

	got = ArtifactFileName("Dealer/North", date, StandardSupport)
	if strings.Contains(got, "/") {
		t.Fatalf("path separator leaked into filename: %q", got)
	}
	if !strings.Contains(got, "_S_") {
		t.Fatalf("standard mode suffix missing: %q", got)
	}
}

func TestModesOrderElitesFirst(t *testing.T) {
	modes := Modes()
	if len(modes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(modes))
	}
	if modes[0] != EliteSupport || modes[1] != StandardSupport {
		t.Fatalf("wrong order: %v", modes)
	}
}

func TestJSLocateQuotesQueries(t *testing.T) {
	got := jsLocate(css(`input[placeholder="Employee Id"]`))
	if !strings.Contains(got, `querySelector`) {
		t.Fatalf("css locator should use querySelector: %s", got)
	}
	if !strings.Contains(got, `\"Employee Id\"`) {
		t.Fatalf("inner quotes must be escaped: %s", got)
	}

	got = jsLocate(xpath(`//button[text()='Excel']`))
	if !strings.Contains(got, "document.evaluate") {
		t.Fatalf("xpath locator should use document.evaluate: %s", got)
	}
}
