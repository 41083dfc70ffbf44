package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/dealerops/ticketscope/internal/utils"
)

var (
	ErrLoginFailed  = errors.New("login failed")
	ErrFilterFailed = errors.New("cascading filter failed")
	ErrSubmitFailed = errors.New("query submit failed")
	ErrNoExport     = errors.New("export button not found")
)

// SessionConfig carries everything a workflow run needs besides the
// account itself.
type SessionConfig struct {
	URL          string
	DownloadDir  string
	Locators     Locators
	TargetDate   time.Time
	StageTimeout time.Duration
}

// Session drives the portal workflow for a single account inside one
// browser instance: login, mode switch, filters, submit, export, download.
// The portal holds login and support-mode state server-side, so one
// session must never be shared across accounts.
type Session struct {
	cfg  SessionConfig
	acct Account
	ctx  context.Context
	res  *Resolver
	log  *logrus.Logger
}

// NewSession wraps an already started browser context (see NewBrowser).
func NewSession(browserCtx context.Context, cfg SessionConfig, acct Account, log *logrus.Logger) *Session {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 10 * time.Second
	}
	return &Session{
		cfg:  cfg,
		acct: acct,
		ctx:  browserCtx,
		res:  NewResolver(log),
		log:  log,
	}
}

// Login navigates to the portal, fills the credentials through fallback
// locators and confirms success via a secondary signal (URL pattern, the
// post-login heading, or a known dashboard control).
func (s *Session) Login() error {
	s.log.Infof("Logging in as %s", s.acct.ID)

	if err := s.run(20*time.Second, chromedp.Navigate(s.cfg.URL), chromedp.Sleep(2*time.Second)); err != nil {
		return fmt.Errorf("%w: navigation: %v", ErrLoginFailed, err)
	}

	userField, ok := s.res.Find(s.ctx, s.cfg.Locators.UserField, s.cfg.StageTimeout, false)
	if !ok {
		return fmt.Errorf("%w: username field not found", ErrLoginFailed)
	}
	passField, ok := s.res.Find(s.ctx, s.cfg.Locators.PassField, s.cfg.StageTimeout, false)
	if !ok {
		return fmt.Errorf("%w: password field not found", ErrLoginFailed)
	}

	if err := s.setInput(userField, s.acct.ID); err != nil {
		return fmt.Errorf("%w: filling username: %v", ErrLoginFailed, err)
	}
	if err := s.setInput(passField, s.acct.Password); err != nil {
		return fmt.Errorf("%w: filling password: %v", ErrLoginFailed, err)
	}

	submit, ok := s.res.Find(s.ctx, s.cfg.Locators.LoginSubmit, s.cfg.StageTimeout, false)
	if !ok {
		return fmt.Errorf("%w: submit button not found", ErrLoginFailed)
	}
	if err := s.click(submit); err != nil {
		return fmt.Errorf("%w: clicking submit: %v", ErrLoginFailed, err)
	}

	err := PollUntil(s.ctx, time.Second, 20*time.Second, func(ctx context.Context) (bool, error) {
		return s.loginConfirmed(), nil
	})
	if err != nil {
		return fmt.Errorf("%w: no post-login signal for %s", ErrLoginFailed, s.acct.ID)
	}

	s.log.Infof("Login confirmed for %s", s.acct.ID)
	return nil
}

func (s *Session) loginConfirmed() bool {
	var location string
	if err := s.run(3*time.Second, chromedp.Location(&location)); err == nil {
		lower := strings.ToLower(location)
		if strings.Contains(lower, "consolidated-report") || strings.Contains(lower, "dashboard") {
			return true
		}
	}
	_, ok := s.res.Find(s.ctx, s.cfg.Locators.PostLogin, 3*time.Second, false)
	return ok
}

// Extract runs the post-login workflow for one support mode and returns
// the produced artifact. An empty result set yields Artifact.Empty with no
// file; that is a normal outcome, not an error.
func (s *Session) Extract(mode SupportMode) (*Artifact, error) {
	s.log.Infof("Processing %s - %s", s.acct.Dealer, mode.Name)

	// Mode state may already be correct, so a failed switch is only a
	// warning and the run continues.
	if err := s.switchMode(mode); err != nil {
		s.log.Warnf("Could not switch to %s, continuing anyway: %v", mode.Name, err)
	}

	if err := s.setFilters(); err != nil {
		return nil, err
	}

	if err := s.submitQuery(); err != nil {
		return nil, err
	}

	if s.noDataShown() {
		s.log.Infof("No data for %s - %s", s.acct.Dealer, mode.Name)
		return &Artifact{Account: s.acct, Mode: mode, Empty: true}, nil
	}

	path, err := s.export()
	if err != nil {
		return nil, err
	}

	renamed := s.rename(path, mode)
	return &Artifact{Path: renamed, Account: s.acct, Mode: mode}, nil
}

// switchMode reads the current mode indicator and, when it disagrees with
// the target, flips it through the profile dropdown and polls until the
// indicator follows.
func (s *Session) switchMode(mode SupportMode) error {
	current := s.currentMode()
	s.log.Debugf("Current support mode: %s, target: %s", current, mode.Name)
	if current == mode.Name {
		return nil
	}

	toggle, ok := s.res.Find(s.ctx, s.cfg.Locators.ModeSwitch, s.cfg.StageTimeout, true)
	if !ok {
		return errors.New("mode switch dropdown not found")
	}
	if err := s.click(toggle); err != nil {
		return fmt.Errorf("opening mode dropdown: %w", err)
	}

	item := Match{
		Name: "mode option",
		Locator: xpath(fmt.Sprintf(
			`//a[contains(@class, 'dropdown-item') and contains(., '%s')]`, mode.DropdownText)),
	}
	if err := s.click(item); err != nil {
		return fmt.Errorf("selecting %s: %w", mode.DropdownText, err)
	}

	err := PollUntil(s.ctx, time.Second, 10*time.Second, func(context.Context) (bool, error) {
		return s.currentMode() == mode.Name, nil
	})
	if err != nil {
		return fmt.Errorf("mode indicator never showed %s", mode.Name)
	}
	return nil
}

const currentModeJS = `(function() {
	var hs = document.querySelectorAll('h1,h2,h3,h4,.card-title');
	for (var i = 0; i < hs.length; i++) {
		var t = (hs[i].textContent || '').toLowerCase();
		if (t.indexOf('elite') >= 0) return 'Elite Support';
		if (t.indexOf('standard') >= 0) return 'Standard Support';
	}
	var body = document.body ? document.body.innerText.toLowerCase() : '';
	if (body.indexOf('elite support') >= 0) return 'Elite Support';
	if (body.indexOf('standard support') >= 0) return 'Standard Support';
	return 'Unknown';
})()`

func (s *Session) currentMode() string {
	var mode string
	if err := s.run(5*time.Second, chromedp.Evaluate(currentModeJS, &mode)); err != nil {
		s.log.Debugf("Mode detection failed: %v", err)
		return "Unknown"
	}
	return mode
}

// setFilters sets the single-day date window and resolves the cascading
// zone -> region -> area -> dealer chain. Missing date fields are logged
// and skipped; a cascade stage that never repopulates is fatal for this
// account/mode.
func (s *Session) setFilters() error {
	dateValue := s.cfg.TargetDate.Format("2006-01-02")

	for _, spec := range []LocatorSpec{s.cfg.Locators.DateFrom, s.cfg.Locators.DateTo} {
		field, ok := s.res.Find(s.ctx, spec, s.cfg.StageTimeout, false)
		if !ok {
			s.log.Warnf("Could not find %s, continuing with reduced filter precision", spec.Name)
			continue
		}
		if err := s.setInput(field, dateValue); err != nil {
			s.log.Warnf("Could not fill %s: %v", spec.Name, err)
		}
	}

	zone := s.acct.Zone
	if zone == "" {
		zone = DefaultZone
	}

	// Each selection triggers a server round trip that repopulates the
	// next dropdown; the stage blocks until the dependent dropdown grows
	// past its placeholder option.
	stages := []struct {
		spec  LocatorSpec
		value string
		exact bool
		next  *LocatorSpec
	}{
		{s.cfg.Locators.ZoneSelect, zone, false, &s.cfg.Locators.RegionSelect},
		{s.cfg.Locators.RegionSelect, s.acct.Region, false, &s.cfg.Locators.AreaSelect},
		{s.cfg.Locators.AreaSelect, s.acct.Area, false, &s.cfg.Locators.DealerSelect},
		{s.cfg.Locators.DealerSelect, s.acct.Dealer, true, nil},
	}

	for _, stage := range stages {
		sel, ok := s.res.Find(s.ctx, stage.spec, s.cfg.StageTimeout, false)
		if !ok {
			return fmt.Errorf("%w: %s not found", ErrFilterFailed, stage.spec.Name)
		}

		err := PollUntil(s.ctx, time.Second, 15*time.Second, func(context.Context) (bool, error) {
			picked, err := s.selectByText(sel, stage.value, stage.exact)
			if err != nil {
				return false, err
			}
			return picked, nil
		})
		if err != nil {
			return fmt.Errorf("%w: option %q never appeared in %s", ErrFilterFailed, stage.value, stage.spec.Name)
		}
		s.log.Debugf("Set %s to %q", stage.spec.Name, stage.value)

		if stage.next != nil {
			if err := s.awaitRepopulation(*stage.next); err != nil {
				return fmt.Errorf("%w: %s did not repopulate after selecting %q", ErrFilterFailed, stage.next.Name, stage.value)
			}
		}
	}

	if status, ok := s.res.Find(s.ctx, s.cfg.Locators.TicketStatus, s.cfg.StageTimeout, false); ok {
		n, err := s.selectAllOptions(status)
		if err != nil || n == 0 {
			s.log.Warnf("Could not select all ticket statuses: %v", err)
		} else {
			s.log.Debugf("Selected all %d ticket status options", n)
		}
	} else {
		s.log.Warnf("Ticket status select not found")
	}

	if tat, ok := s.res.Find(s.ctx, s.cfg.Locators.TATSelect, 3*time.Second, false); ok {
		if picked, err := s.selectByText(tat, "All", true); err != nil || !picked {
			s.log.Warnf("Could not set TAT to All")
		}
	}

	return nil
}

// awaitRepopulation waits until a dependent dropdown holds more than its
// placeholder option.
func (s *Session) awaitRepopulation(spec LocatorSpec) error {
	return PollUntil(s.ctx, time.Second, 15*time.Second, func(context.Context) (bool, error) {
		sel, ok := s.res.Find(s.ctx, spec, 2*time.Second, false)
		if !ok {
			return false, nil
		}
		n, err := s.optionCount(sel)
		if err != nil {
			return false, nil
		}
		return n > 1, nil
	})
}

func (s *Session) submitQuery() error {
	submit, ok := s.res.Find(s.ctx, s.cfg.Locators.QuerySubmit, s.cfg.StageTimeout, true)
	if !ok {
		return fmt.Errorf("%w: button not found", ErrSubmitFailed)
	}
	if err := s.click(submit); err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	return nil
}

// noDataShown waits for the result area to settle, then checks for an
// explicit empty-result indicator.
func (s *Session) noDataShown() bool {
	_ = PollUntil(s.ctx, time.Second, 10*time.Second, func(context.Context) (bool, error) {
		_, ok := s.res.Find(s.ctx, s.cfg.Locators.ResultsTable, 2*time.Second, false)
		return ok, nil
	})

	noData, ok := s.res.Find(s.ctx, s.cfg.Locators.NoData, 5*time.Second, false)
	if !ok {
		return false
	}
	visible, err := s.isVisible(noData)
	return err == nil && visible
}

// export snapshots the download directory, triggers the export and waits
// for the new file to finish writing.
func (s *Session) export() (string, error) {
	exportBtn, ok := s.res.Find(s.ctx, s.cfg.Locators.Export, 15*time.Second, true)
	if !ok {
		return "", ErrNoExport
	}

	watcher := NewWatcher(s.cfg.DownloadDir)
	before, err := watcher.Snapshot()
	if err != nil {
		return "", err
	}

	if err := s.click(exportBtn); err != nil {
		return "", fmt.Errorf("clicking export: %w", err)
	}

	path, err := watcher.Await(s.ctx, before)
	if err != nil {
		return "", err
	}
	s.log.Infof("Download completed: %s", filepath.Base(path))
	return path, nil
}

// rename moves the export to its canonical name. A failed rename is not
// fatal; the artifact keeps its original name.
func (s *Session) rename(path string, mode SupportMode) string {
	target := filepath.Join(s.cfg.DownloadDir, ArtifactFileName(s.acct.Dealer, s.cfg.TargetDate, mode))
	if err := os.Rename(path, target); err != nil {
		s.log.Warnf("Could not rename %s: %v", filepath.Base(path), err)
		return path
	}
	s.log.Infof("File renamed to: %s", filepath.Base(target))
	return target
}

// ArtifactFileName is the canonical export name for one (dealer, date,
// mode) extraction covering every ticket status.
func ArtifactFileName(dealer string, date time.Time, mode SupportMode) string {
	return fmt.Sprintf("%s_%s_%s_ALL_TICKET_STATUS.xlsx",
		utils.SanitizeName(dealer), date.Format("02-01-2006"), mode.Suffix)
}

// --- low-level page interaction ---

func (s *Session) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// jsLocate builds a JS expression resolving a locator to an element.
func jsLocate(loc Locator) string {
	if loc.Strategy == ByXPath {
		return `document.evaluate(` + strconv.Quote(loc.Query) +
			`, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue`
	}
	return `document.querySelector(` + strconv.Quote(loc.Query) + `)`
}

// setInput clears a field and sets its value, dispatching the events the
// page scripts listen for.
func (s *Session) setInput(m Match, value string) error {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (!el) return false;
		el.value = '';
		el.value = %s;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, jsLocate(m.Locator), strconv.Quote(value))

	var ok bool
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s vanished before fill", m.Name)
	}
	return nil
}

// click tries a native click first and falls back to a scripted one, which
// survives overlays and animations intercepting the pointer.
func (s *Session) click(m Match) error {
	err := s.run(5*time.Second, chromedp.Click(m.Query, m.QueryOpt(), chromedp.NodeVisible))
	if err == nil {
		return nil
	}
	s.log.Debugf("Native click on %s rejected, using scripted click: %v", m.Name, err)

	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (!el) return false;
		el.scrollIntoView(true);
		el.click();
		return true;
	})()`, jsLocate(m.Locator))

	var ok bool
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s vanished before click", m.Name)
	}
	return nil
}

// selectByText picks a dropdown option by visible text and fires change.
// With exact=false a case-insensitive partial match is accepted, the way
// the portal abbreviates region and area names.
func (s *Session) selectByText(m Match, text string, exact bool) (bool, error) {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (!el || !el.options) return false;
		var want = %s;
		var pick = -1;
		for (var i = 0; i < el.options.length; i++) {
			if (el.options[i].text.trim() === want) { pick = i; break; }
		}
		if (pick < 0 && !%t) {
			var lower = want.toLowerCase();
			for (var i = 0; i < el.options.length; i++) {
				var t = el.options[i].text.trim().toLowerCase();
				if (t && (t.indexOf(lower) >= 0 || lower.indexOf(t) >= 0)) { pick = i; break; }
			}
		}
		if (pick < 0) return false;
		el.selectedIndex = pick;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, jsLocate(m.Locator), strconv.Quote(text), exact)

	var ok bool
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

// selectAllOptions marks every option of a multi-select as selected.
func (s *Session) selectAllOptions(m Match) (int, error) {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		if (!el || !el.options) return 0;
		for (var i = 0; i < el.options.length; i++) {
			el.options[i].selected = true;
		}
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return el.options.length;
	})()`, jsLocate(m.Locator))

	var n int
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &n)); err != nil {
		return 0, err
	}
	return n, nil
}

// optionCount reports how many options a select currently holds.
func (s *Session) optionCount(m Match) (int, error) {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		return el && el.options ? el.options.length : -1;
	})()`, jsLocate(m.Locator))

	var n int
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &n)); err != nil {
		return -1, err
	}
	return n, nil
}

func (s *Session) isVisible(m Match) (bool, error) {
	expr := fmt.Sprintf(`(function() {
		var el = %s;
		return !!el && el.offsetParent !== null;
	})()`, jsLocate(m.Locator))

	var visible bool
	if err := s.run(5*time.Second, chromedp.Evaluate(expr, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}
