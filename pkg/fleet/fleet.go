// Package fleet iterates the extraction workflow across the whole dealer
// roster, one isolated browser session per account, strictly in sequence.
// The portal keeps login and support-mode state server-side, so accounts
// are never processed concurrently.
package fleet

import (
	"context"

	"github.com/dealerops/ticketscope/pkg/portal"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Session is the per-account workflow the runner drives. Satisfied by
// *portal.Session; faked in tests.
type Session interface {
	Login() error
	Extract(mode portal.SupportMode) (*portal.Artifact, error)
}

// SessionFactory opens a fresh browser session for one account. The
// returned release func tears the session's resources down and is called
// unconditionally when the account is finished, success or failure.
type SessionFactory func(ctx context.Context, acct portal.Account) (Session, func(), error)

// Status classifies one (account, mode) outcome.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Outcome records what happened for one (account, mode) pair.
type Outcome struct {
	Account portal.Account
	Mode    portal.SupportMode
	Status  Status
	Path    string
	Reason  string
}

// Result accumulates everything a fleet run produced.
type Result struct {
	Artifacts []portal.Artifact
	Outcomes  []Outcome
}

// Succeeded reports whether at least one extraction produced a file. Only
// a total absence of output is the batch's terminal failure.
func (r *Result) Succeeded() bool {
	return len(r.Artifacts) > 0
}

// Runner walks the roster. Modes default to Elite-then-Standard.
type Runner struct {
	Accounts   []portal.Account
	Modes      []portal.SupportMode
	NewSession SessionFactory
	Log        Logger
}

// Run processes every account once per mode. One account's failure never
// aborts the run; partial failures within an account are recorded per
// mode. Returns an error only on context cancellation.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.Log
	if log == nil {
		log = nopLogger{}
	}
	modes := r.Modes
	if len(modes) == 0 {
		modes = portal.Modes()
	}

	result := &Result{}

	for _, acct := range r.Accounts {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log.Infof("Processing account %s (%s)", acct.ID, acct.Dealer)
		r.runAccount(ctx, acct, modes, result, log)
	}

	return result, nil
}

func (r *Runner) runAccount(ctx context.Context, acct portal.Account, modes []portal.SupportMode, result *Result, log Logger) {
	session, release, err := r.NewSession(ctx, acct)
	if err != nil {
		log.Errorf("Could not open session for %s: %v", acct.ID, err)
		r.failAllModes(acct, modes, "session: "+err.Error(), result)
		return
	}
	defer release()

	if err := session.Login(); err != nil {
		log.Errorf("Login failed for %s, skipping account: %v", acct.ID, err)
		r.failAllModes(acct, modes, err.Error(), result)
		return
	}

	for _, mode := range modes {
		if ctx.Err() != nil {
			return
		}

		artifact, err := session.Extract(mode)
		switch {
		case err != nil:
			log.Errorf("Extraction failed for %s - %s: %v", acct.Dealer, mode.Name, err)
			result.Outcomes = append(result.Outcomes, Outcome{
				Account: acct, Mode: mode, Status: StatusFailed, Reason: err.Error(),
			})
		case artifact.Empty:
			result.Outcomes = append(result.Outcomes, Outcome{
				Account: acct, Mode: mode, Status: StatusEmpty,
			})
		default:
			result.Artifacts = append(result.Artifacts, *artifact)
			result.Outcomes = append(result.Outcomes, Outcome{
				Account: acct, Mode: mode, Status: StatusExtracted, Path: artifact.Path,
			})
		}
	}

	log.Infof("Completed processing for %s", acct.ID)
}

// failAllModes records a whole-account failure as one outcome per mode, so
// downstream reporting stays uniform.
func (r *Runner) failAllModes(acct portal.Account, modes []portal.SupportMode, reason string, result *Result) {
	for _, mode := range modes {
		result.Outcomes = append(result.Outcomes, Outcome{
			Account: acct, Mode: mode, Status: StatusFailed, Reason: reason,
		})
	}
}
