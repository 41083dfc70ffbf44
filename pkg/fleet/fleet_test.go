package fleet

import (
	"context"
	"errors"
	"testing"

	"github.com/dealerops/ticketscope/pkg/portal"
)

type fakeSession struct {
	loginErr   error
	extractErr map[string]error
	empty      map[string]bool
	extracted  []string
}

func (f *fakeSession) Login() error { return f.loginErr }

func (f *fakeSession) Extract(mode portal.SupportMode) (*portal.Artifact, error) {
	f.extracted = append(f.extracted, mode.Suffix)
	if err := f.extractErr[mode.Suffix]; err != nil {
		return nil, err
	}
	if f.empty[mode.Suffix] {
		return &portal.Artifact{Mode: mode, Empty: true}, nil
	}
	return &portal.Artifact{Mode: mode, Path: "/downloads/" + mode.Suffix + ".xlsx"}, nil
}

func acct(id string) portal.Account {
	return portal.Account{ID: id, Dealer: "Dealer " + id}
}

func TestRunExtractsElitesBeforeStandard(t *testing.T) {
	session := &fakeSession{}
	r := &Runner{
		Accounts: []portal.Account{acct("u1")},
		NewSession: func(context.Context, portal.Account) (Session, func(), error) {
			return session, func() {}, nil
		},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.extracted) != 2 || session.extracted[0] != "E" || session.extracted[1] != "S" {
		t.Fatalf("expected Elite then Standard, got %v", session.extracted)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(result.Artifacts))
	}
	if !result.Succeeded() {
		t.Fatal("expected success")
	}
}

func TestLoginFailureSkipsAccountYieldsNoArtifacts(t *testing.T) {
	failing := &fakeSession{loginErr: errors.New("bad credentials")}
	working := &fakeSession{}
	sessions := map[string]*fakeSession{"u1": failing, "u2": working}

	r := &Runner{
		Accounts: []portal.Account{acct("u1"), acct("u2")},
		NewSession: func(_ context.Context, a portal.Account) (Session, func(), error) {
			return sessions[a.ID], func() {}, nil
		},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(failing.extracted) != 0 {
		t.Fatalf("failed login must not extract, got %v", failing.extracted)
	}
	// Both of u1's modes are recorded as failed, then u2 produces 2 artifacts.
	if len(result.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts from u2, got %d", len(result.Artifacts))
	}
	failedCount := 0
	for _, o := range result.Outcomes {
		if o.Account.ID == "u1" {
			if o.Status != StatusFailed {
				t.Fatalf("u1 outcome should be failed, got %s", o.Status)
			}
			failedCount++
		}
	}
	if failedCount != 2 {
		t.Fatalf("expected 2 failed outcomes for u1, got %d", failedCount)
	}
}

func TestPartialModeFailureRecordedIndependently(t *testing.T) {
	session := &fakeSession{extractErr: map[string]error{"E": errors.New("export button not found")}}
	r := &Runner{
		Accounts: []portal.Account{acct("u1")},
		NewSession: func(context.Context, portal.Account) (Session, func(), error) {
			return session, func() {}, nil
		},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Artifacts) != 1 {
		t.Fatalf("expected the Standard artifact only, got %d", len(result.Artifacts))
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Outcomes))
	}
	if result.Outcomes[0].Status != StatusFailed || result.Outcomes[1].Status != StatusExtracted {
		t.Fatalf("unexpected outcome statuses: %+v", result.Outcomes)
	}
}

func TestEmptyResultIsNotAFailure(t *testing.T) {
	session := &fakeSession{empty: map[string]bool{"E": true, "S": true}}
	r := &Runner{
		Accounts: []portal.Account{acct("u1")},
		NewSession: func(context.Context, portal.Account) (Session, func(), error) {
			return session, func() {}, nil
		},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Artifacts) != 0 {
		t.Fatalf("empty results must not produce artifacts, got %d", len(result.Artifacts))
	}
	for _, o := range result.Outcomes {
		if o.Status != StatusEmpty {
			t.Fatalf("expected empty status, got %s", o.Status)
		}
	}
	if result.Succeeded() {
		t.Fatal("a run with zero files is not a success")
	}
}

func TestSessionReleasedUnconditionally(t *testing.T) {
	released := 0
	session := &fakeSession{loginErr: errors.New("down for maintenance")}
	r := &Runner{
		Accounts: []portal.Account{acct("u1"), acct("u2")},
		NewSession: func(context.Context, portal.Account) (Session, func(), error) {
			return session, func() { released++ }, nil
		},
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != 2 {
		t.Fatalf("expected release per account regardless of failure, got %d", released)
	}
}

func TestSessionFactoryFailureIsIsolated(t *testing.T) {
	working := &fakeSession{}
	calls := 0
	r := &Runner{
		Accounts: []portal.Account{acct("u1"), acct("u2")},
		NewSession: func(context.Context, portal.Account) (Session, func(), error) {
			calls++
			if calls == 1 {
				return nil, func() {}, errors.New("chrome failed to start")
			}
			return working, func() {}, nil
		},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("second account should still extract, got %d artifacts", len(result.Artifacts))
	}
}
