package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"lexhub/internal/socratic"
	"lexhub/models"
)

func newTestService(checker RuleChecker) *SessionService {
	return NewSessionService(testContent(), checker, DefaultTuning())
}

func mustCreateSession(t *testing.T, s *SessionService) *models.SocraticSession {
	t.Helper()
	session, err := s.CreateSession("ISSUE-001", "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return session
}

func TestCreateSessionDefaults(t *testing.T) {
	session := mustCreateSession(t, newTestService(nil))

	if session.Status != models.SessionActive {
		t.Errorf("new session should be active, got %q", session.Status)
	}
	if session.CurrentHardness != models.HardnessMedium {
		t.Errorf("hardness should default to medium, got %q", session.CurrentHardness)
	}
	if len(session.ElementCoverage) != 5 {
		t.Errorf("coverage should track all 5 elements, got %d", len(session.ElementCoverage))
	}
	for _, cov := range session.ElementCoverage {
		if cov.Covered {
			t.Errorf("element %q should start uncovered", cov.Element)
		}
	}
}

func TestCreateSessionRejectsUnknownIssue(t *testing.T) {
	if _, err := newTestService(nil).CreateSession("ISSUE-404", ""); err == nil {
		t.Error("unknown issue should be rejected")
	}
}

func TestCreateSessionRejectsUnknownHardness(t *testing.T) {
	if _, err := newTestService(nil).CreateSession("ISSUE-001", "brutal"); err == nil {
		t.Error("unknown hardness should be rejected")
	}
}

func TestSubmitTurnOutOfOrder(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	_, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), 1)
	var sErr *StateConflictError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}

	// Session state must be untouched after the conflict.
	snap, _ := svc.Snapshot(session.ID)
	if len(snap.Turns) != 0 {
		t.Errorf("a conflicting turn must not be recorded, got %d turns", len(snap.Turns))
	}

	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), 0); err != nil {
		t.Errorf("in-order turn rejected: %v", err)
	}
}

func TestSubmitTurnRejectsForeignIssue(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	turn := validTurn()
	turn.IssueID = "ISSUE-404"
	_, _, err := svc.SubmitTurn(context.Background(), session.ID, turn, -1)
	var sErr *StateConflictError
	if !errors.As(err, &sErr) {
		t.Fatalf("a turn for a different issue must conflict, got %v", err)
	}

	// Coverage must be untouched by the rejected turn.
	snap, _ := svc.Snapshot(session.ID)
	if len(snap.Turns) != 0 {
		t.Errorf("rejected turn must not be recorded, got %d turns", len(snap.Turns))
	}
	for _, cov := range snap.ElementCoverage {
		if cov.Covered {
			t.Errorf("element %q must stay uncovered after a rejected turn", cov.Element)
		}
	}
}

func TestSubmitTurnRejectsDuplicate(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Fatalf("first submission failed: %v", err)
	}

	_, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1)
	var sErr *StateConflictError
	if !errors.As(err, &sErr) {
		t.Errorf("identical resubmission should conflict, got %v", err)
	}
}

func TestSubmitTurnValidatesBeforeScoring(t *testing.T) {
	checker := &stubChecker{res: RuleCheckResult{Checked: true, Aligned: true}}
	svc := newTestService(checker)
	session := mustCreateSession(t, svc)

	bad := validTurn()
	bad.CitedFacts = nil
	_, _, err := svc.SubmitTurn(context.Background(), session.ID, bad, -1)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if checker.callCount() != 0 {
		t.Errorf("scorers must not run on an invalid turn; checker ran %d times", checker.callCount())
	}

	snap, _ := svc.Snapshot(session.ID)
	if len(snap.Turns) != 0 || len(snap.Scores) != 0 {
		t.Error("an invalid turn must leave the session unchanged")
	}

	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Fatalf("valid submission failed: %v", err)
	}
	if checker.callCount() != 1 {
		t.Errorf("checker should run once for a valid turn, ran %d times", checker.callCount())
	}
}

func TestPauseBlocksTurnsUntilResume(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	if err := svc.Pause(session.ID); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	_, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1)
	var sErr *StateConflictError
	if !errors.As(err, &sErr) {
		t.Fatalf("a paused session must reject turns, got %v", err)
	}
	if err := svc.Pause(session.ID); !errors.As(err, &sErr) {
		t.Errorf("pausing a paused session should conflict, got %v", err)
	}

	if err := svc.Resume(session.ID); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Errorf("resumed session rejected a turn: %v", err)
	}
}

func TestEndSessionIsTerminal(t *testing.T) {
	svc := newTestService(nil)

	var archived *models.SocraticSession
	svc.SetArchiveCallback(func(s *models.SocraticSession) { archived = s })

	var events []*socratic.Event
	svc.SetEventCallback(func(_ string, e *socratic.Event) { events = append(events, e) })

	session := mustCreateSession(t, svc)
	if err := svc.EndSession(session.ID, socratic.EndAbort); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if len(events) != 2 || events[0].Type != socratic.EventSummary || events[1].Type != socratic.EventEnd {
		t.Errorf("ending should emit summary then end, got %v", eventTypes(events))
	}
	if archived == nil || archived.Status != models.SessionCompleted {
		t.Error("ending should archive the completed session")
	}

	_, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1)
	var sErr *StateConflictError
	if !errors.As(err, &sErr) {
		t.Errorf("a completed session must reject turns, got %v", err)
	}
	if err := svc.EndSession(session.ID, ""); !errors.As(err, &sErr) {
		t.Errorf("ending twice should conflict, got %v", err)
	}
}

func TestEndSessionRejectsUnknownReason(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	err := svc.EndSession(session.ID, "rage_quit")
	if err == nil {
		t.Fatal("unknown end reason should be rejected")
	}
	var sErr *StateConflictError
	if errors.As(err, &sErr) {
		t.Error("a bad reason is a plain error, not a state conflict")
	}
}

func TestAdaptHardness(t *testing.T) {
	tuning := DefaultTuning()
	cases := []struct {
		name    string
		current string
		history []float64
		want    string
	}{
		{"streak escalates medium", models.HardnessMedium, []float64{90, 92, 88}, models.HardnessHard},
		{"streak escalates easy", models.HardnessEasy, []float64{85, 85, 85}, models.HardnessMedium},
		{"hard has no headroom", models.HardnessHard, []float64{95, 95, 95}, models.HardnessHard},
		{"low average de-escalates", models.HardnessMedium, []float64{40, 50, 45}, models.HardnessEasy},
		{"hard steps down", models.HardnessHard, []float64{30, 40, 50}, models.HardnessMedium},
		{"short history holds", models.HardnessMedium, []float64{90, 92}, models.HardnessMedium},
		{"broken streak holds", models.HardnessMedium, []float64{90, 40, 90}, models.HardnessMedium},
		{"streak outweighs a weak window start", models.HardnessMedium, []float64{10, 10, 90, 92, 88}, models.HardnessHard},
		{"window average de-escalates despite a strong tail", models.HardnessMedium, []float64{10, 10, 90, 90, 55}, models.HardnessEasy},
		{"strong window start offsets a weak tail", models.HardnessMedium, []float64{90, 90, 40, 50, 60}, models.HardnessMedium},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AdaptHardness(tc.current, tc.history, tuning); got != tc.want {
				t.Errorf("AdaptHardness(%q, %v) = %q, want %q", tc.current, tc.history, got, tc.want)
			}
		})
	}
}

func TestSubmitTurnEventOrder(t *testing.T) {
	svc := newTestService(nil)

	var events []*socratic.Event
	svc.SetEventCallback(func(_ string, e *socratic.Event) { events = append(events, e) })

	session := mustCreateSession(t, svc)
	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Fatalf("SubmitTurn: %v", err)
	}

	types := eventTypes(events)
	if len(types) == 0 {
		t.Fatal("submission should emit events")
	}
	if types[0] != socratic.EventScore {
		t.Errorf("score must come first, got %v", types)
	}
	if types[len(types)-1] != socratic.EventChallenge {
		t.Errorf("challenge must come last, got %v", types)
	}
	for _, want := range []string{socratic.EventArgPatch, socratic.EventElementCheck, socratic.EventTimer} {
		if !containsType(types, want) {
			t.Errorf("expected a %s event, got %v", want, types)
		}
	}
}

func TestSubmitTurnUpdatesCoverageAndTree(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)

	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Fatalf("SubmitTurn: %v", err)
	}

	snap, _ := svc.Snapshot(session.ID)
	for _, cov := range snap.ElementCoverage {
		if !cov.Covered {
			t.Errorf("element %q should be covered by the full-coverage turn", cov.Element)
		}
		if len(cov.Turns) != 1 || cov.Turns[0] != 0 {
			t.Errorf("element %q should credit turn 0, got %v", cov.Element, cov.Turns)
		}
	}

	// claim + reason + one evidence node per cited fact + counter
	if len(snap.ArgumentTree) != 6 {
		t.Fatalf("expected 6 argument nodes, got %d", len(snap.ArgumentTree))
	}
	if snap.ArgumentTree[0].Kind != models.NodeClaim {
		t.Errorf("first node should be the claim, got %q", snap.ArgumentTree[0].Kind)
	}
	last := snap.ArgumentTree[len(snap.ArgumentTree)-1]
	if last.Kind != models.NodeCounter || last.ParentID != snap.ArgumentTree[0].ID {
		t.Error("the counter node should hang off the claim")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	svc := newTestService(nil)
	session := mustCreateSession(t, svc)
	if _, _, err := svc.SubmitTurn(context.Background(), session.ID, validTurn(), -1); err != nil {
		t.Fatalf("SubmitTurn: %v", err)
	}

	snap, _ := svc.Snapshot(session.ID)
	snap.Turns[0].Conclusion = "mutated"
	snap.PerformanceHistory[0] = -1

	fresh, _ := svc.Snapshot(session.ID)
	if fresh.Turns[0].Conclusion == "mutated" || fresh.PerformanceHistory[0] == -1 {
		t.Error("snapshot mutations must not leak into the live session")
	}
}

func TestPerformanceHistoryWindow(t *testing.T) {
	tuning := DefaultTuning()
	tuning.HistoryWindow = 2
	svc := NewSessionService(testContent(), nil, tuning)
	session := mustCreateSession(t, svc)

	for i := 0; i < 3; i++ {
		turn := validTurn()
		// Vary the application so the duplicate guard stays quiet.
		turn.Application = fmt.Sprintf("%s，补充论证第%d点", turn.Application, i)
		if _, _, err := svc.SubmitTurn(context.Background(), session.ID, turn, i); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
	}

	snap, _ := svc.Snapshot(session.ID)
	if len(snap.PerformanceHistory) != 2 {
		t.Errorf("history should be trimmed to the window, got %d entries", len(snap.PerformanceHistory))
	}
	if len(snap.Turns) != 3 {
		t.Errorf("all turns stay recorded, got %d", len(snap.Turns))
	}
}

func eventTypes(events []*socratic.Event) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func containsType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
