package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"lexhub/internal/socratic"
	"lexhub/models"

	"github.com/google/uuid"
)

// StateConflictError marks a submission the session cannot accept in its
// current state: wrong lifecycle state, out-of-order or duplicate turns.
// Session state is unchanged when one is returned.
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("state conflict: %s", e.Reason)
}

// Tuning controls the difficulty adaptation rules.
type Tuning struct {
	HistoryWindow       int
	EscalateStreak      int
	EscalateThreshold   float64
	DeescalateThreshold float64
}

// DefaultTuning returns the standard adaptation parameters.
func DefaultTuning() Tuning {
	return Tuning{
		HistoryWindow:       5,
		EscalateStreak:      3,
		EscalateThreshold:   85,
		DeescalateThreshold: 55,
	}
}

// EventCallback delivers engine events to the transport layer.
type EventCallback func(sessionID string, event *socratic.Event)

// ArchiveCallback persists a finished session. Persistence failures never
// affect the engine.
type ArchiveCallback func(session *models.SocraticSession)

// sessionState pairs a session with the mutex that serializes its turns.
type sessionState struct {
	mu      sync.Mutex
	session *models.SocraticSession
}

// SessionService owns all live sessions and is their single writer. Turns
// within one session are applied strictly in submission order; sessions are
// independent of each other.
type SessionService struct {
	mutex    sync.RWMutex
	sessions map[string]*sessionState
	content  *models.CaseContent
	checker  RuleChecker
	tuning   Tuning

	emit    EventCallback
	archive ArchiveCallback
}

// NewSessionService creates a service over the given case content. checker
// may be nil to disable the external rule cross-check.
func NewSessionService(content *models.CaseContent, checker RuleChecker, tuning Tuning) *SessionService {
	if tuning.HistoryWindow <= 0 {
		tuning = DefaultTuning()
	}
	return &SessionService{
		sessions: make(map[string]*sessionState),
		content:  content,
		checker:  checker,
		tuning:   tuning,
	}
}

// SetEventCallback wires the transport that receives engine events.
func (s *SessionService) SetEventCallback(cb EventCallback) {
	s.emit = cb
}

// SetArchiveCallback wires completed-session persistence.
func (s *SessionService) SetArchiveCallback(cb ArchiveCallback) {
	s.archive = cb
}

// CreateSession starts a session over one issue from the catalog.
func (s *SessionService) CreateSession(issueID, hardness string) (*models.SocraticSession, error) {
	issue, ok := s.content.Issue(issueID)
	if !ok {
		return nil, fmt.Errorf("unknown issue: %s", issueID)
	}
	switch hardness {
	case models.HardnessEasy, models.HardnessMedium, models.HardnessHard:
	case "":
		hardness = models.HardnessMedium
	default:
		return nil, fmt.Errorf("unknown hardness: %s", hardness)
	}

	coverage := make([]models.ElementCoverage, 0, len(issue.Elements))
	for _, el := range issue.Elements {
		coverage = append(coverage, models.ElementCoverage{Element: el})
	}

	session := &models.SocraticSession{
		ID:              uuid.NewString(),
		IssueID:         issueID,
		Status:          models.SessionActive,
		ElementCoverage: coverage,
		CurrentHardness: hardness,
		CreatedAt:       time.Now().Unix(),
	}

	s.mutex.Lock()
	s.sessions[session.ID] = &sessionState{session: session}
	s.mutex.Unlock()

	return snapshotOf(session), nil
}

func (s *SessionService) state(sessionID string) (*sessionState, error) {
	s.mutex.RLock()
	st, ok := s.sessions[sessionID]
	s.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}
	return st, nil
}

// Pause suspends an active session.
func (s *SessionService) Pause(sessionID string) error {
	st, err := s.state(sessionID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.session.Status != models.SessionActive {
		return &StateConflictError{Reason: "only an active session can be paused"}
	}
	st.session.Status = models.SessionPaused
	return nil
}

// Resume reactivates a paused session.
func (s *SessionService) Resume(sessionID string) error {
	st, err := s.state(sessionID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.session.Status != models.SessionPaused {
		return &StateConflictError{Reason: "only a paused session can be resumed"}
	}
	st.session.Status = models.SessionActive
	return nil
}

// EndSession transitions a session to its terminal state. Ending is
// cooperative: an in-flight turn holding the session lock finishes and is
// recorded before the end applies. No further turns are accepted afterwards.
func (s *SessionService) EndSession(sessionID, reason string) error {
	st, err := s.state(sessionID)
	if err != nil {
		return err
	}
	switch reason {
	case socratic.EndComplete, socratic.EndTimeout, socratic.EndAbort:
	case "":
		reason = socratic.EndComplete
	default:
		return fmt.Errorf("unknown end reason: %s", reason)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.session.Status == models.SessionCompleted {
		return &StateConflictError{Reason: "session already completed"}
	}
	st.session.Status = models.SessionCompleted
	st.session.EndedAt = time.Now().Unix()
	st.session.EndReason = reason

	s.emitEvent(sessionID, socratic.EventSummary, summaryPayload(st.session))
	s.emitEvent(sessionID, socratic.EventEnd, socratic.EndPayload{Reason: reason})

	if s.archive != nil {
		s.archive(snapshotOf(st.session))
	}
	return nil
}

// SubmitTurn validates, scores and records one turn. turnIndex is the
// client's sequence number; pass -1 to accept the next slot. The returned
// challenge probes the weaknesses the score identified.
func (s *SessionService) SubmitTurn(ctx context.Context, sessionID string, turn *models.Turn, turnIndex int) (*models.RubricScore, *models.Challenge, error) {
	st, err := s.state(sessionID)
	if err != nil {
		return nil, nil, err
	}

	// Single writer per session: turns apply strictly in submission order.
	st.mu.Lock()
	defer st.mu.Unlock()

	session := st.session
	if session.Status != models.SessionActive {
		return nil, nil, &StateConflictError{Reason: fmt.Sprintf("session is %s", session.Status)}
	}
	if turn.IssueID != session.IssueID {
		return nil, nil, &StateConflictError{
			Reason: fmt.Sprintf("turn targets issue %s but session argues %s", turn.IssueID, session.IssueID),
		}
	}
	if turnIndex >= 0 && turnIndex != len(session.Turns) {
		return nil, nil, &StateConflictError{
			Reason: fmt.Sprintf("expected turn %d, got %d", len(session.Turns), turnIndex),
		}
	}
	if n := len(session.Turns); n > 0 {
		if session.Turns[n-1].Application == turn.Application {
			return nil, nil, &StateConflictError{Reason: "duplicate submission for this issue"}
		}
	}

	// The validation gate: nothing downstream runs on a malformed turn.
	if err := ValidateTurn(turn); err != nil {
		return nil, nil, err
	}

	if turn.Timestamp == 0 {
		turn.Timestamp = time.Now().Unix()
	}

	// The session's issue always resolves: creation rejects unknown ids.
	issue, _ := s.content.Issue(session.IssueID)
	ec := &EvalContext{
		Issue:      issue,
		Content:    s.content,
		PriorTurns: session.Turns,
	}

	// Hardness for this turn reflects the history before it.
	session.CurrentHardness = AdaptHardness(session.CurrentHardness, session.PerformanceHistory, s.tuning)

	score := EvaluateTurn(ctx, turn, ec, s.checker)
	challenge := GenerateChallenge(score, session.CurrentHardness)

	turnIdx := len(session.Turns)
	session.Turns = append(session.Turns, *turn)
	session.Scores = append(session.Scores, *score)
	session.Challenges = append(session.Challenges, *challenge)

	session.PerformanceHistory = append(session.PerformanceHistory, float64(score.Total))
	if len(session.PerformanceHistory) > s.tuning.HistoryWindow {
		session.PerformanceHistory = session.PerformanceHistory[len(session.PerformanceHistory)-s.tuning.HistoryWindow:]
	}

	s.updateCoverage(session, score, turnIdx)
	added := s.growArgumentTree(session, turn, challenge, turnIdx)

	s.emitTurnEvents(session, turn, score, challenge, added, ec, turnIdx)

	return score, challenge, nil
}

// Snapshot returns a copy of the session aggregate.
func (s *SessionService) Snapshot(sessionID string) (*models.SocraticSession, error) {
	st, err := s.state(sessionID)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return snapshotOf(st.session), nil
}

// AdaptHardness applies the windowed threshold rules: a streak of the last
// EscalateStreak totals at or above the escalation threshold steps difficulty
// up; an average over the full rolling window below the de-escalation
// threshold steps it down.
func AdaptHardness(current string, history []float64, tuning Tuning) string {
	if len(history) < tuning.EscalateStreak {
		return current
	}

	streak := history[len(history)-tuning.EscalateStreak:]
	allHigh := true
	for _, total := range streak {
		if total < tuning.EscalateThreshold {
			allHigh = false
			break
		}
	}
	if allHigh {
		return escalate(current)
	}

	window := history
	if len(window) > tuning.HistoryWindow {
		window = window[len(window)-tuning.HistoryWindow:]
	}
	sum := 0.0
	for _, total := range window {
		sum += total
	}
	if sum/float64(len(window)) < tuning.DeescalateThreshold {
		return deescalate(current)
	}
	return current
}

func escalate(h string) string {
	switch h {
	case models.HardnessEasy:
		return models.HardnessMedium
	case models.HardnessMedium:
		return models.HardnessHard
	default:
		return h
	}
}

func deescalate(h string) string {
	switch h {
	case models.HardnessHard:
		return models.HardnessMedium
	case models.HardnessMedium:
		return models.HardnessEasy
	default:
		return h
	}
}

// updateCoverage marks elements the turn argued (the complement of the
// score's gaps) as covered, remembering which turn contributed.
func (s *SessionService) updateCoverage(session *models.SocraticSession, score *models.RubricScore, turnIdx int) {
	gapped := make(map[string]struct{}, len(score.Gaps))
	for _, g := range score.Gaps {
		gapped[g] = struct{}{}
	}
	for i := range session.ElementCoverage {
		cov := &session.ElementCoverage[i]
		if _, missing := gapped[cov.Element]; missing {
			continue
		}
		cov.Covered = true
		cov.Turns = append(cov.Turns, turnIdx)
	}
}

// growArgumentTree appends claim/reason/evidence nodes for the turn and a
// counter node for the generated challenge.
func (s *SessionService) growArgumentTree(session *models.SocraticSession, turn *models.Turn, challenge *models.Challenge, turnIdx int) []models.ArgumentNode {
	claim := models.ArgumentNode{
		ID:      uuid.NewString(),
		Kind:    models.NodeClaim,
		Text:    turn.Conclusion,
		TurnIdx: turnIdx,
	}
	reason := models.ArgumentNode{
		ID:       uuid.NewString(),
		ParentID: claim.ID,
		Kind:     models.NodeReason,
		Text:     turn.Application,
		TurnIdx:  turnIdx,
	}
	added := []models.ArgumentNode{claim, reason}

	for _, factID := range turn.CitedFacts {
		text := factID
		if content, ok := s.content.Fact(factID); ok && content != "" {
			text = content
		}
		added = append(added, models.ArgumentNode{
			ID:       uuid.NewString(),
			ParentID: reason.ID,
			Kind:     models.NodeEvidence,
			Text:     text,
			TurnIdx:  turnIdx,
		})
	}

	added = append(added, models.ArgumentNode{
		ID:       uuid.NewString(),
		ParentID: claim.ID,
		Kind:     models.NodeCounter,
		Text:     challenge.Prompt,
		TurnIdx:  turnIdx,
	})

	session.ArgumentTree = append(session.ArgumentTree, added...)
	return added
}

func (s *SessionService) emitTurnEvents(session *models.SocraticSession, turn *models.Turn, score *models.RubricScore, challenge *models.Challenge, added []models.ArgumentNode, ec *EvalContext, turnIdx int) {
	s.emitEvent(session.ID, socratic.EventScore, socratic.ScorePayload{TurnIdx: turnIdx, Score: *score})

	if len(score.Actionable) > 0 {
		s.emitEvent(session.ID, socratic.EventCoach, socratic.CoachPayload{Tip: score.Actionable[0]})
	}

	if score.MustFix != "" {
		s.emitEvent(session.ID, socratic.EventWarning, socratic.WarningPayload{
			Code:    score.MustFix,
			Message: warningMessage(score.MustFix),
		})
	}
	for _, code := range DetectWarnings(turn, ec) {
		s.emitEvent(session.ID, socratic.EventWarning, socratic.WarningPayload{
			Code:    code,
			Message: warningMessage(code),
		})
	}

	s.emitEvent(session.ID, socratic.EventArgPatch, socratic.ArgPatchPayload{Added: added})

	covered, missing := coverageSplit(session)
	s.emitEvent(session.ID, socratic.EventElementCheck, socratic.ElementCheckPayload{
		Covered: covered,
		Missing: missing,
	})

	s.emitEvent(session.ID, socratic.EventTimer, socratic.TimerPayload{
		ElapsedSec: time.Now().Unix() - session.CreatedAt,
		TurnIdx:    turnIdx,
	})

	s.emitEvent(session.ID, socratic.EventChallenge, socratic.ChallengePayload{TurnIdx: turnIdx, Challenge: *challenge})
}

func (s *SessionService) emitEvent(sessionID, eventType string, payload interface{}) {
	if s.emit == nil {
		return
	}
	event, err := socratic.NewEvent(eventType, payload)
	if err != nil {
		log.Printf("failed to build %s event for session %s: %v", eventType, sessionID, err)
		return
	}
	s.emit(sessionID, event)
}

func coverageSplit(session *models.SocraticSession) (covered, missing []string) {
	covered = []string{}
	missing = []string{}
	for _, cov := range session.ElementCoverage {
		if cov.Covered {
			covered = append(covered, cov.Element)
		} else {
			missing = append(missing, cov.Element)
		}
	}
	return covered, missing
}

func summaryPayload(session *models.SocraticSession) socratic.SummaryPayload {
	payload := socratic.SummaryPayload{
		Turns:    len(session.Turns),
		Hardness: session.CurrentHardness,
	}
	if len(session.Scores) == 0 {
		return payload
	}
	sum := 0
	best := 0
	for _, score := range session.Scores {
		sum += score.Total
		if score.Total > best {
			best = score.Total
		}
	}
	payload.AverageTotal = float64(sum) / float64(len(session.Scores))
	payload.BestTotal = best
	return payload
}

func warningMessage(code string) string {
	switch code {
	case models.MustFixMissingCitation:
		return "Cite at least one fact and one law before arguing further."
	case models.MustFixWrongRule:
		return "The stated rule does not hold up; restate the governing standard."
	case models.MustFixElementGap:
		return "The argument misses the issue's required elements."
	case socratic.WarningOffTopic:
		return "The argument barely touches the disputed issue."
	case socratic.WarningCircularReasoning:
		return "The conclusion restates the question instead of answering it."
	default:
		return code
	}
}

func snapshotOf(session *models.SocraticSession) *models.SocraticSession {
	copied := *session
	copied.Turns = append([]models.Turn(nil), session.Turns...)
	copied.Scores = append([]models.RubricScore(nil), session.Scores...)
	copied.Challenges = append([]models.Challenge(nil), session.Challenges...)
	copied.ArgumentTree = append([]models.ArgumentNode(nil), session.ArgumentTree...)
	copied.ElementCoverage = append([]models.ElementCoverage(nil), session.ElementCoverage...)
	copied.PerformanceHistory = append([]float64(nil), session.PerformanceHistory...)
	return &copied
}
