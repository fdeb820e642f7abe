package socratic

import (
	"encoding/json"
	"time"

	"lexhub/models"
)

// Event types of the coaching protocol. Exactly one payload kind per event.
const (
	EventCoach        = "coach"
	EventScore        = "score"
	EventChallenge    = "challenge"
	EventArgPatch     = "arg_patch"
	EventWarning      = "warning"
	EventElementCheck = "element_check"
	EventSummary      = "summary"
	EventTimer        = "timer"
	EventEnd          = "end"
)

// Warning codes carried by warning events.
const (
	WarningMissingCitation   = models.MustFixMissingCitation
	WarningWrongRule         = models.MustFixWrongRule
	WarningElementGap        = models.MustFixElementGap
	WarningOffTopic          = "OFF_TOPIC"
	WarningCircularReasoning = "CIRCULAR_REASONING"
)

// End reasons.
const (
	EndComplete = "complete"
	EndTimeout  = "timeout"
	EndAbort    = "abort"
)

// Event is one message of the session event stream.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// CoachPayload carries a coaching tip.
type CoachPayload struct {
	Tip string `json:"tip"`
}

// ScorePayload carries the rubric score for one turn.
type ScorePayload struct {
	TurnIdx int                `json:"turnIdx"`
	Score   models.RubricScore `json:"score"`
}

// ChallengePayload carries a generated challenge.
type ChallengePayload struct {
	TurnIdx   int              `json:"turnIdx"`
	Challenge models.Challenge `json:"challenge"`
}

// ArgPatchPayload carries argument-tree nodes added by a turn.
type ArgPatchPayload struct {
	Added []models.ArgumentNode `json:"added"`
}

// WarningPayload carries a single warning code with a readable message.
type WarningPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ElementCheckPayload reports required-element coverage.
type ElementCheckPayload struct {
	Covered []string `json:"covered"`
	Missing []string `json:"missing"`
}

// SummaryPayload closes out a session with aggregate results.
type SummaryPayload struct {
	Turns        int     `json:"turns"`
	AverageTotal float64 `json:"averageTotal"`
	BestTotal    int     `json:"bestTotal"`
	Hardness     string  `json:"hardness"`
}

// TimerPayload reports elapsed session time.
type TimerPayload struct {
	ElapsedSec int64 `json:"elapsedSec"`
	TurnIdx    int   `json:"turnIdx"`
}

// EndPayload terminates the stream.
type EndPayload struct {
	Reason string `json:"reason"` // complete, timeout or abort
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadBytes,
		Timestamp: time.Now().Unix(),
	}, nil
}

// MarshalEvent marshals an event to a JSON string for the Redis Stream.
func MarshalEvent(event *Event) (string, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalEvent unmarshals a JSON string back into an Event.
func UnmarshalEvent(data string) (*Event, error) {
	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return nil, err
	}
	return &event, nil
}
