package models

// Challenge kinds.
const (
	ChallengeCounter       = "counter"
	ChallengeHypothetical  = "hypothetical"
	ChallengeClarification = "clarification"
)

// Challenge is an adversarial follow-up prompt generated after scoring.
// Advisory only: it never blocks or alters the turn or its score.
type Challenge struct {
	Kind              string `json:"kind" bson:"kind"`
	Prompt            string `json:"prompt" bson:"prompt"`
	TargetElement     string `json:"targetElement,omitempty" bson:"targetElement,omitempty"`
	SuggestedResponse string `json:"suggestedResponse,omitempty" bson:"suggestedResponse,omitempty"`
}
