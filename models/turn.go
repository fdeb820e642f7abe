package models

// Turn is one learner submission, structured along IRAC lines.
// It is immutable once accepted: the engine scores it exactly once.
type Turn struct {
	IssueID     string   `json:"issueId" bson:"issueId"`
	Stance      string   `json:"stance" bson:"stance"` // "pro" or "con"
	Issue       string   `json:"issue" bson:"issue"`
	Rule        string   `json:"rule" bson:"rule"`
	Application string   `json:"application" bson:"application"`
	Conclusion  string   `json:"conclusion" bson:"conclusion"`
	CitedFacts  []string `json:"citedFacts" bson:"citedFacts"`
	CitedLaws   []string `json:"citedLaws" bson:"citedLaws"`
	Timestamp   int64    `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	Duration    int64    `json:"duration,omitempty" bson:"duration,omitempty"` // seconds spent composing
}

const (
	StancePro = "pro"
	StanceCon = "con"
)
