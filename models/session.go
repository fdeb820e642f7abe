package models

// Session lifecycle states.
const (
	SessionActive    = "active"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
)

// Challenge hardness levels, ordered easiest first.
const (
	HardnessEasy   = "easy"
	HardnessMedium = "medium"
	HardnessHard   = "hard"
)

// Argument tree node kinds.
const (
	NodeClaim    = "claim"
	NodeReason   = "reason"
	NodeEvidence = "evidence"
	NodeCounter  = "counter"
)

// ArgumentNode is one node of a session's argument tree.
type ArgumentNode struct {
	ID       string `json:"id" bson:"id"`
	ParentID string `json:"parentId,omitempty" bson:"parentId,omitempty"`
	Kind     string `json:"kind" bson:"kind"`
	Text     string `json:"text" bson:"text"`
	TurnIdx  int    `json:"turnIdx" bson:"turnIdx"`
}

// ElementCoverage tracks whether a required element has been argued, and by
// which turns.
type ElementCoverage struct {
	Element string `json:"element" bson:"element"`
	Covered bool   `json:"covered" bson:"covered"`
	Turns   []int  `json:"turns,omitempty" bson:"turns,omitempty"`
}

// SocraticSession is the session-scoped aggregate. It exclusively owns its
// turns, scores and challenges; the session service is its single writer.
type SocraticSession struct {
	ID                 string            `json:"id" bson:"_id"`
	IssueID            string            `json:"issueId" bson:"issueId"`
	Status             string            `json:"status" bson:"status"`
	Turns              []Turn            `json:"turns" bson:"turns"`
	Scores             []RubricScore     `json:"scores" bson:"scores"`
	Challenges         []Challenge       `json:"challenges" bson:"challenges"`
	ArgumentTree       []ArgumentNode    `json:"argumentTree" bson:"argumentTree"`
	ElementCoverage    []ElementCoverage `json:"elementCoverage" bson:"elementCoverage"`
	CurrentHardness    string            `json:"currentHardness" bson:"currentHardness"`
	PerformanceHistory []float64         `json:"performanceHistory" bson:"performanceHistory"`
	CreatedAt          int64             `json:"createdAt" bson:"createdAt"`
	EndedAt            int64             `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	EndReason          string            `json:"endReason,omitempty" bson:"endReason,omitempty"`
}
