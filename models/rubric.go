package models

// RubricDimension holds the outcome of one scoring dimension.
type RubricDimension struct {
	Score    float64 `json:"score" bson:"score"` // 0-100
	Weight   float64 `json:"weight" bson:"weight"`
	Feedback string  `json:"feedback" bson:"feedback"`
}

// RubricDimensions is the fixed set of the five dimensions. The set is
// static: aggregation reads fields directly, no dynamic dimension map.
type RubricDimensions struct {
	Relevance   RubricDimension `json:"relevance" bson:"relevance"`
	Rule        RubricDimension `json:"rule" bson:"rule"`
	Application RubricDimension `json:"application" bson:"application"`
	Citation    RubricDimension `json:"citation" bson:"citation"`
	Conclusion  RubricDimension `json:"conclusion" bson:"conclusion"`
}

// MustFix codes, in evaluation priority order.
const (
	MustFixMissingCitation = "MISSING_CITATION"
	MustFixWrongRule       = "WRONG_RULE"
	MustFixElementGap      = "ELEMENT_GAP"
)

// Overall performance levels derived from the weighted total.
const (
	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelFair      = "fair"
	LevelPoor      = "poor"
)

// RubricScore is the aggregate evaluation of a single Turn.
type RubricScore struct {
	Total        int              `json:"total" bson:"total"` // round(sum of weighted scores)
	Dims         RubricDimensions `json:"dims" bson:"dims"`
	Gaps         []string         `json:"gaps" bson:"gaps"`
	Actionable   []string         `json:"actionable" bson:"actionable"` // at most 3, worst dimension first
	MustFix      string           `json:"mustFix,omitempty" bson:"mustFix,omitempty"`
	OverallLevel string           `json:"overallLevel" bson:"overallLevel"`
}
