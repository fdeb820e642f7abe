package services

import (
	"math"
	"sort"

	"lexhub/models"
)

// Canonical dimension weights. They sum to 1.0.
const (
	WeightRelevance   = 0.20
	WeightRule        = 0.20
	WeightApplication = 0.30
	WeightCitation    = 0.20
	WeightConclusion  = 0.10
)

// Thresholds for derived classifications.
const (
	levelExcellentMin = 85
	levelGoodMin      = 70
	levelFairMin      = 55

	wrongRuleMax     = 50 // rule score below this marks WRONG_RULE
	elementGapMax    = 40 // relevance score below this marks ELEMENT_GAP
	actionableCutoff = 70
	maxActionable    = 3
)

// One canonical suggestion template per dimension.
const (
	suggestRelevance   = "Anchor the argument to the disputed issue: restate the question presented and reuse its key terms."
	suggestRule        = "State the governing rule precisely and tie it to the statute you cite."
	suggestApplication = "Work each required element through the facts instead of asserting the outcome."
	suggestCitation    = "Cite facts and laws inline using the [Fx]/[Ly] convention so every assertion is sourced."
	suggestConclusion  = "Close with a direct, stance-consistent conclusion that follows from the application."
)

// Aggregate composes the five dimension results into a RubricScore. It never
// fails: degraded scorer output arrives as low scores with feedback attached.
func Aggregate(turn *models.Turn, ec *EvalContext, dims models.RubricDimensions) *models.RubricScore {
	dims.Relevance.Weight = WeightRelevance
	dims.Rule.Weight = WeightRule
	dims.Application.Weight = WeightApplication
	dims.Citation.Weight = WeightCitation
	dims.Conclusion.Weight = WeightConclusion

	weighted := dims.Relevance.Score*WeightRelevance +
		dims.Rule.Score*WeightRule +
		dims.Application.Score*WeightApplication +
		dims.Citation.Score*WeightCitation +
		dims.Conclusion.Score*WeightConclusion
	total := int(math.Round(weighted))

	return &models.RubricScore{
		Total:        total,
		Dims:         dims,
		Gaps:         findGaps(turn, ec),
		Actionable:   actionableFeedback(dims),
		MustFix:      mustFix(turn, dims),
		OverallLevel: overallLevel(total),
	}
}

// findGaps returns the required elements absent from the turn's combined
// issue, rule and application text, in the issue's element order.
func findGaps(turn *models.Turn, ec *EvalContext) []string {
	if ec.Issue == nil {
		return nil
	}
	combined := turn.Issue + " " + turn.Rule + " " + turn.Application
	var gaps []string
	for _, el := range ec.Issue.Elements {
		if !FuzzyContains(combined, el) {
			gaps = append(gaps, el)
		}
	}
	return gaps
}

// actionableFeedback returns up to three suggestions, worst dimension first.
func actionableFeedback(dims models.RubricDimensions) []string {
	type weak struct {
		score      float64
		suggestion string
	}
	// Canonical order breaks ties deterministically.
	candidates := []weak{
		{dims.Relevance.Score, suggestRelevance},
		{dims.Rule.Score, suggestRule},
		{dims.Application.Score, suggestApplication},
		{dims.Citation.Score, suggestCitation},
		{dims.Conclusion.Score, suggestConclusion},
	}

	var weaks []weak
	for _, c := range candidates {
		if c.score < actionableCutoff {
			weaks = append(weaks, c)
		}
	}
	sort.SliceStable(weaks, func(i, j int) bool { return weaks[i].score < weaks[j].score })

	if len(weaks) > maxActionable {
		weaks = weaks[:maxActionable]
	}
	out := make([]string, 0, len(weaks))
	for _, w := range weaks {
		out = append(out, w.suggestion)
	}
	return out
}

// mustFix picks at most one blocking defect, in fixed priority order.
func mustFix(turn *models.Turn, dims models.RubricDimensions) string {
	switch {
	case len(turn.CitedFacts) == 0 || len(turn.CitedLaws) == 0:
		return models.MustFixMissingCitation
	case dims.Rule.Score < wrongRuleMax:
		return models.MustFixWrongRule
	case dims.Relevance.Score < elementGapMax:
		return models.MustFixElementGap
	default:
		return ""
	}
}

func overallLevel(total int) string {
	switch {
	case total >= levelExcellentMin:
		return models.LevelExcellent
	case total >= levelGoodMin:
		return models.LevelGood
	case total >= levelFairMin:
		return models.LevelFair
	default:
		return models.LevelPoor
	}
}

// DetectWarnings derives stream warnings beyond mustFix: off-topic arguments
// and conclusions that merely restate the question.
func DetectWarnings(turn *models.Turn, ec *EvalContext) []string {
	var warnings []string

	issueText := ""
	if ec.Issue != nil {
		issueText = ec.Issue.Title + " " + ec.Issue.Statement
	}
	overlap := KeywordOverlap(Keywords(issueText), Keywords(turn.Issue+" "+turn.Application))
	if overlap < 0.1 {
		warnings = append(warnings, "OFF_TOPIC")
	}

	if isCircular(turn) {
		warnings = append(warnings, "CIRCULAR_REASONING")
	}
	return warnings
}

// isCircular reports a conclusion whose every keyword already appears in the
// turn's own issue statement: the question restated as the answer.
func isCircular(turn *models.Turn) bool {
	conclusionKeys := Keywords(turn.Conclusion)
	if len(conclusionKeys) == 0 {
		return false
	}
	issueKeys := Keywords(turn.Issue)
	for k := range conclusionKeys {
		if _, ok := issueKeys[k]; !ok {
			return false
		}
	}
	return true
}
