package services

import (
	"context"
	"fmt"
	"strings"

	"lexhub/models"

	"golang.org/x/sync/errgroup"
)

// EvalContext is the read-only case material a Turn is scored against.
type EvalContext struct {
	Issue      *models.Issue
	Content    *models.CaseContent
	PriorTurns []models.Turn
}

// Sentiment and connective marker lists. Submissions may be Chinese or
// English, so both sets are carried.
var (
	supportMarkers = []string{
		"支持", "应当", "同意", "成立", "有效", "予以",
		"support", "uphold", "agree", "valid", "should be granted",
	}
	opposeMarkers = []string{
		"反对", "不应", "不能", "无效", "不成立", "驳回", "不予",
		"oppose", "reject", "invalid", "should not", "dismiss", "fails",
	}
	causalMarkers = []string{
		"因此", "所以", "综上", "故", "由此可见", "据此",
		"therefore", "thus", "hence", "consequently", "accordingly",
	}
)

// repetitionOverlap is the keyword overlap above which a turn counts as
// restating an earlier one.
const repetitionOverlap = 0.8

// ScoreRelevance measures keyword overlap between the active issue text and
// the turn's issue + application text. Prior turns for the issue give the
// feedback context: a submission that largely restates an earlier turn is
// called out, though the score bands depend only on the issue overlap.
func ScoreRelevance(turn *models.Turn, ec *EvalContext) models.RubricDimension {
	issueText := ""
	if ec.Issue != nil {
		issueText = ec.Issue.Title + " " + ec.Issue.Statement
	}

	issueKeys := Keywords(issueText)
	turnKeys := Keywords(turn.Issue + " " + turn.Application)
	overlap := KeywordOverlap(issueKeys, turnKeys)

	var score float64
	var feedback string
	switch {
	case overlap > 0.7:
		score = 90 + (overlap-0.7)/0.3*10
		feedback = "Argument tracks the disputed issue closely."
	case overlap > 0.4:
		score = 70 + (overlap-0.4)/0.3*20
		feedback = "Argument is on topic but drifts from the issue's key terms."
	default:
		score = 40 + overlap/0.4*30
		feedback = "Argument shares little ground with the issue as framed; restate the question presented."
	}

	if restatesPriorTurn(turnKeys, ec.PriorTurns) {
		feedback += " The argument largely restates an earlier turn; advance the analysis instead."
	}

	return models.RubricDimension{Score: clamp(score), Feedback: feedback}
}

func restatesPriorTurn(turnKeys map[string]struct{}, prior []models.Turn) bool {
	for _, p := range prior {
		if KeywordOverlap(turnKeys, Keywords(p.Issue+" "+p.Application)) > repetitionOverlap {
			return true
		}
	}
	return false
}

// ScoreRuleAccuracy checks cited law ids against the lookup table, penalizes
// terse rule statements, and optionally defers to the external alignment
// check. The external check is fail-open: a skipped check changes nothing.
func ScoreRuleAccuracy(ctx context.Context, turn *models.Turn, ec *EvalContext, checker RuleChecker) models.RubricDimension {
	score := 100.0
	var notes []string

	for _, id := range turn.CitedLaws {
		if _, ok := ec.Content.Law(id); !ok {
			score -= 30
			notes = append(notes, fmt.Sprintf("cited law %s is not in the case file", id))
			break // first invalid citation short-circuits further penalties
		}
	}

	if runeLen(turn.Rule) < 20 {
		if score > 60 {
			score = 60
		}
		notes = append(notes, "rule statement is too brief to state the governing standard")
	}

	if checker != nil && len(turn.CitedLaws) > 0 {
		if lawText, ok := ec.Content.Law(turn.CitedLaws[0]); ok {
			res := checker.CheckRuleAlignment(ctx, turn.Rule, lawText)
			if res.Checked && !res.Aligned {
				if score > 70 {
					score = 70
				}
				notes = append(notes, "stated rule does not match the cited statute's text")
			}
		}
	}

	if score < 0 {
		score = 0
	}
	feedback := "Rule statement is accurate and properly sourced."
	if len(notes) > 0 {
		feedback = strings.Join(notes, "; ")
	}
	return models.RubricDimension{Score: score, Feedback: feedback}
}

// ScoreApplicationDepth rewards working the issue's required elements through
// the facts. Coverage uses the loose fuzzy match, so paraphrased elements
// still count.
func ScoreApplicationDepth(turn *models.Turn, ec *EvalContext) models.RubricDimension {
	score := 60.0
	feedback := "No required elements defined for this issue; depth not assessed in detail."

	var elements []string
	if ec.Issue != nil {
		elements = ec.Issue.Elements
	}

	if len(elements) > 0 {
		covered := 0
		for _, el := range elements {
			if FuzzyContains(turn.Application, el) {
				covered++
			}
		}
		coverage := float64(covered) / float64(len(elements))

		switch {
		case coverage > 0.8:
			score = 85 + (coverage-0.8)/0.2*15
		case coverage >= 0.5:
			score = 70 + (coverage-0.5)/0.3*14
		default:
			score = 50 + coverage/0.5*20
		}
		feedback = fmt.Sprintf("Application addresses %d of %d required elements.", covered, len(elements))
	}

	// Fact-grounded reasoning earns a small bonus.
	if runeLen(turn.Application) > 50 && hasResolvedFact(turn, ec) {
		score += 10
		if score > 100 {
			score = 100
		}
	}

	return models.RubricDimension{Score: clamp(score), Feedback: feedback}
}

func hasResolvedFact(turn *models.Turn, ec *EvalContext) bool {
	for _, id := range turn.CitedFacts {
		if content, ok := ec.Content.Fact(id); ok && content != "" {
			return true
		}
	}
	return false
}

// ScoreCitationQuality enforces that arguments cite facts and laws, that the
// ids resolve, and that fact citations are referenced inline.
func ScoreCitationQuality(turn *models.Turn, ec *EvalContext) models.RubricDimension {
	score := 100.0
	var notes []string

	switch len(turn.CitedFacts) {
	case 0:
		score = 0
		notes = append(notes, "no facts cited")
	case 1:
		score = 70
		notes = append(notes, "only one fact cited; ground the argument in more of the record")
	}

	if len(turn.CitedLaws) == 0 {
		score = 0
		notes = append(notes, "no laws cited")
	}

	if hasUnresolvedCitation(turn, ec) {
		score -= 30
		if score < 0 {
			score = 0
		}
		notes = append(notes, "a cited id does not resolve in the case file")
	}

	if len(turn.CitedFacts) > 0 && !factReferencedInline(turn) && score > 50 {
		score -= 20
		if score < 50 {
			score = 50
		}
		notes = append(notes, "cite facts inline using the [Fx] convention")
	}

	feedback := "Citations are complete and well referenced."
	if len(notes) > 0 {
		feedback = strings.Join(notes, "; ")
	}
	return models.RubricDimension{Score: score, Feedback: feedback}
}

func hasUnresolvedCitation(turn *models.Turn, ec *EvalContext) bool {
	for _, id := range turn.CitedFacts {
		if _, ok := ec.Content.Fact(id); !ok {
			return true
		}
	}
	for _, id := range turn.CitedLaws {
		if _, ok := ec.Content.Law(id); !ok {
			return true
		}
	}
	return false
}

// factReferencedInline reports whether any cited fact id appears in the
// application text. Bare ids count, so the bracketed [Fx] convention does too.
func factReferencedInline(turn *models.Turn) bool {
	for _, id := range turn.CitedFacts {
		if strings.Contains(turn.Application, id) {
			return true
		}
	}
	return false
}

// ScoreConclusionClarity checks length, stance consistency and the presence
// of causal connectives.
func ScoreConclusionClarity(turn *models.Turn, ec *EvalContext) models.RubricDimension {
	score := 80.0
	feedback := "Conclusion is clear and well proportioned."

	n := runeLen(turn.Conclusion)
	switch {
	case n < 10:
		score = 60
		feedback = "Conclusion is too thin to resolve the issue."
	case n > 200:
		score = 70
		feedback = "Conclusion is overlong; state the outcome concisely."
	}

	hasSupport := containsAny(turn.Conclusion, supportMarkers)
	hasOppose := containsAny(turn.Conclusion, opposeMarkers)
	contradicts := (turn.Stance == models.StancePro && hasOppose && !hasSupport) ||
		(turn.Stance == models.StanceCon && hasSupport && !hasOppose)

	if contradicts {
		if score > 50 {
			score = 50
		}
		feedback = "Conclusion reads against your declared stance."
	} else if containsAny(turn.Conclusion, causalMarkers) {
		score += 10
		if score > 100 {
			score = 100
		}
	}

	return models.RubricDimension{Score: score, Feedback: feedback}
}

// EvaluateTurn runs the five dimension scorers concurrently and aggregates
// them into a RubricScore. Scorers are pure and share no state, so each
// writes its own field of dims. Evaluation always produces a result for a
// validated turn; degraded inputs yield low scores, never errors.
func EvaluateTurn(ctx context.Context, turn *models.Turn, ec *EvalContext, checker RuleChecker) *models.RubricScore {
	var dims models.RubricDimensions

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dims.Relevance = ScoreRelevance(turn, ec)
		return nil
	})
	g.Go(func() error {
		dims.Rule = ScoreRuleAccuracy(gctx, turn, ec, checker)
		return nil
	})
	g.Go(func() error {
		dims.Application = ScoreApplicationDepth(turn, ec)
		return nil
	})
	g.Go(func() error {
		dims.Citation = ScoreCitationQuality(turn, ec)
		return nil
	})
	g.Go(func() error {
		dims.Conclusion = ScoreConclusionClarity(turn, ec)
		return nil
	})
	_ = g.Wait() // scorers never return errors

	return Aggregate(turn, ec, dims)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
