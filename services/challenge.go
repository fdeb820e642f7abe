package services

import (
	"fmt"

	"lexhub/models"
)

// GenerateChallenge produces an adversarial follow-up calibrated to the
// session's hardness. Counter-arguments probe detected gaps, hypotheticals
// stress well-argued turns, clarifications target muddy conclusions. The
// challenge is advisory: it never alters the turn or its score.
func GenerateChallenge(score *models.RubricScore, hardness string) *models.Challenge {
	switch {
	case len(score.Gaps) > 0:
		return counterChallenge(score, hardness)
	case score.Dims.Conclusion.Score < 70:
		return clarificationChallenge(hardness)
	default:
		return hypotheticalChallenge(score, hardness)
	}
}

func counterChallenge(score *models.RubricScore, hardness string) *models.Challenge {
	target := score.Gaps[0]

	var prompt string
	switch hardness {
	case models.HardnessHard:
		if len(score.Gaps) >= 2 {
			// Hard mode compounds two gaps into one question.
			prompt = fmt.Sprintf(
				"Opposing counsel argues you have established neither %q nor %q. Address both in a single rebuttal, citing the record for each.",
				score.Gaps[0], score.Gaps[1])
		} else {
			prompt = fmt.Sprintf(
				"Opposing counsel contends %q fails on the record. Rebut with the strongest contrary facts and explain why they control.",
				target)
		}
	case models.HardnessEasy:
		prompt = fmt.Sprintf("Your argument has not yet addressed %q. Which fact in the case file speaks to it?", target)
	default:
		prompt = fmt.Sprintf("How would you answer an opponent who says %q is missing from your argument?", target)
	}

	return &models.Challenge{
		Kind:              models.ChallengeCounter,
		Prompt:            prompt,
		TargetElement:     target,
		SuggestedResponse: fmt.Sprintf("Tie a cited fact directly to %q and state why it satisfies the element.", target),
	}
}

func clarificationChallenge(hardness string) *models.Challenge {
	prompt := "Your conclusion leaves the outcome ambiguous. Restate it in one sentence: who prevails, and on what ground?"
	if hardness == models.HardnessHard {
		prompt = "State your conclusion as a holding: party, disposition, and the single controlling reason. No hedging."
	}
	return &models.Challenge{
		Kind:   models.ChallengeClarification,
		Prompt: prompt,
	}
}

func hypotheticalChallenge(score *models.RubricScore, hardness string) *models.Challenge {
	// Probe the weakest dimension of an otherwise solid argument.
	target, _ := weakestDimension(score)

	var prompt string
	switch hardness {
	case models.HardnessHard:
		prompt = "Suppose the key fact you rely on were reversed. Does your rule still compel the same outcome, and if not, where exactly does the analysis break?"
	case models.HardnessEasy:
		prompt = "Imagine one fact changed in your opponent's favor. Would your conclusion survive? Explain briefly."
	default:
		prompt = "If the court read the cited statute narrowly, which step of your application would need new support?"
	}

	return &models.Challenge{
		Kind:          models.ChallengeHypothetical,
		Prompt:        prompt,
		TargetElement: target,
	}
}

// weakestDimension names the lowest-scoring dimension.
func weakestDimension(score *models.RubricScore) (string, float64) {
	name, min := "relevance", score.Dims.Relevance.Score
	if score.Dims.Rule.Score < min {
		name, min = "rule", score.Dims.Rule.Score
	}
	if score.Dims.Application.Score < min {
		name, min = "application", score.Dims.Application.Score
	}
	if score.Dims.Citation.Score < min {
		name, min = "citation", score.Dims.Citation.Score
	}
	if score.Dims.Conclusion.Score < min {
		name, min = "conclusion", score.Dims.Conclusion.Score
	}
	return name, min
}
