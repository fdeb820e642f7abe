package services

import (
	"fmt"
	"strings"

	"lexhub/models"
)

// Minimum rune lengths for the IRAC fields.
const (
	minIssueLen       = 10
	minRuleLen        = 10
	minApplicationLen = 20
	minConclusionLen  = 5
)

// ValidationError reports every constraint a submission violates, not just
// the first. A Turn that produced one is never scored.
type ValidationError struct {
	Violations []string `json:"violations"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid turn: %s", strings.Join(e.Violations, "; "))
}

// ValidateTurn checks a raw submission against the argument schema and
// returns the full list of violations. Pure: no side effects, no lookups.
func ValidateTurn(turn *models.Turn) error {
	var violations []string

	if strings.TrimSpace(turn.IssueID) == "" {
		violations = append(violations, "issueId must not be empty")
	}
	if turn.Stance != models.StancePro && turn.Stance != models.StanceCon {
		violations = append(violations, fmt.Sprintf("stance must be %q or %q", models.StancePro, models.StanceCon))
	}
	if runeLen(turn.Issue) < minIssueLen {
		violations = append(violations, fmt.Sprintf("issue must be at least %d characters", minIssueLen))
	}
	if runeLen(turn.Rule) < minRuleLen {
		violations = append(violations, fmt.Sprintf("rule must be at least %d characters", minRuleLen))
	}
	if runeLen(turn.Application) < minApplicationLen {
		violations = append(violations, fmt.Sprintf("application must be at least %d characters", minApplicationLen))
	}
	if runeLen(turn.Conclusion) < minConclusionLen {
		violations = append(violations, fmt.Sprintf("conclusion must be at least %d characters", minConclusionLen))
	}
	if len(turn.CitedFacts) == 0 {
		violations = append(violations, "citedFacts must have at least one entry")
	}
	if len(turn.CitedLaws) == 0 {
		violations = append(violations, "citedLaws must have at least one entry")
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
