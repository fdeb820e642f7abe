package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// RuleCheckResult is the outcome of the external rule-alignment check.
// Checked=false means the check was skipped (unavailable, failed or timed
// out) and the caller must proceed as if it never ran.
type RuleCheckResult struct {
	Checked bool
	Aligned bool
}

// RuleChecker cross-checks a stated rule against a cited statute's text.
type RuleChecker interface {
	CheckRuleAlignment(ctx context.Context, rule, lawText string) RuleCheckResult
}

// GeminiRuleChecker asks Gemini whether the learner's stated rule matches the
// statute. Every call is bounded by a timeout and fails open.
type GeminiRuleChecker struct {
	Timeout time.Duration
}

// NewGeminiRuleChecker returns a checker with the given timeout (seconds).
func NewGeminiRuleChecker(timeoutSec int) *GeminiRuleChecker {
	return &GeminiRuleChecker{Timeout: time.Duration(timeoutSec) * time.Second}
}

// CheckRuleAlignment implements RuleChecker.
func (c *GeminiRuleChecker) CheckRuleAlignment(ctx context.Context, rule, lawText string) RuleCheckResult {
	if geminiClient == nil {
		return RuleCheckResult{}
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		`Act as a legal instructor. A learner stated the following rule of law:
"%s"

The statute they cited reads:
"%s"

Does the stated rule fairly restate the cited statute?

Required Output Format (JSON):
{"aligned": true}

Provide ONLY the JSON output without additional text or markdown formatting.`,
		rule, lawText,
	)

	response, err := generateDefaultModelText(checkCtx, prompt)
	if err != nil {
		log.Printf("rule alignment check skipped: %v", err)
		return RuleCheckResult{}
	}

	var parsed struct {
		Aligned bool `json:"aligned"`
	}
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		log.Printf("rule alignment check returned unparseable output: %v", err)
		return RuleCheckResult{}
	}

	return RuleCheckResult{Checked: true, Aligned: parsed.Aligned}
}
