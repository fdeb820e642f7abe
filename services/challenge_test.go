package services

import (
	"strings"
	"testing"

	"lexhub/models"
)

func scoreWith(gaps []string, dims models.RubricDimensions) *models.RubricScore {
	return &models.RubricScore{Dims: dims, Gaps: gaps}
}

func TestGenerateChallengeCounterTargetsFirstGap(t *testing.T) {
	score := scoreWith([]string{"造成实际损失", "不存在免责事由"}, dimsWith(80, 80, 70, 80, 80))

	ch := GenerateChallenge(score, models.HardnessMedium)
	if ch.Kind != models.ChallengeCounter {
		t.Fatalf("gaps should produce a counter challenge, got %q", ch.Kind)
	}
	if ch.TargetElement != "造成实际损失" {
		t.Errorf("counter should target the first gap, got %q", ch.TargetElement)
	}
	if !strings.Contains(ch.Prompt, "造成实际损失") {
		t.Errorf("prompt should name the gap, got %q", ch.Prompt)
	}
}

func TestGenerateChallengeHardModeCompoundsGaps(t *testing.T) {
	score := scoreWith([]string{"造成实际损失", "不存在免责事由"}, dimsWith(80, 80, 70, 80, 80))

	ch := GenerateChallenge(score, models.HardnessHard)
	if !strings.Contains(ch.Prompt, "造成实际损失") || !strings.Contains(ch.Prompt, "不存在免责事由") {
		t.Errorf("hard mode should compound both gaps into one prompt, got %q", ch.Prompt)
	}
}

func TestGenerateChallengeClarificationForMuddyConclusion(t *testing.T) {
	score := scoreWith(nil, dimsWith(80, 80, 80, 80, 60))

	ch := GenerateChallenge(score, models.HardnessMedium)
	if ch.Kind != models.ChallengeClarification {
		t.Errorf("a weak conclusion without gaps should produce a clarification, got %q", ch.Kind)
	}
}

func TestGenerateChallengeHypotheticalForSolidTurn(t *testing.T) {
	score := scoreWith(nil, dimsWith(90, 85, 88, 55, 92))

	ch := GenerateChallenge(score, models.HardnessMedium)
	if ch.Kind != models.ChallengeHypothetical {
		t.Fatalf("a solid turn should produce a hypothetical, got %q", ch.Kind)
	}
	if ch.TargetElement != "citation" {
		t.Errorf("hypothetical should probe the weakest dimension, got %q", ch.TargetElement)
	}
}

func TestGenerateChallengeVariesByHardness(t *testing.T) {
	score := scoreWith([]string{"存在违约行为"}, dimsWith(80, 80, 70, 80, 80))

	easy := GenerateChallenge(score, models.HardnessEasy)
	hard := GenerateChallenge(score, models.HardnessHard)
	if easy.Prompt == hard.Prompt {
		t.Error("easy and hard prompts should differ for the same score")
	}
}
