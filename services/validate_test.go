package services

import (
	"strings"
	"testing"

	"lexhub/models"
)

func TestValidateTurnCollectsAllViolations(t *testing.T) {
	err := ValidateTurn(&models.Turn{})
	if err == nil {
		t.Fatal("expected a validation error for an empty turn")
	}
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	// issueId, stance, the four IRAC lengths, and both citation lists.
	if len(vErr.Violations) != 8 {
		t.Errorf("expected 8 violations, got %d: %v", len(vErr.Violations), vErr.Violations)
	}
}

func TestValidateTurnAcceptsValidTurn(t *testing.T) {
	if err := ValidateTurn(validTurn()); err != nil {
		t.Errorf("valid turn rejected: %v", err)
	}
}

func TestValidateTurnSingleViolation(t *testing.T) {
	turn := validTurn()
	turn.CitedFacts = nil

	err := ValidateTurn(turn)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	vErr := err.(*ValidationError)
	if len(vErr.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %v", vErr.Violations)
	}
	if !strings.Contains(vErr.Violations[0], "citedFacts") {
		t.Errorf("violation should name citedFacts, got %q", vErr.Violations[0])
	}
}

func TestValidateTurnRejectsUnknownStance(t *testing.T) {
	turn := validTurn()
	turn.Stance = "neutral"

	err := ValidateTurn(turn)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	vErr := err.(*ValidationError)
	if len(vErr.Violations) != 1 || !strings.Contains(vErr.Violations[0], "stance") {
		t.Errorf("expected a single stance violation, got %v", vErr.Violations)
	}
}

func TestValidateTurnCountsRunesNotBytes(t *testing.T) {
	turn := validTurn()
	// Ten CJK runes pass the issue minimum even though the byte count of a
	// single rune would.
	turn.Issue = "违约责任是否成立待定"
	if err := ValidateTurn(turn); err != nil {
		t.Errorf("10-rune issue rejected: %v", err)
	}

	turn.Issue = "违约责任"
	if err := ValidateTurn(turn); err == nil {
		t.Error("4-rune issue should be rejected")
	}
}
