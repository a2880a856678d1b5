package claimguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewAcceptsWellAnchoredTerms(t *testing.T) {
	text := "Primary Injuries: lumbar strain, cervical sprain"
	anchors := func(term string) int {
		if term == "lumbar strain" {
			return 3
		}
		return 0
	}
	scrubbed, result := Review(text, anchors)
	assert.Contains(t, scrubbed, "lumbar strain")
	assert.NotContains(t, scrubbed, "cervical sprain")
	assert.Contains(t, result.AcceptedClaims, "lumbar strain")
	assert.Contains(t, result.RejectedClaims, "cervical sprain")
}

func TestReviewScrubsWhenNoTermSurvives(t *testing.T) {
	text := "Major Complications: infection"
	scrubbed, result := Review(text, func(string) int { return 0 })
	assert.Contains(t, scrubbed, "Insufficiently anchored")
	assert.Empty(t, result.AcceptedClaims)
}

func TestReviewScrubsBulletLinesMentioningRejectedTerms(t *testing.T) {
	text := "Major Complications: wound infection\n- wound infection noted by nurse\nPlan: follow up"
	scrubbed, result := Review(text, func(string) int { return 0 })
	assert.False(t, strings.Contains(scrubbed, "noted by nurse"))
	assert.Contains(t, scrubbed, "Plan: follow up")
	assert.Contains(t, result.RejectedClaims, "wound infection")
}

func TestReviewLeavesUnrelatedBulletLinesAlone(t *testing.T) {
	text := "Summary:\n- some unverified bullet claim\nPlan: follow up"
	scrubbed, _ := Review(text, func(string) int { return 0 })
	assert.Contains(t, scrubbed, "unverified bullet claim")
}

func TestReviewLeavesUnguardedFieldsAlone(t *testing.T) {
	text := "Patient Name: Jane Doe"
	scrubbed, result := Review(text, func(string) int { return 0 })
	assert.Contains(t, scrubbed, "Patient Name: Jane Doe")
	assert.Empty(t, result.AcceptedClaims)
	assert.Empty(t, result.RejectedClaims)
}
