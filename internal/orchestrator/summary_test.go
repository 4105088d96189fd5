package orchestrator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mockpanel/mockpanel/internal/models"
)

func TestSummarize_PracticeModeAllZero(t *testing.T) {
	grades := []models.Grade{
		{Overall: 95, Confidence: 90, Clarity: 88, Relevance: 92, Strengths: []string{"clear structure"}},
	}

	a := Summarize("s1", models.ModePractice, grades)
	if a.OverallGrade != 0 || a.ConfidenceScore != 0 || a.ClarityScore != 0 || a.RelevanceScore != 0 {
		t.Fatalf("practice mode must zero all scores, got %+v", a)
	}
	if len(a.Strengths) != 0 || len(a.Improvements) != 0 {
		t.Fatalf("practice mode must not carry highlights, got %+v", a)
	}
	if a.PerformanceSummary == "" {
		t.Fatal("practice mode still needs a completion message")
	}
	if a.ResponseCount != 1 {
		t.Fatalf("response count = %d, want 1", a.ResponseCount)
	}
}

func TestSummarize_GradedNoResponses(t *testing.T) {
	a := Summarize("s1", models.ModeGraded, nil)
	if a.OverallGrade != 0 || a.ResponseCount != 0 {
		t.Fatalf("unexpected analytics: %+v", a)
	}
	if a.PerformanceSummary == "" {
		t.Fatal("expected explicit no-responses message")
	}
}

func TestSummarize_MeanIsRoundedHalfUp(t *testing.T) {
	grades := []models.Grade{
		{Overall: 80, Confidence: 70, Clarity: 71, Relevance: 50},
		{Overall: 90, Confidence: 71, Clarity: 72, Relevance: 51},
	}

	a := Summarize("s1", models.ModeGraded, grades)
	if a.OverallGrade != 85 {
		t.Fatalf("overall = %d, want 85", a.OverallGrade)
	}
	// 70.5 and 71.5 both round half-up
	if a.ConfidenceScore != 71 {
		t.Fatalf("confidence = %d, want 71", a.ConfidenceScore)
	}
	if a.ClarityScore != 72 {
		t.Fatalf("clarity = %d, want 72", a.ClarityScore)
	}
	if a.RelevanceScore != 51 {
		t.Fatalf("relevance = %d, want 51", a.RelevanceScore)
	}
}

func TestSummarize_HighlightsDedupedAndCapped(t *testing.T) {
	grades := []models.Grade{
		{Overall: 80, Strengths: []string{"a", "b", "a"}, Improvements: []string{"x"}},
		{Overall: 80, Strengths: []string{"b", "c", "d", "e", "f", "g"}, Improvements: []string{"x", "y"}},
	}

	a := Summarize("s1", models.ModeGraded, grades)
	want := []string{"a", "b", "c", "d", "e"}
	if len(a.Strengths) != len(want) {
		t.Fatalf("strengths = %v, want %v", a.Strengths, want)
	}
	for i := range want {
		if a.Strengths[i] != want[i] {
			t.Fatalf("strengths = %v, want %v", a.Strengths, want)
		}
	}
	if len(a.Improvements) != 2 || a.Improvements[0] != "x" || a.Improvements[1] != "y" {
		t.Fatalf("improvements = %v, want [x y]", a.Improvements)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	grades := []models.Grade{
		{Overall: 77, Confidence: 70, Clarity: 80, Relevance: 75, Strengths: []string{"detail"}, Improvements: []string{"pace"}},
		{Overall: 83, Confidence: 81, Clarity: 79, Relevance: 90, Strengths: []string{"energy"}},
	}

	first, err := json.Marshal(Summarize("s1", models.ModeGraded, grades))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Summarize("s1", models.ModeGraded, grades))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("Summarize is not idempotent:\n%s\n%s", first, second)
	}
	// input grades must be untouched
	if grades[0].Overall != 77 || len(grades[0].Strengths) != 1 {
		t.Fatalf("input grades were mutated: %+v", grades[0])
	}
}

func TestSummarize_PerformanceBands(t *testing.T) {
	cases := []struct {
		overall int
		wantSub string
	}{
		{95, "Excellent"},
		{85, "Good"},
		{72, "Solid"},
		{40, "Keep practicing"},
	}
	for _, c := range cases {
		a := Summarize("s1", models.ModeGraded, []models.Grade{{Overall: c.overall, Strengths: []string{"focus"}, Improvements: []string{"brevity"}}})
		if a.PerformanceSummary == "" || !containsFold(a.PerformanceSummary, c.wantSub) {
			t.Fatalf("overall=%d: summary %q does not mention %q", c.overall, a.PerformanceSummary, c.wantSub)
		}
		if !containsFold(a.PerformanceSummary, "focus") {
			t.Fatalf("overall=%d: summary %q does not reference top strength", c.overall, a.PerformanceSummary)
		}
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
