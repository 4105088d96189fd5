package orchestrator

import (
	"fmt"
	"math"

	"github.com/mockpanel/mockpanel/internal/models"
)

const maxHighlights = 5

// Summarize aggregates per-response grades into the session report. Pure
// and idempotent: identical input always yields identical output and the
// input grades are never modified.
func Summarize(sessionID string, mode models.InterviewMode, grades []models.Grade) models.SessionAnalytics {
	out := models.SessionAnalytics{
		SessionID:     sessionID,
		ResponseCount: len(grades),
	}

	if mode == models.ModePractice {
		out.PerformanceSummary = "Practice session completed. No grading is performed in practice mode."
		return out
	}

	if len(grades) == 0 {
		out.PerformanceSummary = "No responses were recorded during this session, so no performance scores could be computed."
		return out
	}

	var overall, confidence, clarity, relevance int
	for _, g := range grades {
		overall += g.Overall
		confidence += g.Confidence
		clarity += g.Clarity
		relevance += g.Relevance
	}
	n := len(grades)
	out.OverallGrade = roundMean(overall, n)
	out.ConfidenceScore = roundMean(confidence, n)
	out.ClarityScore = roundMean(clarity, n)
	out.RelevanceScore = roundMean(relevance, n)

	out.Strengths = dedupCap(grades, func(g models.Grade) []string { return g.Strengths })
	out.Improvements = dedupCap(grades, func(g models.Grade) []string { return g.Improvements })

	out.PerformanceSummary = performanceText(out)
	return out
}

// roundMean is the half-up rounded arithmetic mean.
func roundMean(sum, n int) int {
	return int(math.Floor(float64(sum)/float64(n) + 0.5))
}

// dedupCap unions the per-response lists in chronological order, drops
// duplicates, and keeps the first maxHighlights distinct entries.
func dedupCap(grades []models.Grade, pick func(models.Grade) []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, maxHighlights)
	for _, g := range grades {
		for _, s := range pick(g) {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if len(out) == maxHighlights {
				return out
			}
		}
	}
	return out
}

func performanceText(a models.SessionAnalytics) string {
	var base string
	switch {
	case a.OverallGrade >= 90:
		base = fmt.Sprintf("Excellent performance with an overall score of %d.", a.OverallGrade)
	case a.OverallGrade >= 80:
		base = fmt.Sprintf("Good performance with an overall score of %d.", a.OverallGrade)
	case a.OverallGrade >= 70:
		base = fmt.Sprintf("Solid performance with an overall score of %d, with clear room to grow.", a.OverallGrade)
	case a.OverallGrade > 0:
		base = fmt.Sprintf("You scored %d overall. Keep practicing; interview skills improve quickly with repetition.", a.OverallGrade)
	default:
		return "No performance scores were recorded for this session."
	}

	if len(a.Strengths) > 0 {
		base += fmt.Sprintf(" A notable strength: %s.", a.Strengths[0])
	}
	if len(a.Improvements) > 0 {
		base += fmt.Sprintf(" Main area to work on: %s.", a.Improvements[0])
	}
	return base
}
