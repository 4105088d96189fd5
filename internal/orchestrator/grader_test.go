package orchestrator

import (
	"context"
	"testing"

	"github.com/mockpanel/mockpanel/internal/models"
)

func TestGrader_PracticeModeNeverCallsCollaborator(t *testing.T) {
	l := &fakeLLM{}
	g := NewGrader(l, nil)

	grade, err := g.Evaluate(context.Background(), models.ModePractice, "q", "a", models.Persona{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if grade.Overall != 0 || grade.Confidence != 0 || grade.Clarity != 0 || grade.Relevance != 0 {
		t.Fatalf("practice grade must be zero, got %+v", grade)
	}
	if len(l.prompts) != 0 {
		t.Fatalf("collaborator was called %d times in practice mode", len(l.prompts))
	}
}

func TestGrader_ParsesGradedResponse(t *testing.T) {
	l := &fakeLLM{reply: "```json\n" +
		`{"overall":82,"confidence":78,"clarity":85,"relevance":140,"strengths":["specific examples"],"improvements":["quantify impact"]}` +
		"\n```"}
	g := NewGrader(l, nil)

	grade, err := g.Evaluate(context.Background(), models.ModeGraded, "q", "a", models.Persona{Name: "Dana", Role: "EM"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if grade.Overall != 82 || grade.Confidence != 78 || grade.Clarity != 85 {
		t.Fatalf("unexpected scores: %+v", grade)
	}
	if grade.Relevance != 100 {
		t.Fatalf("relevance should clamp to 100, got %d", grade.Relevance)
	}
	if len(grade.Strengths) != 1 || grade.Strengths[0] != "specific examples" {
		t.Fatalf("strengths: %v", grade.Strengths)
	}
}

func TestParseGrade_RejectsNonJSON(t *testing.T) {
	if _, err := parseGrade("the candidate did fine"); err == nil {
		t.Fatal("expected parse error")
	}
}
