package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/providers/llm"
	"github.com/mockpanel/mockpanel/internal/utils"
)

const (
	gradingTemperature = 0.3
	gradingMaxTokens   = 500
)

// Grader scores one candidate answer against the question that prompted it.
type Grader struct {
	llm llm.Provider
	log *logrus.Logger
}

func NewGrader(provider llm.Provider, log *logrus.Logger) *Grader {
	if log == nil {
		log = logrus.New()
	}
	return &Grader{llm: provider, log: log}
}

// Evaluate grades one (question, answer) pair. In practice mode it is a
// strict no-op: a zero Grade, no collaborator call.
func (g *Grader) Evaluate(ctx context.Context, mode models.InterviewMode, question, answer string, persona models.Persona) (models.Grade, error) {
	const op = "Grader.Evaluate"

	if mode == models.ModePractice {
		return models.Grade{}, nil
	}

	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	raw, err := g.llm.Generate(gctx, gradingSystemPrompt(persona), gradingPrompt(question, answer), gradingMaxTokens, gradingTemperature)
	if err != nil {
		return models.Grade{}, utils.E(utils.CodeUnavailable, op, "grading generation unavailable", err)
	}

	grade, err := parseGrade(raw)
	if err != nil {
		return models.Grade{}, utils.E(utils.CodeInternal, op, "failed to parse grade", err)
	}
	return grade, nil
}

func gradingSystemPrompt(p models.Persona) string {
	return fmt.Sprintf(
		"You are %s, a %s, grading one interview answer. Respond with JSON only, no prose: "+
			`{"overall":0-100,"confidence":0-100,"clarity":0-100,"relevance":0-100,"strengths":["..."],"improvements":["..."]}`,
		p.Name, p.Role)
}

func gradingPrompt(question, answer string) string {
	return fmt.Sprintf("Question:\n%s\n\nCandidate answer:\n%s", clip(question, 800), clip(answer, 3000))
}

type gradePayload struct {
	Overall      int      `json:"overall"`
	Confidence   int      `json:"confidence"`
	Clarity      int      `json:"clarity"`
	Relevance    int      `json:"relevance"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// parseGrade tolerates code-fence wrapping and surrounding prose around the
// JSON object.
func parseGrade(raw string) (models.Grade, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			s = s[i : j+1]
		}
	}

	var p gradePayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return models.Grade{}, err
	}

	return models.Grade{
		Overall:      clampScore(p.Overall),
		Confidence:   clampScore(p.Confidence),
		Clarity:      clampScore(p.Clarity),
		Relevance:    clampScore(p.Relevance),
		Strengths:    p.Strengths,
		Improvements: p.Improvements,
	}, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
