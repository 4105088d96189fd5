package orchestrator

import (
	"math/rand"
	"strings"

	"github.com/mockpanel/mockpanel/internal/models"
)

type FollowUpReason string

const (
	ReasonTooBrief           FollowUpReason = "response_too_brief"
	ReasonProbingDeeper      FollowUpReason = "probing_deeper"
	ReasonInterestingContent FollowUpReason = "interesting_content"
)

// FollowUpDecision is computed fresh per turn from the most recent
// question/answer pair; it is never persisted.
type FollowUpDecision struct {
	FollowUp bool           `json:"follow_up"`
	Reason   FollowUpReason `json:"reason,omitempty"`
}

// FollowUpParams are the tunable knobs of the heuristic.
type FollowUpParams struct {
	MinAnswerWords     int
	ToughProbability   float64
	KeywordProbability float64
	Keywords           []string
}

func DefaultFollowUpParams() FollowUpParams {
	return FollowUpParams{
		MinAnswerWords:     15,
		ToughProbability:   0.5,
		KeywordProbability: 0.4,
		Keywords:           []string{"challenge", "difficult", "problem", "solution", "team", "conflict"},
	}
}

// Heuristic decides whether to probe the candidate's last answer. The
// random source is injected so the probabilistic branches are testable
// with a fixed seed.
type Heuristic struct {
	params FollowUpParams
	rng    *rand.Rand
}

func NewHeuristic(params FollowUpParams, rng *rand.Rand) *Heuristic {
	if params.MinAnswerWords <= 0 {
		params = DefaultFollowUpParams()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Heuristic{params: params, rng: rng}
}

// ShouldFollowUp evaluates the branches in priority order; the first hit
// wins. A short answer always triggers, with no randomness.
func (h *Heuristic) ShouldFollowUp(question, answer string, style models.PersonaStyle) FollowUpDecision {
	if len(strings.Fields(answer)) < h.params.MinAnswerWords {
		return FollowUpDecision{FollowUp: true, Reason: ReasonTooBrief}
	}

	if style == models.StyleTough && h.rng.Float64() < h.params.ToughProbability {
		return FollowUpDecision{FollowUp: true, Reason: ReasonProbingDeeper}
	}

	lower := strings.ToLower(answer)
	for _, kw := range h.params.Keywords {
		if strings.Contains(lower, kw) {
			if h.rng.Float64() < h.params.KeywordProbability {
				return FollowUpDecision{FollowUp: true, Reason: ReasonInterestingContent}
			}
			break
		}
	}

	return FollowUpDecision{}
}
