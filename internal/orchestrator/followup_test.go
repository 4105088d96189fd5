package orchestrator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/mockpanel/mockpanel/internal/models"
)

// ~40 words, none of them trigger keywords
func longNeutralAnswer() string {
	return "In my previous role I spent most of my time designing services, reviewing designs, mentoring junior engineers, " +
		"coordinating releases, and improving our deployment story, which taught me a great deal about ownership, " +
		"communication, prioritization, and delivering value steadily."
}

func TestShouldFollowUp_BriefAnswerAlwaysTriggers(t *testing.T) {
	answer := "I worked on a few backend services there" // 8 words

	for _, style := range []models.PersonaStyle{models.StyleFriendly, models.StyleNeutral, models.StyleTough} {
		for seed := int64(0); seed < 10; seed++ {
			h := NewHeuristic(DefaultFollowUpParams(), rand.New(rand.NewSource(seed)))
			d := h.ShouldFollowUp("Tell me about your last role.", answer, style)
			if !d.FollowUp || d.Reason != ReasonTooBrief {
				t.Fatalf("style=%s seed=%d: got %+v, want too-brief follow-up", style, seed, d)
			}
		}
	}
}

func TestShouldFollowUp_FriendlyLongNeutralAnswerNeverTriggers(t *testing.T) {
	answer := longNeutralAnswer()
	if n := len(strings.Fields(answer)); n < 15 {
		t.Fatalf("test answer too short: %d words", n)
	}

	for seed := int64(0); seed < 50; seed++ {
		h := NewHeuristic(DefaultFollowUpParams(), rand.New(rand.NewSource(seed)))
		if d := h.ShouldFollowUp("q", answer, models.StyleFriendly); d.FollowUp {
			t.Fatalf("seed=%d: unexpected follow-up %+v", seed, d)
		}
	}
}

func TestShouldFollowUp_ToughStyleProbabilistic(t *testing.T) {
	answer := longNeutralAnswer()

	params := DefaultFollowUpParams()
	params.ToughProbability = 1.0
	h := NewHeuristic(params, rand.New(rand.NewSource(1)))
	d := h.ShouldFollowUp("q", answer, models.StyleTough)
	if !d.FollowUp || d.Reason != ReasonProbingDeeper {
		t.Fatalf("p=1.0: got %+v, want probing-deeper follow-up", d)
	}

	params.ToughProbability = 0.0
	h = NewHeuristic(params, rand.New(rand.NewSource(1)))
	if d := h.ShouldFollowUp("q", answer, models.StyleTough); d.FollowUp {
		t.Fatalf("p=0.0: unexpected follow-up %+v", d)
	}
}

func TestShouldFollowUp_KeywordProbabilistic(t *testing.T) {
	answer := longNeutralAnswer() + " The hardest part was a production problem we diagnosed together."

	params := DefaultFollowUpParams()
	params.KeywordProbability = 1.0
	h := NewHeuristic(params, rand.New(rand.NewSource(2)))
	d := h.ShouldFollowUp("q", answer, models.StyleNeutral)
	if !d.FollowUp || d.Reason != ReasonInterestingContent {
		t.Fatalf("p=1.0: got %+v, want interesting-content follow-up", d)
	}

	params.KeywordProbability = 0.0
	h = NewHeuristic(params, rand.New(rand.NewSource(2)))
	if d := h.ShouldFollowUp("q", answer, models.StyleNeutral); d.FollowUp {
		t.Fatalf("p=0.0: unexpected follow-up %+v", d)
	}
}

func TestShouldFollowUp_KeywordMatchIsCaseInsensitive(t *testing.T) {
	answer := longNeutralAnswer() + " One CHALLENGE stood out among everything else that year."

	params := DefaultFollowUpParams()
	params.KeywordProbability = 1.0
	h := NewHeuristic(params, rand.New(rand.NewSource(3)))
	if d := h.ShouldFollowUp("q", answer, models.StyleNeutral); !d.FollowUp {
		t.Fatalf("expected case-insensitive keyword match, got %+v", d)
	}
}
