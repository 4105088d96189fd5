package orchestrator

import (
	"fmt"
	"strings"

	"github.com/mockpanel/mockpanel/internal/models"
)

func personaSystemPrompt(p models.Persona, cfg models.InterviewConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s conducting a %s interview", p.Name, p.Role, cfg.ScenarioType)
	if cfg.Position != "" {
		fmt.Fprintf(&b, " for the position of %s", cfg.Position)
	}
	b.WriteString(". ")
	switch p.Style {
	case models.StyleFriendly:
		b.WriteString("Your questioning style is warm and encouraging. ")
	case models.StyleTough:
		b.WriteString("Your questioning style is demanding and probing; you push for specifics. ")
	default:
		b.WriteString("Your questioning style is professional and neutral. ")
	}
	if len(p.FocusAreas) > 0 {
		fmt.Fprintf(&b, "You focus on: %s. ", strings.Join(p.FocusAreas, ", "))
	}
	b.WriteString("Speak in first person, as spoken dialogue. Reply with the spoken text only, no labels, no quotes, no stage directions.")
	return b.String()
}

func greetingPrompt(p models.Persona, cfg models.InterviewConfig) string {
	var b strings.Builder
	b.WriteString("Open the interview. Introduce yourself by name and role")
	others := coInterviewers(p, cfg.Personas)
	if others != "" {
		fmt.Fprintf(&b, ", mention that %s will also be asking questions", others)
	}
	if cfg.Position != "" {
		fmt.Fprintf(&b, ", and name the position (%s)", cfg.Position)
	}
	b.WriteString(". Finish by inviting the candidate to tell you about themselves. Keep it to 3-4 sentences.")
	return b.String()
}

func coInterviewers(active models.Persona, personas []models.Persona) string {
	var names []string
	for _, p := range personas {
		if p.ID != active.ID {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Role))
		}
	}
	return strings.Join(names, " and ")
}

func questionPrompt(p models.Persona, cfg models.InterviewConfig, state models.SessionState) string {
	var b strings.Builder
	b.WriteString("Ask the candidate one new interview question")
	if len(p.FocusAreas) > 0 {
		fmt.Fprintf(&b, " about one of your focus areas (%s)", strings.Join(p.FocusAreas, ", "))
	}
	b.WriteString(".")
	if cfg.DocumentContext != "" {
		fmt.Fprintf(&b, "\n\nCandidate background:\n%s\n", clip(cfg.DocumentContext, 2000))
	}
	if len(state.QuestionsAsked) > 0 {
		b.WriteString("\nDo not repeat any of these already-asked questions:\n")
		for _, q := range state.QuestionsAsked {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	b.WriteString("\nOne question only, conversational phrasing.")
	return b.String()
}

func acknowledgmentPrompt(answer string) string {
	return fmt.Sprintf(
		"The candidate just answered:\n%q\n\nGive a very short (one sentence) natural reaction to the answer. Do not ask anything.",
		clip(answer, 1200))
}

func followUpPrompt(question, answer string, reason FollowUpReason) string {
	var hint string
	switch reason {
	case ReasonTooBrief:
		hint = "The answer was too brief; ask them to elaborate with specifics."
	case ReasonProbingDeeper:
		hint = "Push deeper into the weakest part of the answer."
	default:
		hint = "Dig into the most interesting detail they mentioned."
	}
	return fmt.Sprintf(
		"You asked:\n%q\n\nThe candidate answered:\n%q\n\n%s Ask one follow-up question.",
		clip(question, 600), clip(answer, 1200), hint)
}

func closingPrompt(cfg models.InterviewConfig) string {
	return "Close the interview: thank the candidate for their time, tell them the panel will follow up with next steps, and wish them well. 2-3 sentences, no new questions."
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var metaPrefixes = []string{
	"here is your question:",
	"here's your question:",
	"here is the question:",
	"here is a question:",
	"sure,",
	"certainly,",
	"question:",
	"follow-up:",
	"followup:",
	"acknowledgment:",
}

// sanitizeGenerated strips the meta-commentary wrapping the model tends to
// add despite the prompt: leading "Here is your question:" style prefixes
// and whole-text quotation marks. The model is prompted for clean output
// but not trusted to produce it.
func sanitizeGenerated(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range metaPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			lower = strings.ToLower(s)
		}
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
