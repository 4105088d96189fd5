package orchestrator

import "github.com/mockpanel/mockpanel/internal/models"

// SelectPersona resolves the persona whose turn it is to speak next.
// Round-robin: the state's persona index advances once per new question, so
// across a session every configured persona gets a proportional share.
func SelectPersona(state models.SessionState, personas []models.Persona) models.Persona {
	return personas[state.PersonaIndex%len(personas)]
}

// AskingPersona resolves the persona who asked the pending question. The
// index has already advanced past a new question, so acknowledgments and
// follow-ups bind to the previous slot; a persona only ever follows up on
// its own question.
func AskingPersona(state models.SessionState, personas []models.Persona) models.Persona {
	n := len(personas)
	if state.PersonaIndex == 0 {
		return personas[0]
	}
	return personas[(state.PersonaIndex-1)%n]
}
