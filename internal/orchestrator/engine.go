package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/providers/llm"
	"github.com/mockpanel/mockpanel/internal/providers/tts"
	"github.com/mockpanel/mockpanel/internal/utils"
)

const (
	questionTemperature = 0.7
	questionMaxTokens   = 300
	ackMaxTokens        = 80

	generateTimeout  = 13 * time.Second
	synthesisTimeout = 30 * time.Second

	voiceStability       = 0.4
	voiceSimilarityBoost = 0.7
)

// Engine produces conversational turns. It is stateless between calls: all
// mutable session state lives in the caller-supplied SessionState, and a
// failed call returns the input state unchanged.
type Engine struct {
	llm       llm.Provider
	tts       tts.Synthesizer
	heuristic *Heuristic
	log       *logrus.Logger

	now func() time.Time
}

func NewEngine(provider llm.Provider, synth tts.Synthesizer, heuristic *Heuristic, log *logrus.Logger) *Engine {
	if synth == nil {
		synth = tts.Nop{}
	}
	if heuristic == nil {
		heuristic = NewHeuristic(DefaultFollowUpParams(), nil)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Engine{llm: provider, tts: synth, heuristic: heuristic, log: log, now: time.Now}
}

// TurnResult bundles one produced turn with the post-turn session state.
// Next is the state the caller should persist once the turn is delivered;
// on error the caller keeps its original state.
type TurnResult struct {
	Turn           models.ConversationalTurn
	Acknowledgment string
	IsFollowUp     bool
	FollowUpReason FollowUpReason
	Stage          Stage
	Next           models.SessionState
}

// GenerateTurn classifies the stage, picks the active persona, and produces
// the next turn: a greeting on the very first call, a closing once the
// question or time budget is nearly spent, and otherwise an acknowledgment
// of the previous answer plus either a follow-up or a new question.
func (e *Engine) GenerateTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState) (*TurnResult, error) {
	const op = "Engine.GenerateTurn"

	if len(cfg.Personas) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one persona is required", nil)
	}
	if cfg.DurationMinutes <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration must be positive", nil)
	}

	now := e.now()
	stage := ClassifyStage(
		state.QuestionCount,
		MaxQuestions(cfg.DurationMinutes),
		state.ElapsedMinutes(now),
		float64(cfg.DurationMinutes),
	)

	switch stage {
	case StageOpening:
		return e.openingTurn(ctx, cfg, state, now)
	case StageClosing:
		return e.closingTurn(ctx, cfg, state, now)
	default:
		return e.mainTurn(ctx, cfg, state, now)
	}
}

func (e *Engine) openingTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState, now time.Time) (*TurnResult, error) {
	persona := SelectPersona(state, cfg.Personas)

	text, err := e.generate(ctx, personaSystemPrompt(persona, cfg), greetingPrompt(persona, cfg), questionMaxTokens)
	if err != nil {
		return nil, err
	}

	turn := models.ConversationalTurn{
		Text:                  text,
		Type:                  models.TurnGreeting,
		PersonaID:             persona.ID,
		ShouldWaitForResponse: true,
	}
	turn.Audio = e.synthesize(ctx, persona, "", text)

	return &TurnResult{
		Turn:  turn,
		Stage: StageOpening,
		Next:  state.WithInterviewerTurn(turn, now),
	}, nil
}

func (e *Engine) closingTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState, now time.Time) (*TurnResult, error) {
	persona := SelectPersona(state, cfg.Personas)

	text, err := e.generate(ctx, personaSystemPrompt(persona, cfg), closingPrompt(cfg), questionMaxTokens)
	if err != nil {
		// A closing is decorative in the same way an acknowledgment is:
		// fall back to a fixed line rather than failing the session end.
		e.log.WithError(err).Warn("closing generation failed, using fallback text")
		text = "Thank you so much for your time today. We will be in touch with next steps soon. Best of luck!"
	}

	turn := models.ConversationalTurn{
		Text:                  text,
		Type:                  models.TurnClosing,
		PersonaID:             persona.ID,
		ShouldWaitForResponse: false,
	}
	turn.Audio = e.synthesize(ctx, persona, "", text)

	return &TurnResult{
		Turn:  turn,
		Stage: StageClosing,
		Next:  state.WithInterviewerTurn(turn, now),
	}, nil
}

func (e *Engine) mainTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState, now time.Time) (*TurnResult, error) {
	asking := AskingPersona(state, cfg.Personas)

	var decision FollowUpDecision
	var ackCh chan string

	if state.HasPendingAnswer() {
		decision = e.heuristic.ShouldFollowUp(state.LastQuestion(), state.LastResponse(), asking.Style)

		// The acknowledgment does not depend on the question text, so
		// generate it concurrently to bound end-to-end latency. Its
		// failure is swallowed: acknowledgments are cosmetic.
		ackCh = make(chan string, 1)
		go func(answer string) {
			text, err := e.generate(ctx, personaSystemPrompt(asking, cfg), acknowledgmentPrompt(answer), ackMaxTokens)
			if err != nil {
				e.log.WithError(err).Warn("acknowledgment generation failed, omitting")
				ackCh <- ""
				return
			}
			ackCh <- text
		}(state.LastResponse())
	}

	var (
		turn models.ConversationalTurn
		err  error
	)
	if decision.FollowUp {
		turn, err = e.followUpTurn(ctx, cfg, state, asking, decision.Reason)
	} else {
		turn, err = e.questionTurn(ctx, cfg, state)
	}

	var ack string
	if ackCh != nil {
		ack = <-ackCh
	}
	if err != nil {
		// No question means no turn; state is untouched and retry is safe.
		return nil, err
	}

	next := state
	if ack != "" {
		next = next.WithAcknowledgment(ack, now)
	}
	next = next.WithInterviewerTurn(turn, now)

	speaker := asking
	if turn.Type == models.TurnQuestion {
		speaker = SelectPersona(state, cfg.Personas)
	}
	turn.Audio = e.synthesize(ctx, speaker, ack, turn.Text)

	return &TurnResult{
		Turn:           turn,
		Acknowledgment: ack,
		IsFollowUp:     decision.FollowUp,
		FollowUpReason: decision.Reason,
		Stage:          StageMain,
		Next:           next,
	}, nil
}

func (e *Engine) questionTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState) (models.ConversationalTurn, error) {
	persona := SelectPersona(state, cfg.Personas)

	text, err := e.generate(ctx, personaSystemPrompt(persona, cfg), questionPrompt(persona, cfg, state), questionMaxTokens)
	if err != nil {
		return models.ConversationalTurn{}, err
	}

	return models.ConversationalTurn{
		Text:                  text,
		Type:                  models.TurnQuestion,
		PersonaID:             persona.ID,
		ShouldWaitForResponse: true,
	}, nil
}

func (e *Engine) followUpTurn(ctx context.Context, cfg models.InterviewConfig, state models.SessionState, persona models.Persona, reason FollowUpReason) (models.ConversationalTurn, error) {
	text, err := e.generate(ctx, personaSystemPrompt(persona, cfg), followUpPrompt(state.LastQuestion(), state.LastResponse(), reason), questionMaxTokens)
	if err != nil {
		return models.ConversationalTurn{}, err
	}

	return models.ConversationalTurn{
		Text:                  text,
		Type:                  models.TurnFollowUp,
		PersonaID:             persona.ID,
		ShouldWaitForResponse: true,
	}, nil
}

func (e *Engine) generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	const op = "Engine.generate"

	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	raw, err := e.llm.Generate(gctx, system, user, maxTokens, questionTemperature)
	if err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "text generation unavailable", err)
	}

	text := sanitizeGenerated(raw)
	if text == "" {
		return "", utils.E(utils.CodeUnavailable, op, "text generation returned empty output", nil)
	}
	return text, nil
}

// synthesize renders the acknowledgment (if any) and the main turn text as
// one continuous utterance. Synthesis failure is never fatal: the turn is
// returned without audio.
func (e *Engine) synthesize(ctx context.Context, persona models.Persona, ack, text string) []byte {
	if persona.VoiceID == "" {
		return nil
	}

	utterance := text
	if ack != "" {
		utterance = ack + " " + text
	}

	sctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	audio, err := e.tts.Synthesize(sctx, utterance, persona.VoiceID, voiceStability, voiceSimilarityBoost)
	if err != nil {
		e.log.WithError(err).WithField("voice_id", persona.VoiceID).Warn("speech synthesis failed, returning text only")
		return nil
	}
	return audio
}
