package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/orchestrator"
	"github.com/mockpanel/mockpanel/internal/providers/stt"
	mongorepo "github.com/mockpanel/mockpanel/internal/repositories/mongo"
	pgrepo "github.com/mockpanel/mockpanel/internal/repositories/postgres"
	"github.com/mockpanel/mockpanel/internal/utils"
)

// GradingStream is the Redis stream the grading worker pool consumes.
const GradingStream = "grading:stream"

// SessionEventChannel is the Redis pub/sub channel for one session's events.
func SessionEventChannel(sessionID string) string {
	return "session:" + sessionID + ":events"
}

// TurnPayload is what the turn endpoint returns to the client.
type TurnPayload struct {
	SessionID      string          `json:"session_id"`
	Text           string          `json:"text"`
	Type           models.TurnType `json:"type"`
	PersonaID      string          `json:"persona_id"`
	Acknowledgment string          `json:"acknowledgment,omitempty"`
	IsFollowUp     bool            `json:"is_follow_up"`
	Stage          string          `json:"stage"`
	ShouldWait     bool            `json:"should_wait_for_response"`
	Audio          []byte          `json:"audio,omitempty"` // base64 in JSON
	QuestionNumber int             `json:"question_number,omitempty"`
}

// SubmitResult reports what happened to a submitted answer.
type SubmitResult struct {
	SessionID      string  `json:"session_id"`
	ResponseID     string  `json:"response_id"`
	Transcript     string  `json:"transcript"`
	Confidence     float64 `json:"confidence,omitempty"`
	GradingQueued  bool    `json:"grading_queued"`
	ShouldEnd      bool    `json:"should_end"`
	QuestionsAsked int     `json:"questions_asked"`
}

type SessionService interface {
	Start(ctx context.Context, userID, interviewID string) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	NextTurn(ctx context.Context, sessionID string) (*TurnPayload, error)
	SubmitResponse(ctx context.Context, sessionID, text string, audio []byte, language string) (*SubmitResult, error)
	End(ctx context.Context, sessionID string) (*models.SessionAnalytics, error)
	Analytics(ctx context.Context, sessionID string) (*models.SessionAnalytics, error)
}

type sessionService struct {
	sessions   mongorepo.SessionRepository
	interviews InterviewService
	questions  pgrepo.QuestionRepository
	responses  pgrepo.ResponseRepository
	analytics  pgrepo.AnalyticsRepository
	convos     ConversationService

	engine *orchestrator.Engine
	stt    stt.Provider // optional
	redis  *redis.Client
	log    *logrus.Logger
}

func NewSessionService(
	sessions mongorepo.SessionRepository,
	interviews InterviewService,
	questions pgrepo.QuestionRepository,
	responses pgrepo.ResponseRepository,
	analytics pgrepo.AnalyticsRepository,
	convos ConversationService,
	engine *orchestrator.Engine,
	sttProvider stt.Provider,
	rdb *redis.Client,
	log *logrus.Logger,
) SessionService {
	if log == nil {
		log = logrus.New()
	}
	return &sessionService{
		sessions:   sessions,
		interviews: interviews,
		questions:  questions,
		responses:  responses,
		analytics:  analytics,
		convos:     convos,
		engine:     engine,
		stt:        sttProvider,
		redis:      rdb,
		log:        log,
	}
}

func (s *sessionService) Start(ctx context.Context, userID, interviewID string) (*models.Session, error) {
	const op = "SessionService.Start"

	if userID == "" || interviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and interview_id are required", nil)
	}

	cfg, err := s.interviews.Config(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if cfg.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "interview belongs to another user", nil)
	}

	now := time.Now().UTC()
	sessionID := uuid.NewString()
	sess := &models.Session{
		SessionID:   sessionID,
		UserID:      userID,
		InterviewID: interviewID,
		Status:      "active",
		State:       models.NewSessionState(interviewID, sessionID, now),
		CreatedAt:   now,
	}
	sess.State.MemorySessionID = uuid.NewString()

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	if err := s.interviews.SetStatus(ctx, interviewID, "active"); err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Warn("failed to mark interview active")
	}
	return sess, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return sess, nil
}

// NextTurn runs one orchestrator round-trip. Session state is only saved
// after the turn is produced and its records persisted, so a failed call
// leaves the session replayable.
func (s *sessionService) NextTurn(ctx context.Context, sessionID string) (*TurnPayload, error) {
	const op = "SessionService.NextTurn"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != "active" {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}

	cfg, err := s.interviews.Config(ctx, sess.InterviewID)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.GenerateTurn(ctx, *cfg, sess.State)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	switch res.Turn.Type {
	case models.TurnGreeting, models.TurnQuestion, models.TurnFollowUp:
		q := &models.QuestionRecord{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Text:      res.Turn.Text,
			Type:      res.Turn.Type,
			Number:    res.Next.QuestionCount,
			PersonaID: res.Turn.PersonaID,
			AskedAt:   now,
		}
		if err := s.questions.Insert(ctx, q); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist question", err)
		}
	}

	if s.convos != nil {
		if res.Acknowledgment != "" {
			s.appendConvo(ctx, sess, models.TurnAcknowledgment, res.Turn.PersonaID, res.Acknowledgment)
		}
		s.appendConvo(ctx, sess, res.Turn.Type, res.Turn.PersonaID, res.Turn.Text)
	}

	if err := s.sessions.SaveState(ctx, sessionID, res.Next); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save session state", err)
	}

	return &TurnPayload{
		SessionID:      sessionID,
		Text:           res.Turn.Text,
		Type:           res.Turn.Type,
		PersonaID:      res.Turn.PersonaID,
		Acknowledgment: res.Acknowledgment,
		IsFollowUp:     res.IsFollowUp,
		Stage:          string(res.Stage),
		ShouldWait:     res.Turn.ShouldWaitForResponse,
		Audio:          res.Turn.Audio,
		QuestionNumber: res.Next.QuestionCount,
	}, nil
}

func (s *sessionService) SubmitResponse(ctx context.Context, sessionID, text string, audio []byte, language string) (*SubmitResult, error) {
	const op = "SessionService.SubmitResponse"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != "active" {
		return nil, utils.E(utils.CodeConflict, op, "session is not active", nil)
	}
	if sess.State.LastQuestion() == "" {
		return nil, utils.E(utils.CodeConflict, op, "no question is pending for this session", nil)
	}

	cfg, err := s.interviews.Config(ctx, sess.InterviewID)
	if err != nil {
		return nil, err
	}

	var confidence float64
	if text == "" && len(audio) > 0 {
		if s.stt == nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, "audio answers are not supported: no transcription backend", nil)
		}
		text, _, confidence, err = s.stt.Transcribe(ctx, audio, language)
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to transcribe answer", err)
		}
	}
	if text == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "answer text or audio is required", nil)
	}

	questionID, questionText := s.pendingQuestion(ctx, sess)

	now := time.Now().UTC()
	status := "skipped" // practice mode is never graded
	if cfg.Mode == models.ModeGraded {
		status = "pending"
	}
	record := &models.ResponseRecord{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		QuestionID:  questionID,
		Text:        text,
		GradeStatus: status,
		AnsweredAt:  now,
	}
	if err := s.responses.Insert(ctx, record); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist response", err)
	}

	next := sess.State.WithCandidateResponse(text, now)
	if err := s.sessions.SaveState(ctx, sessionID, next); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save session state", err)
	}

	if s.convos != nil {
		s.appendConvo(ctx, sess, "", "", text)
	}

	queued := false
	if cfg.Mode == models.ModeGraded && s.redis != nil {
		persona := orchestrator.AskingPersona(sess.State, cfg.Personas)
		err := s.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: GradingStream,
			Values: map[string]any{
				"session_id":  sessionID,
				"response_id": record.ID,
				"question":    questionText,
				"answer":      text,
				"persona_id":  persona.ID,
			},
		}).Err()
		if err != nil {
			// Grading is asynchronous and retryable; the answer itself is safe.
			s.log.WithError(err).WithField("response_id", record.ID).Error("failed to enqueue grading job")
		} else {
			queued = true
		}
	}

	return &SubmitResult{
		SessionID:      sessionID,
		ResponseID:     record.ID,
		Transcript:     text,
		Confidence:     confidence,
		GradingQueued:  queued,
		ShouldEnd:      orchestrator.ShouldEndSession(next, *cfg, time.Now().UTC()),
		QuestionsAsked: next.QuestionCount,
	}, nil
}

// pendingQuestion resolves the persisted record of the question the answer
// belongs to. Falls back to state when the lookup fails: grading can still
// proceed from the question text alone.
func (s *sessionService) pendingQuestion(ctx context.Context, sess *models.Session) (id, text string) {
	text = sess.State.LastQuestion()
	rows, err := s.questions.ListBySession(ctx, sess.SessionID)
	if err != nil || len(rows) == 0 {
		if err != nil {
			s.log.WithError(err).WithField("session_id", sess.SessionID).Warn("failed to resolve pending question record")
		}
		return "", text
	}
	last := rows[len(rows)-1]
	return last.ID, last.Text
}

func (s *sessionService) End(ctx context.Context, sessionID string) (*models.SessionAnalytics, error) {
	const op = "SessionService.End"

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.interviews.Config(ctx, sess.InterviewID)
	if err != nil {
		return nil, err
	}

	rows, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load responses", err)
	}

	grades := make([]models.Grade, 0, len(rows))
	for _, r := range rows {
		if cfg.Mode == models.ModeGraded && r.GradeStatus != "done" {
			// Ungraded responses still count toward the total but carry
			// zero scores; the worker may simply not have finished.
			grades = append(grades, models.Grade{})
			continue
		}
		grades = append(grades, r.Grade())
	}

	report := orchestrator.Summarize(sessionID, cfg.Mode, grades)
	report.ID = uuid.NewString()
	report.UserID = sess.UserID
	report.CreatedAt = time.Now().UTC()

	if err := s.analytics.Insert(ctx, &report); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist analytics", err)
	}

	now := time.Now().UTC()
	dur := int64(now.Sub(sess.CreatedAt).Seconds())
	if dur < 0 {
		dur = 0
	}
	if err := s.sessions.End(ctx, sessionID, now, dur); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end session", err)
	}
	if err := s.interviews.SetStatus(ctx, sess.InterviewID, "completed"); err != nil {
		s.log.WithError(err).WithField("interview_id", sess.InterviewID).Warn("failed to mark interview completed")
	}

	if s.redis != nil {
		_ = s.redis.Publish(ctx, SessionEventChannel(sessionID), `{"type":"session_ended"}`).Err()
	}

	// The stored row is canonical: a concurrent End may have won the
	// insert, and both callers must observe the same report.
	stored, err := s.analytics.GetBySessionID(ctx, sessionID)
	if err != nil {
		return &report, nil
	}
	return stored, nil
}

func (s *sessionService) Analytics(ctx context.Context, sessionID string) (*models.SessionAnalytics, error) {
	const op = "SessionService.Analytics"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	a, err := s.analytics.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "analytics not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get analytics", err)
	}
	return a, nil
}

func (s *sessionService) appendConvo(ctx context.Context, sess *models.Session, turnType models.TurnType, personaID, text string) {
	speaker := string(models.SpeakerInterviewer)
	if turnType == "" && personaID == "" {
		speaker = string(models.SpeakerCandidate)
	}
	if _, err := s.convos.Append(ctx, sess.UserID, sess.SessionID, speaker, string(turnType), personaID, text); err != nil {
		s.log.WithError(err).WithField("session_id", sess.SessionID).Warn("failed to append conversation log")
	}
}
