package services

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/orchestrator"
	"github.com/mockpanel/mockpanel/internal/utils"
)

type memSessionRepo struct {
	m map[string]*models.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: map[string]*models.Session{}}
}

func (r *memSessionRepo) Create(_ context.Context, s *models.Session) error {
	cp := *s
	r.m[s.SessionID] = &cp
	return nil
}

func (r *memSessionRepo) GetBySessionID(_ context.Context, id string) (*models.Session, error) {
	s, ok := r.m[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) SaveState(_ context.Context, id string, state models.SessionState) error {
	s, ok := r.m[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.State = state
	return nil
}

func (r *memSessionRepo) End(_ context.Context, id string, endedAt time.Time, dur int64) error {
	s, ok := r.m[id]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = "ended"
	s.EndedAt = &endedAt
	s.DurationSeconds = dur
	return nil
}

type memQuestionRepo struct {
	rows []models.QuestionRecord
}

func (r *memQuestionRepo) Insert(_ context.Context, q *models.QuestionRecord) error {
	r.rows = append(r.rows, *q)
	return nil
}

func (r *memQuestionRepo) ListBySession(_ context.Context, sessionID string) ([]models.QuestionRecord, error) {
	var out []models.QuestionRecord
	for _, q := range r.rows {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	return out, nil
}

type memResponseRepo struct {
	rows map[string]*models.ResponseRecord
}

func newMemResponseRepo() *memResponseRepo {
	return &memResponseRepo{rows: map[string]*models.ResponseRecord{}}
}

func (r *memResponseRepo) Insert(_ context.Context, resp *models.ResponseRecord) error {
	cp := *resp
	r.rows[resp.ID] = &cp
	return nil
}

func (r *memResponseRepo) GetByID(_ context.Context, id string) (*models.ResponseRecord, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memResponseRepo) ListBySession(_ context.Context, sessionID string) ([]models.ResponseRecord, error) {
	var out []models.ResponseRecord
	for _, row := range r.rows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *memResponseRepo) SetGradeStatus(_ context.Context, id, status string) error {
	row, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	row.GradeStatus = status
	return nil
}

func (r *memResponseRepo) SetGrade(_ context.Context, id string, grade models.Grade, status string) error {
	row, ok := r.rows[id]
	if !ok {
		return utils.ErrNotFound
	}
	row.GradeStatus = status
	row.OverallScore = grade.Overall
	row.ConfidenceScore = grade.Confidence
	row.ClarityScore = grade.Clarity
	row.RelevanceScore = grade.Relevance
	row.Strengths = grade.Strengths
	row.Improvements = grade.Improvements
	return nil
}

type memAnalyticsRepo struct {
	rows map[string]*models.SessionAnalytics
}

func newMemAnalyticsRepo() *memAnalyticsRepo {
	return &memAnalyticsRepo{rows: map[string]*models.SessionAnalytics{}}
}

func (r *memAnalyticsRepo) Insert(_ context.Context, a *models.SessionAnalytics) error {
	if _, exists := r.rows[a.SessionID]; exists {
		return nil // write-once
	}
	cp := *a
	r.rows[a.SessionID] = &cp
	return nil
}

func (r *memAnalyticsRepo) GetBySessionID(_ context.Context, sessionID string) (*models.SessionAnalytics, error) {
	a, ok := r.rows[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// fixedInterviews serves one immutable config.
type fixedInterviews struct {
	cfg      models.InterviewConfig
	statuses []string
}

func (f *fixedInterviews) Create(context.Context, string, CreateInterviewParams) (*models.Interview, error) {
	panic("not used")
}

func (f *fixedInterviews) Get(context.Context, string) (*models.Interview, error) {
	panic("not used")
}

func (f *fixedInterviews) ListByUser(context.Context, string, int) ([]models.Interview, error) {
	panic("not used")
}

func (f *fixedInterviews) Config(_ context.Context, id string) (*models.InterviewConfig, error) {
	if id != f.cfg.InterviewID {
		return nil, utils.E(utils.CodeNotFound, "fixedInterviews.Config", "interview not found", nil)
	}
	cp := f.cfg
	return &cp, nil
}

func (f *fixedInterviews) SetStatus(_ context.Context, _ string, status string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

type scriptedLLM struct{}

func (scriptedLLM) Generate(_ context.Context, _, userPrompt string, _ int, _ float32) (string, error) {
	if strings.Contains(userPrompt, "natural reaction") {
		return "Thanks for sharing that.", nil
	}
	return "Tell me about a project you are proud of.", nil
}

func (scriptedLLM) Close() error { return nil }

func testInterviewConfig(mode models.InterviewMode) models.InterviewConfig {
	return models.InterviewConfig{
		InterviewID: "iv-1",
		UserID:      "user-1",
		Position:    "Backend Engineer",
		Personas: []models.Persona{
			{ID: "p-0", Name: "Ana", Role: "Engineering Manager", Style: models.StyleNeutral},
			{ID: "p-1", Name: "Ben", Role: "Staff Engineer", Style: models.StyleNeutral},
		},
		DurationMinutes: 30,
		Mode:            mode,
	}
}

func newTestSessionService(t *testing.T, mode models.InterviewMode) (SessionService, *fixedInterviews, *memResponseRepo, *memAnalyticsRepo) {
	t.Helper()

	params := orchestrator.DefaultFollowUpParams()
	params.ToughProbability = 0
	params.KeywordProbability = 0
	heuristic := orchestrator.NewHeuristic(params, rand.New(rand.NewSource(1)))
	engine := orchestrator.NewEngine(scriptedLLM{}, nil, heuristic, nil)

	interviews := &fixedInterviews{cfg: testInterviewConfig(mode)}
	responses := newMemResponseRepo()
	analytics := newMemAnalyticsRepo()

	svc := NewSessionService(
		newMemSessionRepo(), interviews, &memQuestionRepo{}, responses,
		analytics, nil, engine, nil, nil, nil,
	)
	return svc, interviews, responses, analytics
}

func TestSessionLifecyclePractice(t *testing.T) {
	ctx := context.Background()
	svc, interviews, _, _ := newTestSessionService(t, models.ModePractice)

	sess, err := svc.Start(ctx, "user-1", "iv-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Status != "active" {
		t.Fatalf("status = %q, want active", sess.Status)
	}

	turn, err := svc.NextTurn(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("NextTurn: %v", err)
	}
	if turn.Type != models.TurnGreeting {
		t.Fatalf("first turn type = %q, want greeting", turn.Type)
	}
	if turn.QuestionNumber != 1 {
		t.Fatalf("question number = %d, want 1", turn.QuestionNumber)
	}

	res, err := svc.SubmitResponse(ctx, sess.SessionID, "I led a migration of our billing system to a new queueing layer over six months.", nil, "")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if res.GradingQueued {
		t.Fatal("practice response must not be queued for grading")
	}
	if res.ShouldEnd {
		t.Fatal("session should not end after the first answer")
	}

	report, err := svc.End(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if report.OverallGrade != 0 {
		t.Fatalf("practice overall = %d, want 0", report.OverallGrade)
	}

	got, err := svc.Get(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "ended" {
		t.Fatalf("status after End = %q, want ended", got.Status)
	}

	want := []string{"active", "completed"}
	if len(interviews.statuses) != len(want) {
		t.Fatalf("interview status updates = %v, want %v", interviews.statuses, want)
	}
	for i := range want {
		if interviews.statuses[i] != want[i] {
			t.Fatalf("interview status updates = %v, want %v", interviews.statuses, want)
		}
	}
}

func TestSubmitResponseMarksGradedPending(t *testing.T) {
	ctx := context.Background()
	svc, _, responses, _ := newTestSessionService(t, models.ModeGraded)

	sess, err := svc.Start(ctx, "user-1", "iv-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.NextTurn(ctx, sess.SessionID); err != nil {
		t.Fatalf("NextTurn: %v", err)
	}

	res, err := svc.SubmitResponse(ctx, sess.SessionID, "I organized the on-call rotation and cut incident response times in half.", nil, "")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	row, err := responses.GetByID(ctx, res.ResponseID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.GradeStatus != "pending" {
		t.Fatalf("grade status = %q, want pending", row.GradeStatus)
	}
}

func TestSubmitResponseWithoutPendingQuestion(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestSessionService(t, models.ModeGraded)

	sess, err := svc.Start(ctx, "user-1", "iv-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.SubmitResponse(ctx, sess.SessionID, "an answer before any question", nil, "")
	if !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestEndAggregatesCompletedGrades(t *testing.T) {
	ctx := context.Background()
	svc, _, responses, analytics := newTestSessionService(t, models.ModeGraded)

	sess, err := svc.Start(ctx, "user-1", "iv-1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.NextTurn(ctx, sess.SessionID); err != nil {
		t.Fatalf("NextTurn: %v", err)
	}
	res, err := svc.SubmitResponse(ctx, sess.SessionID, "I built the data pipeline from scratch and documented every operational runbook.", nil, "")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	grade := models.Grade{
		Overall: 84, Confidence: 80, Clarity: 88, Relevance: 84,
		Strengths:    []string{"clear ownership"},
		Improvements: []string{"quantify impact"},
	}
	if err := responses.SetGrade(ctx, res.ResponseID, grade, "done"); err != nil {
		t.Fatalf("SetGrade: %v", err)
	}

	report, err := svc.End(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if report.OverallGrade != 84 {
		t.Fatalf("overall = %d, want 84", report.OverallGrade)
	}
	if report.ResponseCount != 1 {
		t.Fatalf("response count = %d, want 1", report.ResponseCount)
	}

	stored, err := analytics.GetBySessionID(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("stored analytics: %v", err)
	}
	if stored.OverallGrade != report.OverallGrade {
		t.Fatalf("stored overall = %d, want %d", stored.OverallGrade, report.OverallGrade)
	}

	// A second End must observe the same stored report.
	again, err := svc.End(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("second End: %v", err)
	}
	if again.ID != stored.ID {
		t.Fatal("second End returned a different analytics row")
	}
}

func TestStartRejectsForeignInterview(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestSessionService(t, models.ModeGraded)

	_, err := svc.Start(ctx, "someone-else", "iv-1")
	if !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("err = %v, want forbidden", err)
	}
}
