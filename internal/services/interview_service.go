package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mockpanel/mockpanel/internal/cache"
	"github.com/mockpanel/mockpanel/internal/models"
	pgrepo "github.com/mockpanel/mockpanel/internal/repositories/postgres"
	"github.com/mockpanel/mockpanel/internal/utils"
)

const interviewConfigTTL = 10 * time.Minute

type CreateInterviewParams struct {
	ScenarioType    string
	Position        string
	Description     string
	DocumentID      string
	Personas        []models.Persona
	DurationMinutes int
	Mode            models.InterviewMode
}

type InterviewService interface {
	Create(ctx context.Context, userID string, p CreateInterviewParams) (*models.Interview, error)
	Get(ctx context.Context, id string) (*models.Interview, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Interview, error)
	// Config resolves the read-only orchestrator view of an interview,
	// cached in Redis since it never changes after creation.
	Config(ctx context.Context, id string) (*models.InterviewConfig, error)
	SetStatus(ctx context.Context, id, status string) error
}

type interviewService struct {
	interviews pgrepo.InterviewRepository
	documents  pgrepo.DocumentRepository
	cache      cache.Cache
}

func NewInterviewService(interviews pgrepo.InterviewRepository, documents pgrepo.DocumentRepository, c cache.Cache) InterviewService {
	return &interviewService{interviews: interviews, documents: documents, cache: c}
}

func (s *interviewService) Create(ctx context.Context, userID string, p CreateInterviewParams) (*models.Interview, error) {
	const op = "InterviewService.Create"

	// Configuration errors are fatal before any turn is generated.
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if len(p.Personas) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one persona is required", nil)
	}
	if p.DurationMinutes <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration_minutes must be positive", nil)
	}
	if p.Mode != models.ModePractice && p.Mode != models.ModeGraded {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mode must be practice or graded", nil)
	}
	for i := range p.Personas {
		if p.Personas[i].ID == "" {
			p.Personas[i].ID = uuid.NewString()
		}
		switch p.Personas[i].Style {
		case models.StyleFriendly, models.StyleNeutral, models.StyleTough:
		case "":
			p.Personas[i].Style = models.StyleNeutral
		default:
			return nil, utils.E(utils.CodeInvalidArgument, op, "persona style must be friendly, neutral, or tough", nil)
		}
	}

	var docID *string
	var docContext string
	if p.DocumentID != "" {
		doc, err := s.documents.GetByID(ctx, p.DocumentID)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "document not found", err)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load document", err)
		}
		if doc.UserID != userID {
			return nil, utils.E(utils.CodeForbidden, op, "document belongs to another user", nil)
		}
		docID = &doc.ID
		docContext = doc.ExtractedText
	}

	personasJSON, err := json.Marshal(p.Personas)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode personas", err)
	}

	iv := &models.Interview{
		ID:              uuid.NewString(),
		UserID:          userID,
		ScenarioType:    p.ScenarioType,
		Position:        p.Position,
		Description:     p.Description,
		DocumentID:      docID,
		DocumentContext: docContext,
		Personas:        datatypes.JSON(personasJSON),
		DurationMinutes: p.DurationMinutes,
		Mode:            p.Mode,
		Status:          "scheduled",
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.interviews.Insert(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create interview", err)
	}
	return iv, nil
}

func (s *interviewService) Get(ctx context.Context, id string) (*models.Interview, error) {
	const op = "InterviewService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}
	iv, err := s.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "interview not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get interview", err)
	}
	return iv, nil
}

func (s *interviewService) ListByUser(ctx context.Context, userID string, limit int) ([]models.Interview, error) {
	const op = "InterviewService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	rows, err := s.interviews.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interviews", err)
	}
	return rows, nil
}

func (s *interviewService) Config(ctx context.Context, id string) (*models.InterviewConfig, error) {
	const op = "InterviewService.Config"

	key := "interview:config:" + id
	if s.cache != nil {
		var cached models.InterviewConfig
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	iv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var personas []models.Persona
	if err := json.Unmarshal(iv.Personas, &personas); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to decode personas", err)
	}

	cfg := &models.InterviewConfig{
		InterviewID:     iv.ID,
		UserID:          iv.UserID,
		ScenarioType:    iv.ScenarioType,
		Position:        iv.Position,
		Description:     iv.Description,
		DocumentContext: iv.DocumentContext,
		Personas:        personas,
		DurationMinutes: iv.DurationMinutes,
		Mode:            iv.Mode,
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cfg, interviewConfigTTL)
	}
	return cfg, nil
}

func (s *interviewService) SetStatus(ctx context.Context, id, status string) error {
	const op = "InterviewService.SetStatus"

	if id == "" || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id and status are required", nil)
	}
	if err := s.interviews.SetStatus(ctx, id, status); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to set status", err)
	}
	return nil
}
