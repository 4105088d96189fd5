package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mockpanel/mockpanel/internal/models"
	pgrepo "github.com/mockpanel/mockpanel/internal/repositories/postgres"
	"github.com/mockpanel/mockpanel/internal/utils"
)

type ConversationService interface {
	// Append records one spoken line. turnType and personaID are empty for
	// candidate lines.
	Append(ctx context.Context, userID, sessionID, speaker, turnType, personaID, content string) (*models.ConversationLog, error)
	ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.ConversationLog, error)
}

type conversationService struct {
	convos pgrepo.ConversationRepo
}

func NewConversationService(convos pgrepo.ConversationRepo) ConversationService {
	return &conversationService{convos: convos}
}

func (s *conversationService) Append(ctx context.Context, userID, sessionID, speaker, turnType, personaID, content string) (*models.ConversationLog, error) {
	const op = "ConversationService.Append"

	if userID == "" || sessionID == "" || speaker == "" || content == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, session_id, speaker, and content are required", nil)
	}

	row := &models.ConversationLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Speaker:   speaker,
		TurnType:  turnType,
		PersonaID: personaID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	if err := s.convos.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert conversation log", err)
	}
	return row, nil
}

func (s *conversationService) ListBySession(ctx context.Context, userID, sessionID string, limit int) ([]models.ConversationLog, error) {
	const op = "ConversationService.ListBySession"

	if userID == "" || sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and session_id are required", nil)
	}

	rows, err := s.convos.ListBySession(ctx, userID, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversation logs", err)
	}
	return rows, nil
}
