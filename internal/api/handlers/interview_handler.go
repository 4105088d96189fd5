package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/services"
	"github.com/mockpanel/mockpanel/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type PersonaRequest struct {
	Name       string   `json:"name" binding:"required"`
	Role       string   `json:"role"`
	VoiceID    string   `json:"voice_id"`
	Gender     string   `json:"gender"`
	Style      string   `json:"style"` // friendly|neutral|tough, defaults to neutral
	FocusAreas []string `json:"focus_areas"`
}

type CreateInterviewRequest struct {
	ScenarioType    string           `json:"scenario_type"`
	Position        string           `json:"position" binding:"required"`
	Description     string           `json:"description"`
	Personas        []PersonaRequest `json:"personas" binding:"required"`
	DurationMinutes int              `json:"duration_minutes" binding:"required"`
	Mode            string           `json:"mode"` // practice|graded
	DocumentID      string           `json:"document_id"`
}

func (h *InterviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
		return
	}

	if req.Mode == "" {
		req.Mode = string(models.ModeGraded)
	}

	personas := make([]models.Persona, 0, len(req.Personas))
	for _, p := range req.Personas {
		personas = append(personas, models.Persona{
			Name:       p.Name,
			Role:       p.Role,
			VoiceID:    p.VoiceID,
			Gender:     p.Gender,
			Style:      models.PersonaStyle(p.Style),
			FocusAreas: p.FocusAreas,
		})
	}

	iv, err := h.svc.Create(c.Request.Context(), userID, services.CreateInterviewParams{
		ScenarioType:    req.ScenarioType,
		Position:        req.Position,
		Description:     req.Description,
		DocumentID:      req.DocumentID,
		Personas:        personas,
		DurationMinutes: req.DurationMinutes,
		Mode:            models.InterviewMode(req.Mode),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	iv, err := h.svc.Get(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if iv.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "InterviewHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rows, err := h.svc.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": rows})
}
