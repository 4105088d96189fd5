package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/services"
	"github.com/mockpanel/mockpanel/internal/utils"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type StartSessionRequest struct {
	InterviewID string `json:"interview_id" binding:"required"`
}

type StartSessionResponse struct {
	SessionID   string `json:"session_id"`
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.Start", "invalid request body", err))
		return
	}

	sess, err := h.svc.Start(c.Request.Context(), userID, req.InterviewID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID:   sess.SessionID,
		InterviewID: sess.InterviewID,
		Status:      sess.Status,
		CreatedAt:   sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.authorize(c, "SessionHandler.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Turn asks the panel for its next line: greeting, question, follow-up, or
// closing, decided by the session's stage.
func (h *SessionHandler) Turn(c *gin.Context) {
	sess, ok := h.authorize(c, "SessionHandler.Turn")
	if !ok {
		return
	}

	turn, err := h.svc.NextTurn(c.Request.Context(), sess.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, turn)
}

type SubmitResponseRequest struct {
	Text        string `json:"text"`
	AudioBase64 string `json:"audio_base64"`
	Language    string `json:"language"` // BCP-47, defaults to en-US
}

func (h *SessionHandler) SubmitResponse(c *gin.Context) {
	sess, ok := h.authorize(c, "SessionHandler.SubmitResponse")
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitResponse", "invalid request body", err))
		return
	}

	var audio []byte
	if req.AudioBase64 != "" {
		raw := req.AudioBase64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "SessionHandler.SubmitResponse", "invalid audio_base64", err))
			return
		}
		audio = decoded
	}

	res, err := h.svc.SubmitResponse(c.Request.Context(), sess.SessionID, req.Text, audio, req.Language)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *SessionHandler) End(c *gin.Context) {
	sess, ok := h.authorize(c, "SessionHandler.End")
	if !ok {
		return
	}

	report, err := h.svc.End(c.Request.Context(), sess.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *SessionHandler) Analytics(c *gin.Context) {
	sess, ok := h.authorize(c, "SessionHandler.Analytics")
	if !ok {
		return
	}

	report, err := h.svc.Analytics(c.Request.Context(), sess.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// authorize loads the session from the path param and checks ownership.
func (h *SessionHandler) authorize(c *gin.Context, op string) (*models.Session, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
		return nil, false
	}
	return sess, true
}
