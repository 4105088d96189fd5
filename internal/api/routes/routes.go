package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mockpanel/mockpanel/internal/api/handlers"
	"github.com/mockpanel/mockpanel/internal/api/middleware"
)

type Deps struct {
	Interview    *handlers.InterviewHandler
	Session      *handlers.SessionHandler
	Document     *handlers.DocumentHandler
	Conversation *handlers.ConversationHandler
	WS           *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/interview", d.Interview.Create)
	auth.GET("/interview/:interview_id", d.Interview.Get)
	auth.GET("/interviews", d.Interview.List)

	auth.POST("/session/start", d.Session.Start)
	auth.GET("/session/:session_id", d.Session.Get)
	auth.POST("/session/:session_id/turn", d.Session.Turn)
	auth.POST("/session/:session_id/response", d.Session.SubmitResponse)
	auth.POST("/session/:session_id/end", d.Session.End)
	auth.GET("/session/:session_id/analytics", d.Session.Analytics)

	auth.POST("/document/upload", d.Document.Upload)
	auth.GET("/document/:document_id", d.Document.Get)

	auth.GET("/conversation/:session_id", d.Conversation.ListBySession)

	// WebSocket
	auth.GET("/ws/session/:session_id", d.WS.SessionWS)

	// Ops
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	admin.GET("/info", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "mockpanel",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
}
