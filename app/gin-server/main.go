package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mockpanel/mockpanel/config"
	"github.com/mockpanel/mockpanel/internal/api/handlers"
	"github.com/mockpanel/mockpanel/internal/api/middleware"
	"github.com/mockpanel/mockpanel/internal/api/routes"
	"github.com/mockpanel/mockpanel/internal/cache"
	"github.com/mockpanel/mockpanel/internal/logger"
	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/orchestrator"
	"github.com/mockpanel/mockpanel/internal/providers/llm"
	"github.com/mockpanel/mockpanel/internal/providers/stt"
	"github.com/mockpanel/mockpanel/internal/providers/tts"
	mongorepo "github.com/mockpanel/mockpanel/internal/repositories/mongo"
	pgrepo "github.com/mockpanel/mockpanel/internal/repositories/postgres"
	"github.com/mockpanel/mockpanel/internal/services"
	"github.com/mockpanel/mockpanel/internal/storage"
	"github.com/mockpanel/mockpanel/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	ctx := context.Background()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}
	log.Info("MongoDB connected")

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.PostgresDB.AutoMigrate(
		&models.Interview{},
		&models.QuestionRecord{},
		&models.ResponseRecord{},
		&models.SessionAnalytics{},
		&models.ConversationLog{},
		&models.Document{},
	); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	log.Info("Redis connected")

	// LLM is the one provider the panel cannot run without.
	project := os.Getenv("VERTEX_PROJECT_ID")
	location := os.Getenv("VERTEX_LOCATION")
	modelName := os.Getenv("VERTEX_MODEL")
	if location == "" {
		location = "us-central1"
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	llmProvider, err := llm.NewVertexGemini(ctx, project, location, modelName)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer llmProvider.Close()

	var synth tts.Synthesizer = tts.Nop{}
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		synth = tts.NewElevenLabs(key)
		log.Info("ElevenLabs TTS enabled")
	}

	var sttProvider stt.Provider
	if os.Getenv("GOOGLE_SPEECH_ENABLED") == "true" {
		gs, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			log.Fatalf("Google Speech init error: %v", err)
		}
		defer gs.Close()
		sttProvider = gs
		log.Info("Google Speech STT enabled")
	}

	var uploader storage.Uploader
	var signer storage.Signer
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcsUploader, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcsUploader.Close()
		uploader = gcsUploader
		signer = gcsUploader
		log.Info("GCS storage enabled")
	}

	redisCache := cache.NewRedisCache(config.RedisClient)

	interviewRepo := pgrepo.NewInterviewRepo(config.PostgresDB)
	questionRepo := pgrepo.NewQuestionRepo(config.PostgresDB)
	responseRepo := pgrepo.NewResponseRepo(config.PostgresDB)
	analyticsRepo := pgrepo.NewAnalyticsRepo(config.PostgresDB)
	documentRepo := pgrepo.NewDocumentRepo(config.PostgresDB)
	conversationRepo := pgrepo.NewConversationRepo(config.PostgresDB)

	mongoDB := config.MongoClient.Database(mongoDBName())
	sessionRepo := mongorepo.NewSessionRepo(mongoDB)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	heuristic := orchestrator.NewHeuristic(orchestrator.DefaultFollowUpParams(), rng)
	engine := orchestrator.NewEngine(llmProvider, synth, heuristic, log)
	grader := orchestrator.NewGrader(llmProvider, log)

	interviewSvc := services.NewInterviewService(interviewRepo, documentRepo, redisCache)
	conversationSvc := services.NewConversationService(conversationRepo)
	documentSvc := services.NewDocumentService(documentRepo, uploader, signer)
	sessionSvc := services.NewSessionService(
		sessionRepo, interviewSvc, questionRepo, responseRepo, analyticsRepo,
		conversationSvc, engine, sttProvider, config.RedisClient, log,
	)

	pool := &workers.GradingWorkerPool{
		Redis:      config.RedisClient,
		Sessions:   sessionSvc,
		Interviews: interviewSvc,
		Responses:  responseRepo,
		Grader:     grader,
		Logger:     log,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("grading worker pool error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Interview:    handlers.NewInterviewHandler(interviewSvc),
		Session:      handlers.NewSessionHandler(sessionSvc),
		Document:     handlers.NewDocumentHandler(documentSvc),
		Conversation: handlers.NewConversationHandler(conversationSvc),
		WS:           handlers.NewWSHandler(sessionSvc, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
	fmt.Println("server stopped")
}

func mongoDBName() string {
	if v := os.Getenv("MONGO_DB"); v != "" {
		return v
	}
	return "mockpanel"
}
