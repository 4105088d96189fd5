package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mockpanel/mockpanel/internal/models"
	"github.com/mockpanel/mockpanel/internal/orchestrator"
	"github.com/mockpanel/mockpanel/internal/services"
)

// GradingWorkerPool drains grading jobs from a Redis stream. Each job is
// one (question, answer) pair; the result lands on the response row and a
// grade_complete event is published on the session's channel.
type GradingWorkerPool struct {
	Redis      *redis.Client
	Sessions   services.SessionService
	Interviews services.InterviewService
	Responses  ResponseStore
	Grader     *orchestrator.Grader
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

// ResponseStore is the slice of the response repository the pool needs.
type ResponseStore interface {
	SetGradeStatus(ctx context.Context, id, status string) error
	SetGrade(ctx context.Context, id string, grade models.Grade, status string) error
}

func (p *GradingWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Sessions == nil || p.Interviews == nil || p.Responses == nil || p.Grader == nil {
		return errors.New("GradingWorkerPool missing dependency: Redis/Sessions/Interviews/Responses/Grader must be set")
	}
	if p.Stream == "" {
		p.Stream = services.GradingStream
	}
	if p.Group == "" {
		p.Group = "grading-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "g"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *GradingWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *GradingWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	responseID := getStr("response_id")
	question := getStr("question")
	answer := getStr("answer")
	personaID := getStr("persona_id")
	if sessionID == "" || responseID == "" || answer == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"response_id": responseID,
	})

	eventsCh := services.SessionEventChannel(sessionID)

	mode, persona, err := p.resolveContext(ctx, sessionID, personaID)
	if err != nil {
		log.WithError(err).Error("failed to resolve grading context")
		_ = p.Responses.SetGradeStatus(ctx, responseID, "failed")
		p.publishEvent(ctx, eventsCh, map[string]any{
			"type":        "grade_failed",
			"response_id": responseID,
			"message":     "grading context unavailable",
		})
		return
	}
	if mode == models.ModePractice {
		_ = p.Responses.SetGradeStatus(ctx, responseID, "skipped")
		return
	}

	_ = p.Responses.SetGradeStatus(ctx, responseID, "processing")
	p.publishEvent(ctx, eventsCh, map[string]any{
		"type":        "grade_processing",
		"response_id": responseID,
	})

	grade, err := p.Grader.Evaluate(ctx, mode, question, answer, persona)
	if err != nil {
		log.WithError(err).Error("grading failed")
		_ = p.Responses.SetGradeStatus(ctx, responseID, "failed")
		p.publishEvent(ctx, eventsCh, map[string]any{
			"type":        "grade_failed",
			"response_id": responseID,
			"message":     "grading failed",
		})
		return
	}

	if err := p.Responses.SetGrade(ctx, responseID, grade, "done"); err != nil {
		log.WithError(err).Error("failed to store grade")
		return
	}

	p.publishEvent(ctx, eventsCh, map[string]any{
		"type":        "grade_complete",
		"response_id": responseID,
		"overall":     grade.Overall,
		"confidence":  grade.Confidence,
		"clarity":     grade.Clarity,
		"relevance":   grade.Relevance,
	})
}

func (p *GradingWorkerPool) resolveContext(ctx context.Context, sessionID, personaID string) (models.InterviewMode, models.Persona, error) {
	sess, err := p.Sessions.Get(ctx, sessionID)
	if err != nil {
		return "", models.Persona{}, err
	}
	cfg, err := p.Interviews.Config(ctx, sess.InterviewID)
	if err != nil {
		return "", models.Persona{}, err
	}
	for _, persona := range cfg.Personas {
		if persona.ID == personaID {
			return cfg.Mode, persona, nil
		}
	}
	if len(cfg.Personas) > 0 {
		return cfg.Mode, cfg.Personas[0], nil
	}
	return cfg.Mode, models.Persona{}, nil
}

func (p *GradingWorkerPool) publishEvent(ctx context.Context, channel string, payload map[string]any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.Redis.Publish(ctx, channel, string(b)).Err()
}
