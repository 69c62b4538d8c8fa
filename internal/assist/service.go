package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"resume-builder/internal/entitlements"
	"resume-builder/internal/llm"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

// LevelResolver returns a user's entitlement level.
type LevelResolver interface {
	Level(ctx context.Context, userID string) (entitlements.Level, error)
}

// SummaryInput is the part of a resume a summary is written from.
type SummaryInput struct {
	JobTitle        string                   `json:"jobTitle" validate:"max=100"`
	WorkExperiences []resumes.WorkExperience `json:"workExperiences" validate:"max=10,dive"`
	Educations      []resumes.Education      `json:"educations" validate:"max=10,dive"`
	Skills          []string                 `json:"skills" validate:"max=30,dive,max=100"`
}

// WorkExperienceInput is a free-text description of a job.
type WorkExperienceInput struct {
	Description string `json:"description" validate:"required,min=20,max=2000"`
}

// BreakerSettings tunes the circuit breaker around the completer.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerSettings opens after five consecutive failures for 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Service generates resume text through an llm.Completer.
type Service struct {
	llm       llm.Completer
	levels    LevelResolver
	validator *validation.Validator
	breaker   *gobreaker.CircuitBreaker[string]
}

func NewService(completer llm.Completer, levels LevelResolver, settings BreakerSettings) *Service {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "llm",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("ai.breaker.state_change", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
		IsSuccessful: func(err error) bool {
			// cancelled callers and a missing provider do not trip the breaker
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, llm.ErrNotConfigured)
		},
	})
	return &Service{
		llm:       completer,
		levels:    levels,
		validator: validation.New(),
		breaker:   breaker,
	}
}

// GenerateSummary writes a short professional summary.
func (s *Service) GenerateSummary(ctx context.Context, userID string, in SummaryInput) (string, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return "", err
	}
	if err := s.validator.Struct(in); err != nil {
		return "", err
	}
	return s.complete(ctx, "summary", userID, summarySystemPrompt, buildSummaryPrompt(in))
}

// GenerateWorkExperience turns a description into a structured entry.
func (s *Service) GenerateWorkExperience(ctx context.Context, userID string, in WorkExperienceInput) (resumes.WorkExperience, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return resumes.WorkExperience{}, err
	}
	if err := s.validator.Struct(in); err != nil {
		return resumes.WorkExperience{}, err
	}
	text, err := s.complete(ctx, "work_experience", userID, workExperienceSystemPrompt, buildWorkExperiencePrompt(in))
	if err != nil {
		return resumes.WorkExperience{}, err
	}
	return ParseWorkExperience(text), nil
}

func (s *Service) authorize(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	level, err := s.levels.Level(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve level: %w", err)
	}
	if !entitlements.CanUseAITools(level) {
		return ErrUpgradeRequired
	}
	return nil
}

func (s *Service) complete(ctx context.Context, kind, userID, system, user string) (string, error) {
	metrics.IncAIRequest()
	start := time.Now()
	text, err := s.breaker.Execute(func() (string, error) {
		return s.llm.Complete(ctx, system, user)
	})
	metrics.ObserveAIDurationMs(float64(time.Since(start).Milliseconds()))

	fields := map[string]any{
		"kind":        kind,
		"user_id":     userID,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		metrics.IncAIFailure()
		fields["error"] = err.Error()
		telemetry.Error("ai.complete.failed", fields)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrProviderFailed, kind, err)
	}
	if strings.TrimSpace(text) == "" {
		metrics.IncAIFailure()
		telemetry.Warn("ai.complete.empty", fields)
		return "", ErrEmptyResponse
	}
	telemetry.Info("ai.complete.ok", fields)
	return text, nil
}
