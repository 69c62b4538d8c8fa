package entitlements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-builder/internal/subscriptions"
)

var ErrUnauthorized = errors.New("unauthorized")

// SubscriptionReader is the part of the subscription repository the resolver needs.
type SubscriptionReader interface {
	GetByUser(ctx context.Context, userID string) (*subscriptions.Record, error)
}

// Snapshot is the capability view returned to clients.
type Snapshot struct {
	Level                Level `json:"level"`
	CanCreateResume      bool  `json:"canCreateResume"`
	CanUseAITools        bool  `json:"canUseAiTools"`
	CanUseCustomizations bool  `json:"canUseCustomizations"`
	ResumeQuota          int   `json:"resumeQuota"`
	ResumeCount          int   `json:"resumeCount"`
}

// Service resolves levels for users from their mirrored subscription.
type Service struct {
	Subs  SubscriptionReader
	Plans PlanTable
	Now   func() time.Time
}

func NewService(subs SubscriptionReader, plans PlanTable) *Service {
	return &Service{Subs: subs, Plans: plans, Now: time.Now}
}

// Level returns the user's current level.
func (s *Service) Level(ctx context.Context, userID string) (Level, error) {
	if strings.TrimSpace(userID) == "" {
		return LevelFree, ErrUnauthorized
	}
	rec, err := s.Subs.GetByUser(ctx, userID)
	if errors.Is(err, subscriptions.ErrNotFound) {
		return LevelFree, nil
	}
	if err != nil {
		return LevelFree, fmt.Errorf("load subscription: %w", err)
	}
	return ResolveLevel(s.Plans, rec, s.now()), nil
}

// Snapshot returns the level and every capability flag for the user.
func (s *Service) Snapshot(ctx context.Context, userID string, resumeCount int) (Snapshot, error) {
	lvl, err := s.Level(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Level:                lvl,
		CanCreateResume:      CanCreateResume(lvl, resumeCount),
		CanUseAITools:        CanUseAITools(lvl),
		CanUseCustomizations: CanUseCustomizations(lvl),
		ResumeQuota:          ResumeQuota(lvl),
		ResumeCount:          resumeCount,
	}, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
