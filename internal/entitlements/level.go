package entitlements

import (
	"strings"
	"time"

	"resume-builder/internal/subscriptions"
)

// Level is the capability tier derived from a user's subscription.
type Level string

const (
	LevelFree        Level = "free"
	LevelPremium     Level = "premium"
	LevelPremiumPlus Level = "premium_plus"
)

// Unlimited is the quota reported for tiers without a resume cap.
const Unlimited = -1

var resumeQuota = map[Level]int{
	LevelFree:    1,
	LevelPremium: 3,
}

// PlanTable maps billing price ids to levels.
type PlanTable map[string]Level

// NewPlanTable builds the table from the configured price ids. Blank ids are skipped.
func NewPlanTable(premiumPriceID, premiumPlusPriceID string) PlanTable {
	t := PlanTable{}
	if id := strings.TrimSpace(premiumPriceID); id != "" {
		t[id] = LevelPremium
	}
	if id := strings.TrimSpace(premiumPlusPriceID); id != "" {
		t[id] = LevelPremiumPlus
	}
	return t
}

// LevelFor returns the level for a price id; unknown ids are free.
func (t PlanTable) LevelFor(priceID string) Level {
	if lvl, ok := t[priceID]; ok {
		return lvl
	}
	return LevelFree
}

// Known reports whether the price id belongs to a paid plan.
func (t PlanTable) Known(priceID string) bool {
	_, ok := t[priceID]
	return ok
}

// ResolveLevel derives the level from a subscription record. A missing record
// or one whose period ended before now is free.
func ResolveLevel(table PlanTable, rec *subscriptions.Record, now time.Time) Level {
	if rec == nil {
		return LevelFree
	}
	if rec.CurrentPeriodEnd.Before(now) {
		return LevelFree
	}
	return table.LevelFor(rec.PriceID)
}

// CanCreateResume reports whether a user at level may create one more resume
// given how many they already own.
func CanCreateResume(level Level, currentCount int) bool {
	quota := ResumeQuota(level)
	if quota == Unlimited {
		return true
	}
	return currentCount < quota
}

// CanUseAITools reports whether the level unlocks AI assist.
func CanUseAITools(level Level) bool {
	return level == LevelPremium || level == LevelPremiumPlus
}

// CanUseCustomizations reports whether the level unlocks accent color and border style.
func CanUseCustomizations(level Level) bool {
	return level == LevelPremiumPlus
}

// ResumeQuota returns the resume cap for the level, or Unlimited.
func ResumeQuota(level Level) int {
	if level == LevelPremiumPlus {
		return Unlimited
	}
	if q, ok := resumeQuota[level]; ok {
		return q
	}
	return resumeQuota[LevelFree]
}
