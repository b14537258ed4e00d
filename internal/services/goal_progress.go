package services

import (
	"math"
	"time"

	"fintrack/internal/models"
)

// paceAheadThresholdDays is how many days ahead of schedule a goal must be
// before its pace is reported as "ahead" rather than "on-track".
const paceAheadThresholdDays = 7

// achievementRate returns progress toward the target as a percentage.
func achievementRate(currentAmount, targetAmount int64) float64 {
	if targetAmount <= 0 {
		return 0
	}
	return float64(currentAmount) / float64(targetAmount) * 100
}

// ComputeGoalProgress derives a pace snapshot for a goal as of now. It is a
// pure function: no persistence, no clock access, so tests can pin exact
// values with a fixed time.
//
// dailyProgress divides the accumulated amount by the current day of month
// as a proxy for elapsed days. That proxy is not anchored to the goal's
// creation date; it is kept as-is for parity with the established behavior.
func ComputeGoalProgress(goal *models.FinancialGoal, now time.Time) *GoalProgress {
	rate := achievementRate(goal.CurrentAmount, goal.TargetAmount)

	remaining := goal.TargetAmount - goal.CurrentAmount
	if remaining < 0 {
		remaining = 0
	}

	// Calendar days until the target date; negative when overdue.
	daysRemaining := int(math.Ceil(goal.TargetDate.Sub(now).Hours() / 24))

	var dailyTarget float64
	if daysRemaining > 0 {
		dailyTarget = float64(remaining) / float64(daysRemaining)
	}

	var dailyProgress float64
	if goal.CurrentAmount > 0 {
		elapsed := now.Day()
		if elapsed < 1 {
			elapsed = 1
		}
		dailyProgress = float64(goal.CurrentAmount) / float64(elapsed)
	}

	projectedDays := daysRemaining
	if remaining > 0 && dailyProgress > 0 {
		projectedDays = int(math.Ceil(float64(remaining) / dailyProgress))
	}

	isOnTrack := projectedDays <= daysRemaining
	daysAheadBehind := daysRemaining - projectedDays

	status := PaceBehind
	if isOnTrack {
		if daysAheadBehind > paceAheadThresholdDays {
			status = PaceAhead
		} else {
			status = PaceOnTrack
		}
	}

	return &GoalProgress{
		GoalID:             goal.ID,
		CurrentAmount:      goal.CurrentAmount,
		TargetAmount:       goal.TargetAmount,
		AchievementRate:    rate,
		RemainingAmount:    remaining,
		DaysRemaining:      daysRemaining,
		DailyTargetToReach: dailyTarget,
		DailyProgress:      dailyProgress,
		ProjectedDays:      projectedDays,
		IsOnTrack:          isOnTrack,
		DaysAheadBehind:    daysAheadBehind,
		Status:             status,
	}
}
