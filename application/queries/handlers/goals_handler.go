package handlers

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/calc"
	"github.com/cpsc/analytics/pkg/datetime"
)

// GoalsHandler analyzes goal progress against institution balances
type GoalsHandler struct {
	institutions ports.InstitutionReader
	goals        ports.GoalReader
	logger       *zap.Logger
	now          func() int64
}

// NewGoalsHandler creates a new goal analysis handler
func NewGoalsHandler(
	institutions ports.InstitutionReader,
	goals ports.GoalReader,
	logger *zap.Logger,
) *GoalsHandler {
	return &GoalsHandler{
		institutions: institutions,
		goals:        goals,
		logger:       logger,
		now:          datetime.NowUnix,
	}
}

// Handle executes the goal analysis query
func (h *GoalsHandler) Handle(ctx context.Context, query queries.GoalsQuery) (*queries.GoalsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	goals, err := h.goals.GetGoals(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		h.logger.Warn("No goals found", zap.String("userID", query.UserID))
		return &queries.GoalsResult{
			Goals: []queries.GoalDetail{},
			Insights: queries.GoalInsights{
				AtRisk:         []queries.AtRiskGoal{},
				NearCompletion: []queries.GoalDetail{},
				Priorities:     []queries.GoalPriority{},
			},
			Message: "No goals found",
		}, nil
	}

	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	details := make([]queries.GoalDetail, 0, len(goals))
	var totalTarget, totalCurrent float64
	var completedCount, activeCount int
	for _, goal := range goals {
		detail := h.analyzeGoal(goal, institutions)
		details = append(details, detail)

		totalTarget += goal.TargetAmount
		totalCurrent += detail.CurrentAmount
		if goal.IsCompleted {
			completedCount++
		}
		if goal.IsActive {
			activeCount++
		}
	}

	overallProgress := 0.0
	if totalTarget > 0 {
		overallProgress = totalCurrent / totalTarget * 100
	}

	nearCompletion := []queries.GoalDetail{}
	for _, detail := range details {
		if detail.ProgressPercent >= 90 && !detail.IsCompleted {
			nearCompletion = append(nearCompletion, detail)
		}
	}

	result := &queries.GoalsResult{
		UserID: query.UserID,
		Summary: queries.GoalSummary{
			TotalGoals:         len(goals),
			ActiveGoals:        activeCount,
			CompletedGoals:     completedCount,
			TotalTargetAmount:  calc.Round2(totalTarget),
			TotalCurrentAmount: calc.Round2(totalCurrent),
			OverallProgress:    calc.Round2(overallProgress),
		},
		Goals: details,
		Insights: queries.GoalInsights{
			AtRisk:         identifyAtRiskGoals(details),
			NearCompletion: nearCompletion,
			Priorities:     rankGoalPriorities(details),
		},
	}

	h.logger.Debug("Goal analysis complete",
		zap.String("userID", query.UserID),
		zap.Int("goals", len(goals)),
	)

	return result, nil
}

// analyzeGoal derives progress, projection and allocation detail for one
// goal. Inactive goals report as fully complete so closed goals do not
// chart as 0%.
func (h *GoalsHandler) analyzeGoal(goal records.Goal, institutions []records.Institution) queries.GoalDetail {
	var currentAmount, progressPercent, remainingAmount float64
	if !goal.IsActive {
		currentAmount = goal.TargetAmount
		progressPercent = 100.0
		remainingAmount = 0.0
	} else {
		currentAmount = goal.CurrentAmount(institutions)
		progressPercent = goal.ProgressPercent(institutions)
		remainingAmount = goal.RemainingAmount(institutions)
	}

	now := h.now()
	daysSinceCreation := datetime.DaysBetween(goal.CreatedAt, now)

	var daysToCompletion *int
	var estimatedCompletionDate *string
	if goal.IsCompleted {
		if goal.CompletedAt != nil {
			days := datetime.DaysBetween(goal.CreatedAt, *goal.CompletedAt)
			daysToCompletion = &days
		}
	} else if daysSinceCreation > 0 && currentAmount > 0 {
		dailyGrowth := currentAmount / float64(daysSinceCreation)
		if dailyGrowth > 0 {
			daysRemaining := int(remainingAmount / dailyGrowth)
			estimated := datetime.DayKey(datetime.AddDays(now, daysRemaining))
			estimatedCompletionDate = &estimated
		}
	}

	var requiredMonthly float64
	if !goal.IsCompleted && remainingAmount > 0 {
		monthsToTarget := 6.0
		if daysSinceCreation > 0 && currentAmount > 0 {
			dailyGrowth := currentAmount / float64(daysSinceCreation)
			if dailyGrowth > 0 {
				monthsToTarget = remainingAmount / dailyGrowth / 30
				if monthsToTarget < 1 {
					monthsToTarget = 1
				}
			}
		}
		requiredMonthly = remainingAmount / monthsToTarget
	}

	allocations := []queries.GoalAllocation{}
	for _, instID := range sortedAllocationKeys(goal.LinkedInstitutions) {
		percent := goal.LinkedInstitutions[instID]
		for _, inst := range institutions {
			if inst.InstitutionID == instID {
				allocations = append(allocations, queries.GoalAllocation{
					InstitutionName:   inst.InstitutionName,
					InstitutionID:     instID,
					AllocationPercent: percent,
					AllocatedAmount:   calc.Round2(inst.CurrentBalance * float64(percent) / 100),
				})
				break
			}
		}
	}

	var completedAt *string
	if goal.CompletedAt != nil {
		iso := datetime.UnixToISO(*goal.CompletedAt)
		completedAt = &iso
	}

	return queries.GoalDetail{
		GoalID:                      goal.GoalID,
		Name:                        goal.Name,
		Description:                 goal.Description,
		TargetAmount:                calc.Round2(goal.TargetAmount),
		CurrentAmount:               calc.Round2(currentAmount),
		RemainingAmount:             calc.Round2(remainingAmount),
		ProgressPercent:             calc.Round2(progressPercent),
		IsCompleted:                 goal.IsCompleted,
		IsActive:                    goal.IsActive,
		CreatedAt:                   datetime.UnixToISO(goal.CreatedAt),
		CompletedAt:                 completedAt,
		DaysSinceCreation:           daysSinceCreation,
		DaysToCompletion:            daysToCompletion,
		EstimatedCompletionDate:     estimatedCompletionDate,
		RequiredMonthlyContribution: calc.Round2(requiredMonthly),
		Allocations:                 allocations,
		TotalAllocationPercent:      goal.TotalAllocatedPercent(),
	}
}

// identifyAtRiskGoals scores active goals against risk factors: slow
// progress after 30 days, no detected growth, under-allocation
func identifyAtRiskGoals(details []queries.GoalDetail) []queries.AtRiskGoal {
	atRisk := []queries.AtRiskGoal{}
	for _, goal := range details {
		if goal.IsCompleted || !goal.IsActive {
			continue
		}

		riskScore := 0
		var reasons []string
		if goal.DaysSinceCreation > 30 && goal.ProgressPercent < 25 {
			riskScore += 3
			reasons = append(reasons, "Slow progress")
		}
		if goal.EstimatedCompletionDate == nil {
			riskScore += 2
			reasons = append(reasons, "No growth detected")
		}
		if goal.TotalAllocationPercent < 50 {
			riskScore++
			reasons = append(reasons, "Under-allocated")
		}

		if riskScore >= 2 {
			atRisk = append(atRisk, queries.AtRiskGoal{
				GoalID:          goal.GoalID,
				Name:            goal.Name,
				ProgressPercent: goal.ProgressPercent,
				RiskScore:       riskScore,
				RiskReasons:     reasons,
				Recommendation:  riskRecommendation(reasons),
			})
		}
	}
	sort.SliceStable(atRisk, func(i, j int) bool {
		return atRisk[i].RiskScore > atRisk[j].RiskScore
	})
	return atRisk
}

func riskRecommendation(reasons []string) string {
	has := func(reason string) bool {
		for _, r := range reasons {
			if r == reason {
				return true
			}
		}
		return false
	}
	switch {
	case has("No growth detected"):
		return "Increase allocation percentages to this goal"
	case has("Under-allocated"):
		return "Link more institutions or increase allocation percentages"
	case has("Slow progress"):
		return "Consider increasing monthly contributions"
	default:
		return "Review goal target and timeline"
	}
}

// rankGoalPriorities scores active goals by proximity to completion, age
// and feasibility of the remaining contribution
func rankGoalPriorities(details []queries.GoalDetail) []queries.GoalPriority {
	priorities := []queries.GoalPriority{}
	for _, goal := range details {
		if goal.IsCompleted || !goal.IsActive {
			continue
		}

		score := 0
		switch {
		case goal.ProgressPercent >= 80 && goal.ProgressPercent < 95:
			score += 10
		case goal.ProgressPercent >= 60 && goal.ProgressPercent < 80:
			score += 7
		case goal.ProgressPercent >= 40 && goal.ProgressPercent < 60:
			score += 5
		}

		ageScore := goal.DaysSinceCreation / 30
		if ageScore > 5 {
			ageScore = 5
		}
		score += ageScore

		switch {
		case goal.RequiredMonthlyContribution <= 0:
		case goal.RequiredMonthlyContribution < 100:
			score += 3
		case goal.RequiredMonthlyContribution < 500:
			score += 2
		case goal.RequiredMonthlyContribution < 1000:
			score++
		}

		priorities = append(priorities, queries.GoalPriority{
			GoalID:                  goal.GoalID,
			Name:                    goal.Name,
			PriorityScore:           score,
			ProgressPercent:         goal.ProgressPercent,
			RemainingAmount:         goal.RemainingAmount,
			EstimatedCompletionDate: goal.EstimatedCompletionDate,
		})
	}
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].PriorityScore > priorities[j].PriorityScore
	})
	return priorities
}

func sortedAllocationKeys(allocations map[string]int) []string {
	keys := make([]string, 0, len(allocations))
	for key := range allocations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
