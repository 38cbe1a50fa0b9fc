package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/datetime"
)

const secondsPerDay = 86400

func newGoalsHandler(insts *stubInstitutions, goals *stubGoals, nowUnix int64) *GoalsHandler {
	handler := NewGoalsHandler(insts, goals, zap.NewNop())
	handler.now = func() int64 { return nowUnix }
	return handler
}

func TestGoalsNoGoals(t *testing.T) {
	handler := newGoalsHandler(&stubInstitutions{}, &stubGoals{}, 0)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, "No goals found", result.Message)
	assert.Empty(t, result.Goals)
	assert.Empty(t, result.Insights.AtRisk)
	assert.Empty(t, result.Insights.Priorities)
}

func TestGoalsInactiveReportsComplete(t *testing.T) {
	created := int64(1_700_000_000)
	handler := newGoalsHandler(
		&stubInstitutions{},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-1", Name: "Old Car Fund", TargetAmount: 5000,
				CreatedAt: created, IsActive: false},
		}},
		created+10*secondsPerDay,
	)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Goals, 1)
	goal := result.Goals[0]
	assert.Equal(t, 5000.0, goal.CurrentAmount)
	assert.Equal(t, 100.0, goal.ProgressPercent)
	assert.Zero(t, goal.RemainingAmount)
	assert.Zero(t, result.Summary.ActiveGoals)
}

func TestGoalsProgressAndProjection(t *testing.T) {
	created := int64(1_700_000_000)
	now := created + 100*secondsPerDay
	handler := newGoalsHandler(
		&stubInstitutions{institutions: []records.Institution{
			{InstitutionID: "inst-1", InstitutionName: "Chase", CurrentBalance: 4000},
		}},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-1", Name: "House Fund", TargetAmount: 10000,
				CreatedAt: created, IsActive: true,
				LinkedInstitutions: map[string]int{"inst-1": 50}},
		}},
		now,
	)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Goals, 1)
	goal := result.Goals[0]
	assert.Equal(t, 2000.0, goal.CurrentAmount)
	assert.Equal(t, 20.0, goal.ProgressPercent)
	assert.Equal(t, 8000.0, goal.RemainingAmount)
	assert.Equal(t, 100, goal.DaysSinceCreation)
	assert.Equal(t, 50, goal.TotalAllocationPercent)

	// 20/day growth leaves 400 days to target
	require.NotNil(t, goal.EstimatedCompletionDate)
	expected := datetime.DayKey(datetime.AddDays(now, 400))
	assert.Equal(t, expected, *goal.EstimatedCompletionDate)
	assert.Equal(t, 600.0, goal.RequiredMonthlyContribution)

	require.Len(t, goal.Allocations, 1)
	assert.Equal(t, "Chase", goal.Allocations[0].InstitutionName)
	assert.Equal(t, 50, goal.Allocations[0].AllocationPercent)
	assert.Equal(t, 2000.0, goal.Allocations[0].AllocatedAmount)

	assert.Equal(t, 20.0, result.Summary.OverallProgress)
}

func TestGoalsAtRiskScoring(t *testing.T) {
	created := int64(1_700_000_000)
	handler := newGoalsHandler(
		&stubInstitutions{},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-1", Name: "Stalled Goal", TargetAmount: 10000,
				CreatedAt: created, IsActive: true},
		}},
		created+60*secondsPerDay,
	)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Insights.AtRisk, 1)
	atRisk := result.Insights.AtRisk[0]
	assert.Equal(t, "goal-1", atRisk.GoalID)
	assert.Equal(t, 6, atRisk.RiskScore)
	assert.ElementsMatch(t, []string{"Slow progress", "No growth detected", "Under-allocated"}, atRisk.RiskReasons)
	assert.Equal(t, "Increase allocation percentages to this goal", atRisk.Recommendation)
}

func TestGoalsNearCompletionAndPriorities(t *testing.T) {
	created := int64(1_700_000_000)
	handler := newGoalsHandler(
		&stubInstitutions{institutions: []records.Institution{
			{InstitutionID: "inst-1", CurrentBalance: 9200},
		}},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-near", Name: "Almost There", TargetAmount: 10000,
				CreatedAt: created, IsActive: true,
				LinkedInstitutions: map[string]int{"inst-1": 100}},
			{GoalID: "goal-done", Name: "Finished", TargetAmount: 1000,
				CreatedAt: created, IsActive: true, IsCompleted: true},
		}},
		created+30*secondsPerDay,
	)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Insights.NearCompletion, 1)
	assert.Equal(t, "goal-near", result.Insights.NearCompletion[0].GoalID)

	// Completed goals never rank
	require.Len(t, result.Insights.Priorities, 1)
	priority := result.Insights.Priorities[0]
	assert.Equal(t, "goal-near", priority.GoalID)
	assert.Equal(t, 92.0, priority.ProgressPercent)
	assert.GreaterOrEqual(t, priority.PriorityScore, 10)

	assert.Equal(t, 1, result.Summary.CompletedGoals)
}

func TestGoalsCompletedReportsDaysToCompletion(t *testing.T) {
	created := int64(1_700_000_000)
	completedAt := created + 45*secondsPerDay
	handler := newGoalsHandler(
		&stubInstitutions{},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-1", Name: "Done", TargetAmount: 1000,
				CreatedAt: created, IsActive: false, IsCompleted: true,
				CompletedAt: &completedAt},
		}},
		created+90*secondsPerDay,
	)

	result, err := handler.Handle(context.Background(), queries.GoalsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Goals, 1)
	goal := result.Goals[0]
	require.NotNil(t, goal.DaysToCompletion)
	assert.Equal(t, 45, *goal.DaysToCompletion)
	require.NotNil(t, goal.CompletedAt)
}
