package queries

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// GoalsQuery requests a snapshot analysis of all of a user's goals.
// Goals are valued against current institution balances, so no date
// range applies.
type GoalsQuery struct {
	UserID string `json:"user_id"`
}

// Validate validates the query
func (q GoalsQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	return nil
}

// GoalSummary holds portfolio-level goal aggregates
type GoalSummary struct {
	TotalGoals         int     `json:"total_goals"`
	ActiveGoals        int     `json:"active_goals"`
	CompletedGoals     int     `json:"completed_goals"`
	TotalTargetAmount  float64 `json:"total_target_amount,omitempty"`
	TotalCurrentAmount float64 `json:"total_current_amount,omitempty"`
	OverallProgress    float64 `json:"overall_progress,omitempty"`
}

// GoalAllocation details one institution's contribution to a goal
type GoalAllocation struct {
	InstitutionName   string  `json:"institution_name"`
	InstitutionID     string  `json:"institution_id"`
	AllocationPercent int     `json:"allocation_percent"`
	AllocatedAmount   float64 `json:"allocated_amount"`
}

// GoalDetail is the full analysis of a single goal. Inactive goals are
// reported as fully complete so closed goals do not chart as 0%.
type GoalDetail struct {
	GoalID                      string           `json:"goal_id"`
	Name                        string           `json:"name"`
	Description                 string           `json:"description,omitempty"`
	TargetAmount                float64          `json:"target_amount"`
	CurrentAmount               float64          `json:"current_amount"`
	RemainingAmount             float64          `json:"remaining_amount"`
	ProgressPercent             float64          `json:"progress_percent"`
	IsCompleted                 bool             `json:"is_completed"`
	IsActive                    bool             `json:"is_active"`
	CreatedAt                   string           `json:"created_at"`
	CompletedAt                 *string          `json:"completed_at"`
	DaysSinceCreation           int              `json:"days_since_creation"`
	DaysToCompletion            *int             `json:"days_to_completion"`
	EstimatedCompletionDate     *string          `json:"estimated_completion_date"`
	RequiredMonthlyContribution float64          `json:"required_monthly_contribution"`
	Allocations                 []GoalAllocation `json:"allocations"`
	TotalAllocationPercent      int              `json:"total_allocation_percent"`
}

// AtRiskGoal flags a goal unlikely to complete on its current trajectory
type AtRiskGoal struct {
	GoalID          string   `json:"goal_id"`
	Name            string   `json:"name"`
	ProgressPercent float64  `json:"progress_percent"`
	RiskScore       int      `json:"risk_score"`
	RiskReasons     []string `json:"risk_reasons"`
	Recommendation  string   `json:"recommendation"`
}

// GoalPriority ranks an active goal by achievability and urgency
type GoalPriority struct {
	GoalID                  string  `json:"goal_id"`
	Name                    string  `json:"name"`
	PriorityScore           int     `json:"priority_score"`
	ProgressPercent         float64 `json:"progress_percent"`
	RemainingAmount         float64 `json:"remaining_amount"`
	EstimatedCompletionDate *string `json:"estimated_completion_date"`
}

// GoalInsights groups the derived goal recommendations
type GoalInsights struct {
	AtRisk         []AtRiskGoal   `json:"at_risk"`
	NearCompletion []GoalDetail   `json:"near_completion"`
	Priorities     []GoalPriority `json:"priorities"`
}

// GoalsResult is the full goal analysis payload
type GoalsResult struct {
	UserID   string       `json:"user_id,omitempty"`
	Summary  GoalSummary  `json:"summary"`
	Goals    []GoalDetail `json:"goals"`
	Insights GoalInsights `json:"insights"`
	Message  string       `json:"message,omitempty"`
}
