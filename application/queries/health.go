package queries

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// Composite health score weights
const (
	HealthWeightSavingsRate     = 0.25
	HealthWeightGoalProgress    = 0.25
	HealthWeightDiversity       = 0.20
	HealthWeightUtilization     = 0.15
	HealthWeightRegularity      = 0.15
)

// Health rating band thresholds
const (
	HealthScoreExcellent = 90.0
	HealthScoreGood      = 75.0
	HealthScoreFair      = 60.0
	HealthScorePoor      = 45.0
)

// HealthQuery requests a composite financial health score over a date
// window
type HealthQuery struct {
	UserID                 string `json:"user_id"`
	StartDate              string `json:"start_date"`
	EndDate                string `json:"end_date"`
	IncludeRecommendations bool   `json:"include_recommendations"`
}

// Validate validates the query
func (q HealthQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	return validateDateRange(q.StartDate, q.EndDate)
}

// HealthComponent is one weighted dimension of the composite score
type HealthComponent struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// HealthComponents breaks the composite score into its dimensions
type HealthComponents struct {
	SavingsRate           HealthComponent `json:"savings_rate"`
	GoalProgress          HealthComponent `json:"goal_progress"`
	SpendingDiversity     HealthComponent `json:"spending_diversity"`
	AccountUtilization    HealthComponent `json:"account_utilization"`
	TransactionRegularity HealthComponent `json:"transaction_regularity"`
}

// HealthResult is the full health score payload
type HealthResult struct {
	OverallScore    float64          `json:"overall_score"`
	Rating          string           `json:"rating"`
	Components      HealthComponents `json:"components"`
	PeriodDays      int              `json:"period_days"`
	ComputedAt      string           `json:"computed_at"`
	Recommendations []string         `json:"recommendations,omitempty"`
}
