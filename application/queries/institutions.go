package queries

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// InstitutionsQuery requests a performance and utilization analysis of a
// user's institutions. The date window is optional and only narrows the
// transaction activity metrics.
type InstitutionsQuery struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Validate validates the query
func (q InstitutionsQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	if q.StartDate != "" || q.EndDate != "" {
		return validateDateRange(q.StartDate, q.EndDate)
	}
	return nil
}

// InstitutionSummary holds portfolio-level institution aggregates
type InstitutionSummary struct {
	TotalInstitutions    int     `json:"total_institutions"`
	TotalBalance         float64 `json:"total_balance"`
	TotalStartingBalance float64 `json:"total_starting_balance,omitempty"`
	TotalGrowth          float64 `json:"total_growth,omitempty"`
	AverageBalance       float64 `json:"average_balance,omitempty"`
}

// InstitutionBalances holds balance and growth figures
type InstitutionBalances struct {
	Starting   float64 `json:"starting"`
	Current    float64 `json:"current"`
	Change     float64 `json:"change"`
	GrowthRate float64 `json:"growth_rate"`
}

// InstitutionActivity holds transaction metrics for one institution
type InstitutionActivity struct {
	TotalCount           int     `json:"total_count"`
	DepositCount         int     `json:"deposit_count"`
	WithdrawalCount      int     `json:"withdrawal_count"`
	TotalDeposits        float64 `json:"total_deposits"`
	TotalWithdrawals     float64 `json:"total_withdrawals"`
	NetFlow              float64 `json:"net_flow"`
	AvgPerMonth          float64 `json:"avg_per_month"`
	FirstTransactionDate *string `json:"first_transaction_date"`
	LastTransactionDate  *string `json:"last_transaction_date"`
}

// InstitutionGoalLinks summarizes goal allocations against an institution
type InstitutionGoalLinks struct {
	LinkedCount           int      `json:"linked_count"`
	TotalAllocatedPercent int      `json:"total_allocated_percent"`
	LinkedGoalNames       []string `json:"linked_goal_names"`
}

// InstitutionMetrics holds derived utilization metrics
type InstitutionMetrics struct {
	UtilizationScore float64 `json:"utilization_score"`
	ActivityLevel    string  `json:"activity_level"`
}

// InstitutionDetail is the full analysis of one institution
type InstitutionDetail struct {
	InstitutionID   string               `json:"institution_id"`
	InstitutionName string               `json:"institution_name"`
	Balances        InstitutionBalances  `json:"balances"`
	Transactions    InstitutionActivity  `json:"transactions"`
	Goals           InstitutionGoalLinks `json:"goals"`
	Metrics         InstitutionMetrics   `json:"metrics"`
	CreatedAt       string               `json:"created_at"`
}

// RankedInstitution is one entry in a ranking list
type RankedInstitution struct {
	Rank            int     `json:"rank"`
	InstitutionName string  `json:"institution_name"`
	Value           float64 `json:"value"`
}

// InstitutionRankings ranks institutions along several dimensions
type InstitutionRankings struct {
	ByBalance     []RankedInstitution `json:"by_balance"`
	ByGrowthRate  []RankedInstitution `json:"by_growth_rate"`
	ByActivity    []RankedInstitution `json:"by_activity"`
	ByUtilization []RankedInstitution `json:"by_utilization"`
}

// UnderutilizedInstitution flags an account scoring below the utilization
// threshold, with the reasons and suggested fixes
type UnderutilizedInstitution struct {
	InstitutionID    string   `json:"institution_id"`
	InstitutionName  string   `json:"institution_name"`
	UtilizationScore float64  `json:"utilization_score"`
	Reasons          []string `json:"reasons"`
	Recommendations  []string `json:"recommendations"`
}

// BalanceShare is one slice of the portfolio distribution
type BalanceShare struct {
	InstitutionName string  `json:"institution_name"`
	Balance         float64 `json:"balance"`
	Percent         float64 `json:"percent"`
}

// PortfolioConcentration reports balance concentration via HHI
type PortfolioConcentration struct {
	HHI            float64 `json:"hhi"`
	Level          string  `json:"level"`
	Recommendation string  `json:"recommendation"`
}

// PortfolioPerformance reports growth across the portfolio
type PortfolioPerformance struct {
	AverageGrowthRate float64 `json:"average_growth_rate"`
	BestPerformer     string  `json:"best_performer,omitempty"`
	WorstPerformer    string  `json:"worst_performer,omitempty"`
}

// PortfolioMetrics groups the portfolio-level analysis
type PortfolioMetrics struct {
	Distribution  []BalanceShare         `json:"distribution"`
	Concentration PortfolioConcentration `json:"concentration"`
	Performance   PortfolioPerformance   `json:"performance"`
}

// InstitutionsResult is the full institution analysis payload
type InstitutionsResult struct {
	UserID         string                     `json:"user_id,omitempty"`
	AnalysisPeriod *DateRange                 `json:"analysis_period,omitempty"`
	Summary        InstitutionSummary         `json:"summary"`
	Institutions   []InstitutionDetail        `json:"institutions"`
	Rankings       *InstitutionRankings       `json:"rankings,omitempty"`
	Underutilized  []UnderutilizedInstitution `json:"underutilized"`
	Portfolio      *PortfolioMetrics          `json:"portfolio,omitempty"`
	Message        string                     `json:"message,omitempty"`
}
