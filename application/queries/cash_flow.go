package queries

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// Grouping periods for cash flow breakdowns
const (
	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
)

// CashFlowQuery requests income vs expense analysis over a date window
type CashFlowQuery struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	GroupBy   string `json:"group_by,omitempty"`
}

// Validate validates the query
func (q CashFlowQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	switch q.GroupBy {
	case "", GroupByDay, GroupByWeek, GroupByMonth:
	default:
		return apperrors.NewDomainError(
			apperrors.DomainValidationError,
			"INVALID_GROUP_BY",
			"groupBy must be one of day, week, month",
		).WithDetail("group_by", q.GroupBy)
	}
	return validateDateRange(q.StartDate, q.EndDate)
}

// CashFlowSummary holds overall totals for the window
type CashFlowSummary struct {
	TotalDeposits    float64 `json:"total_deposits"`
	TotalWithdrawals float64 `json:"total_withdrawals"`
	NetCashFlow      float64 `json:"net_cash_flow"`
	TransactionCount int     `json:"transaction_count"`
	DepositCount     int     `json:"deposit_count,omitempty"`
	WithdrawalCount  int     `json:"withdrawal_count,omitempty"`
}

// CashFlowMetrics holds per-side statistics for the window
type CashFlowMetrics struct {
	SavingsRate          float64 `json:"savings_rate"`
	DailyBurnRate        float64 `json:"daily_burn_rate"`
	AverageDeposit       float64 `json:"average_deposit"`
	AverageWithdrawal    float64 `json:"average_withdrawal"`
	MedianDeposit        float64 `json:"median_deposit"`
	MedianWithdrawal     float64 `json:"median_withdrawal"`
	DepositVolatility    float64 `json:"deposit_volatility"`
	WithdrawalVolatility float64 `json:"withdrawal_volatility"`
}

// CashFlowBalance reports current holdings and runway. RunwayDays is null
// when there is no net burn.
type CashFlowBalance struct {
	CurrentTotal float64 `json:"current_total"`
	RunwayDays   *int    `json:"runway_days"`
}

// CashFlowTrends holds the per-period series, aligned by index
type CashFlowTrends struct {
	Periods        []string  `json:"periods"`
	NetFlows       []float64 `json:"net_flows"`
	Deposits       []float64 `json:"deposits"`
	Withdrawals    []float64 `json:"withdrawals"`
	MovingAverage  []float64 `json:"moving_average"`
	TrendDirection string    `json:"trend_direction"`
	BestPeriod     string    `json:"best_period"`
	WorstPeriod    string    `json:"worst_period"`
}

// Anomaly flags a transaction whose amount is an outlier for its side
type Anomaly struct {
	Type          string  `json:"type"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
}

// CashFlowResult is the full cash flow analysis payload. Metrics, Balance
// and Trends are omitted when the window holds too few transactions.
type CashFlowResult struct {
	UserID    string           `json:"user_id,omitempty"`
	DateRange PeriodRange      `json:"date_range"`
	Summary   CashFlowSummary  `json:"summary"`
	Metrics   *CashFlowMetrics `json:"metrics,omitempty"`
	Balance   *CashFlowBalance `json:"balance,omitempty"`
	Trends    *CashFlowTrends  `json:"trends,omitempty"`
	Anomalies []Anomaly        `json:"anomalies"`
	Message   string           `json:"message,omitempty"`
}

// ProjectCashFlowQuery requests a forward cash flow projection based on
// the trailing six months of history
type ProjectCashFlowQuery struct {
	UserID      string `json:"user_id"`
	MonthsAhead int    `json:"months_ahead,omitempty"`
}

// Validate validates the query
func (q ProjectCashFlowQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	if q.MonthsAhead < 0 || q.MonthsAhead > 24 {
		return apperrors.NewDomainError(
			apperrors.DomainValidationError,
			"INVALID_PROJECTION_HORIZON",
			"monthsAhead must be between 0 and 24",
		)
	}
	return nil
}

// MonthlyFlowAverage holds the per-month historical averages behind a
// projection
type MonthlyFlowAverage struct {
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
	NetFlow     float64 `json:"net_flow"`
}

// MonthProjection is one projected future month
type MonthProjection struct {
	Month                string  `json:"month"`
	ProjectedDeposits    float64 `json:"projected_deposits"`
	ProjectedWithdrawals float64 `json:"projected_withdrawals"`
	ProjectedNetFlow     float64 `json:"projected_net_flow"`
	ProjectedBalance     float64 `json:"projected_balance"`
}

// CashFlowProjectionResult is the projection payload
type CashFlowProjectionResult struct {
	CurrentBalance           float64            `json:"current_balance"`
	HistoricalMonthlyAverage MonthlyFlowAverage `json:"historical_monthly_average"`
	Projections              []MonthProjection  `json:"projections"`
	Message                  string             `json:"message,omitempty"`
}
