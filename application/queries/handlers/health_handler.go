package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/calc"
	"github.com/cpsc/analytics/pkg/datetime"
)

// neutralScore is used for dimensions with no data to judge
const neutralScore = 50.0

// HealthHandler computes the composite financial health score
type HealthHandler struct {
	institutions ports.InstitutionReader
	goals        ports.GoalReader
	transactions ports.TransactionReader
	logger       *zap.Logger
}

// NewHealthHandler creates a new health score handler
func NewHealthHandler(
	institutions ports.InstitutionReader,
	goals ports.GoalReader,
	transactions ports.TransactionReader,
	logger *zap.Logger,
) *HealthHandler {
	return &HealthHandler{
		institutions: institutions,
		goals:        goals,
		transactions: transactions,
		logger:       logger,
	}
}

// Handle executes the health score query
func (h *HealthHandler) Handle(ctx context.Context, query queries.HealthQuery) (*queries.HealthResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	start, end, err := parseWindow(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	transactions, err := h.transactions.GetAllUserTransactions(ctx, query.UserID, start, end)
	if err != nil {
		return nil, err
	}
	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	goals, err := h.goals.GetGoals(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	periodDays := datetime.DaysBetween(start.Unix(), end.Unix())

	result := ComputeHealthScore(transactions, institutions, goals, periodDays)
	if query.IncludeRecommendations {
		result.Recommendations = healthRecommendations(result)
	}

	h.logger.Debug("Health score computed",
		zap.String("userID", query.UserID),
		zap.Float64("score", result.OverallScore),
	)

	return result, nil
}

// ComputeHealthScore combines the five weighted dimensions into a 0-100
// composite score
func ComputeHealthScore(
	transactions []records.Transaction,
	institutions []records.Institution,
	goals []records.Goal,
	periodDays int,
) *queries.HealthResult {
	savings := savingsScore(transactions)
	goalProgress := goalScore(goals, institutions)
	diversity := diversityScore(transactions)
	utilization := accountUtilizationScore(institutions, transactions)
	regularity := regularityScore(transactions, periodDays)

	composite := savings*queries.HealthWeightSavingsRate +
		goalProgress*queries.HealthWeightGoalProgress +
		diversity*queries.HealthWeightDiversity +
		utilization*queries.HealthWeightUtilization +
		regularity*queries.HealthWeightRegularity

	component := func(score, weight float64) queries.HealthComponent {
		return queries.HealthComponent{
			Score:        calc.Round2(score),
			Weight:       weight,
			Contribution: calc.Round2(score * weight),
		}
	}

	return &queries.HealthResult{
		OverallScore: calc.Round2(composite),
		Rating:       healthRating(composite),
		Components: queries.HealthComponents{
			SavingsRate:           component(savings, queries.HealthWeightSavingsRate),
			GoalProgress:          component(goalProgress, queries.HealthWeightGoalProgress),
			SpendingDiversity:     component(diversity, queries.HealthWeightDiversity),
			AccountUtilization:    component(utilization, queries.HealthWeightUtilization),
			TransactionRegularity: component(regularity, queries.HealthWeightRegularity),
		},
		PeriodDays: periodDays,
		ComputedAt: datetime.NowRFC3339(),
	}
}

// savingsScore maps the savings rate onto 0-100, saturating at a 20%
// rate
func savingsScore(transactions []records.Transaction) float64 {
	if len(transactions) == 0 {
		return neutralScore
	}

	var deposits, withdrawals []float64
	for _, t := range transactions {
		if t.IsDeposit() {
			deposits = append(deposits, t.Amount)
		} else if t.IsWithdrawal() {
			withdrawals = append(withdrawals, t.Amount)
		}
	}

	rate := calc.SavingsRate(deposits, withdrawals)
	switch {
	case rate <= 0:
		return 0
	case rate >= 20:
		return 100
	default:
		return rate / 20 * 100
	}
}

// goalScore averages progress across active goals
func goalScore(goals []records.Goal, institutions []records.Institution) float64 {
	var active []records.Goal
	for _, g := range goals {
		if g.IsActive {
			active = append(active, g)
		}
	}
	if len(active) == 0 {
		return neutralScore
	}

	total := 0.0
	for _, g := range active {
		if g.TargetAmount > 0 {
			total += g.ProgressPercent(institutions)
		}
	}
	avg := total / float64(len(active))
	if avg > 100 {
		avg = 100
	}
	return avg
}

// diversityScore converts the Gini coefficient of per-category spending
// into a 0-100 score. Only the primary tag of each withdrawal counts.
func diversityScore(transactions []records.Transaction) float64 {
	totals := make(map[string]float64)
	for _, t := range transactions {
		if !t.IsWithdrawal() {
			continue
		}
		tag := queries.UncategorizedTag
		if len(t.Tags) > 0 {
			tag = t.Tags[0]
		}
		totals[tag] += t.Amount
	}
	if len(totals) == 0 {
		return neutralScore
	}
	if len(totals) == 1 {
		// Single category is maximum concentration
		return 0
	}

	amounts := make([]float64, 0, len(totals))
	total := 0.0
	for _, amount := range totals {
		amounts = append(amounts, amount)
		total += amount
	}
	if total == 0 {
		return neutralScore
	}

	score := (1 - calc.Gini(amounts)) * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// accountUtilizationScore rewards having transactions across accounts,
// saturating at 80% of accounts active
func accountUtilizationScore(institutions []records.Institution, transactions []records.Transaction) float64 {
	if len(institutions) == 0 {
		return neutralScore
	}

	activeIDs := make(map[string]struct{})
	for _, t := range transactions {
		activeIDs[t.InstitutionID] = struct{}{}
	}
	activeCount := 0
	for _, inst := range institutions {
		if _, ok := activeIDs[inst.InstitutionID]; ok {
			activeCount++
		}
	}

	pct := float64(activeCount) / float64(len(institutions)) * 100
	if pct >= 80 {
		return 100
	}
	return pct / 80 * 100
}

// regularityScore rewards consistent daily transaction counts via the
// coefficient of variation. CV of 0 scores 100; CV of 2 or more scores 0.
func regularityScore(transactions []records.Transaction, periodDays int) float64 {
	if len(transactions) < 2 || periodDays <= 0 {
		return neutralScore
	}

	const secondsPerDay = 86400
	dailyCounts := make(map[int64]float64)
	for _, t := range transactions {
		dailyCounts[t.TransactionDate/secondsPerDay]++
	}
	if len(dailyCounts) < 2 {
		return neutralScore
	}

	counts := make([]float64, 0, len(dailyCounts))
	for _, count := range dailyCounts {
		counts = append(counts, count)
	}

	mean := calc.Average(counts)
	if mean == 0 {
		return neutralScore
	}

	cv := calc.StdDev(counts) / mean
	if cv >= 2 {
		return 0
	}
	return (1 - cv/2) * 100
}

func healthRating(score float64) string {
	switch {
	case score >= queries.HealthScoreExcellent:
		return "Excellent"
	case score >= queries.HealthScoreGood:
		return "Good"
	case score >= queries.HealthScoreFair:
		return "Fair"
	case score >= queries.HealthScorePoor:
		return "Poor"
	default:
		return "Needs Improvement"
	}
}

// healthRecommendations produces guidance for each dimension scoring
// under 60, headed by an overall assessment
func healthRecommendations(result *queries.HealthResult) []string {
	var recommendations []string

	if result.Components.SavingsRate.Score < 60 {
		recommendations = append(recommendations,
			"Low Savings Rate: Try to increase your savings by reducing discretionary spending. "+
				"Aim for at least 20% of deposits to be saved.")
	}
	if result.Components.GoalProgress.Score < 60 {
		recommendations = append(recommendations,
			"Slow Goal Progress: Review your goals and consider adjusting targets or increasing contributions. "+
				"Focus on your highest priority goals first.")
	}
	if result.Components.SpendingDiversity.Score < 60 {
		recommendations = append(recommendations,
			"Low Spending Diversity: Your spending is concentrated in few categories. "+
				"Review if you're neglecting important areas or over-spending in specific categories.")
	}
	if result.Components.AccountUtilization.Score < 60 {
		recommendations = append(recommendations,
			"Low Account Utilization: You have inactive accounts. "+
				"Consider consolidating accounts or ensure all accounts serve a purpose.")
	}
	if result.Components.TransactionRegularity.Score < 60 {
		recommendations = append(recommendations,
			"Irregular Transactions: Your transaction patterns are inconsistent. "+
				"Consider setting up automatic transfers and bills for more predictable cash flow.")
	}

	switch {
	case result.OverallScore >= queries.HealthScoreExcellent:
		recommendations = append([]string{"Excellent Financial Health! Keep up the great work."}, recommendations...)
	case result.OverallScore >= queries.HealthScoreGood:
		recommendations = append([]string{"Good Financial Health. Focus on the lower-scoring areas for improvement."}, recommendations...)
	case result.OverallScore < queries.HealthScorePoor:
		recommendations = append([]string{"Your financial health needs attention. Start with one improvement area at a time."}, recommendations...)
	}

	return recommendations
}
