package handlers

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/calc"
	"github.com/cpsc/analytics/pkg/datetime"
)

// underutilizedThreshold is the utilization score below which an account
// is flagged
const underutilizedThreshold = 50.0

// InstitutionsHandler analyzes institution performance and utilization
type InstitutionsHandler struct {
	institutions ports.InstitutionReader
	goals        ports.GoalReader
	transactions ports.TransactionReader
	logger       *zap.Logger
}

// NewInstitutionsHandler creates a new institution analysis handler
func NewInstitutionsHandler(
	institutions ports.InstitutionReader,
	goals ports.GoalReader,
	transactions ports.TransactionReader,
	logger *zap.Logger,
) *InstitutionsHandler {
	return &InstitutionsHandler{
		institutions: institutions,
		goals:        goals,
		transactions: transactions,
		logger:       logger,
	}
}

// Handle executes the institution analysis query
func (h *InstitutionsHandler) Handle(ctx context.Context, query queries.InstitutionsQuery) (*queries.InstitutionsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if len(institutions) == 0 {
		h.logger.Warn("No institutions found", zap.String("userID", query.UserID))
		return &queries.InstitutionsResult{
			Institutions:  []queries.InstitutionDetail{},
			Underutilized: []queries.UnderutilizedInstitution{},
			Message:       "No institutions found",
		}, nil
	}

	goals, err := h.goals.GetGoals(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	var start, end *time.Time
	if query.StartDate != "" && query.EndDate != "" {
		start, end, err = parseWindow(query.StartDate, query.EndDate)
		if err != nil {
			return nil, err
		}
	}

	details := make([]queries.InstitutionDetail, 0, len(institutions))
	var totalBalance, totalStarting float64
	for _, inst := range institutions {
		detail, err := h.analyzeInstitution(ctx, query.UserID, inst, goals, start, end)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
		totalBalance += inst.CurrentBalance
		totalStarting += inst.StartingBalance
	}

	result := &queries.InstitutionsResult{
		UserID: query.UserID,
		Summary: queries.InstitutionSummary{
			TotalInstitutions:    len(institutions),
			TotalBalance:         calc.Round2(totalBalance),
			TotalStartingBalance: calc.Round2(totalStarting),
			TotalGrowth:          calc.Round2(totalBalance - totalStarting),
			AverageBalance:       calc.Round2(totalBalance / float64(len(institutions))),
		},
		Institutions:  details,
		Rankings:      rankInstitutions(details),
		Underutilized: identifyUnderutilized(details),
		Portfolio:     portfolioMetrics(institutions, details),
	}
	if start != nil && end != nil {
		result.AnalysisPeriod = &queries.DateRange{Start: query.StartDate, End: query.EndDate}
	}

	h.logger.Debug("Institution analysis complete",
		zap.String("userID", query.UserID),
		zap.Int("institutions", len(institutions)),
	)

	return result, nil
}

// analyzeInstitution derives balances, activity and goal-link metrics for
// one institution
func (h *InstitutionsHandler) analyzeInstitution(
	ctx context.Context,
	userID string,
	inst records.Institution,
	goals []records.Goal,
	start, end *time.Time,
) (queries.InstitutionDetail, error) {
	transactions, err := h.transactions.GetByInstitution(ctx, userID, inst.InstitutionID, start, end)
	if err != nil {
		return queries.InstitutionDetail{}, err
	}

	var deposits, withdrawals []float64
	for _, t := range transactions {
		if t.IsDeposit() {
			deposits = append(deposits, t.Amount)
		} else {
			withdrawals = append(withdrawals, t.Amount)
		}
	}
	totalDeposits := calc.Sum(deposits)
	totalWithdrawals := calc.Sum(withdrawals)

	var avgPerMonth float64
	var firstDate, lastDate *string
	if len(transactions) > 0 {
		first, last := transactions[0].TransactionDate, transactions[0].TransactionDate
		for _, t := range transactions {
			if t.TransactionDate < first {
				first = t.TransactionDate
			}
			if t.TransactionDate > last {
				last = t.TransactionDate
			}
		}
		if span := datetime.DaysBetween(first, last); span > 0 {
			avgPerMonth = float64(len(transactions)) / float64(span) * 30
		}
		firstISO := datetime.UnixToISO(first)
		lastISO := datetime.UnixToISO(last)
		firstDate, lastDate = &firstISO, &lastISO
	}

	var linkedNames []string
	allocatedPercent := 0
	for _, goal := range goals {
		if percent, ok := goal.LinkedInstitutions[inst.InstitutionID]; ok {
			linkedNames = append(linkedNames, goal.Name)
			allocatedPercent += percent
		}
	}

	utilization := utilizationScore(inst, len(transactions), allocatedPercent)

	return queries.InstitutionDetail{
		InstitutionID:   inst.InstitutionID,
		InstitutionName: inst.InstitutionName,
		Balances: queries.InstitutionBalances{
			Starting:   calc.Round2(inst.StartingBalance),
			Current:    calc.Round2(inst.CurrentBalance),
			Change:     calc.Round2(inst.BalanceChange()),
			GrowthRate: calc.Round2(inst.GrowthRate()),
		},
		Transactions: queries.InstitutionActivity{
			TotalCount:           len(transactions),
			DepositCount:         len(deposits),
			WithdrawalCount:      len(withdrawals),
			TotalDeposits:        calc.Round2(totalDeposits),
			TotalWithdrawals:     calc.Round2(totalWithdrawals),
			NetFlow:              calc.Round2(totalDeposits - totalWithdrawals),
			AvgPerMonth:          calc.Round2(avgPerMonth),
			FirstTransactionDate: firstDate,
			LastTransactionDate:  lastDate,
		},
		Goals: queries.InstitutionGoalLinks{
			LinkedCount:           len(linkedNames),
			TotalAllocatedPercent: allocatedPercent,
			LinkedGoalNames:       linkedNames,
		},
		Metrics: queries.InstitutionMetrics{
			UtilizationScore: utilization,
			ActivityLevel:    activityLevel(avgPerMonth),
		},
		CreatedAt: datetime.UnixToISO(inst.CreatedAt),
	}, nil
}

// utilizationScore combines balance presence (30), transaction activity
// (30) and goal allocation (40) into a 0-100 score
func utilizationScore(inst records.Institution, transactionCount, allocatedPercent int) float64 {
	score := 0.0
	if inst.CurrentBalance > 0 {
		score += 30
	}
	if transactionCount > 0 {
		activity := float64(transactionCount) / 10 * 30
		if activity > 30 {
			activity = 30
		}
		score += activity
	}
	if allocatedPercent > 0 {
		allocation := float64(allocatedPercent) / 100 * 40
		if allocation > 40 {
			allocation = 40
		}
		score += allocation
	}
	if score > 100 {
		score = 100
	}
	return score
}

func activityLevel(avgPerMonth float64) string {
	switch {
	case avgPerMonth >= 10:
		return "Very Active"
	case avgPerMonth >= 5:
		return "Active"
	case avgPerMonth >= 1:
		return "Moderate"
	case avgPerMonth > 0:
		return "Low"
	default:
		return "Inactive"
	}
}

// rankInstitutions orders institutions along each comparison dimension
func rankInstitutions(details []queries.InstitutionDetail) *queries.InstitutionRankings {
	rank := func(value func(queries.InstitutionDetail) float64) []queries.RankedInstitution {
		sorted := append([]queries.InstitutionDetail(nil), details...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return value(sorted[i]) > value(sorted[j])
		})
		ranked := make([]queries.RankedInstitution, len(sorted))
		for i, inst := range sorted {
			ranked[i] = queries.RankedInstitution{
				Rank:            i + 1,
				InstitutionName: inst.InstitutionName,
				Value:           value(inst),
			}
		}
		return ranked
	}

	return &queries.InstitutionRankings{
		ByBalance: rank(func(d queries.InstitutionDetail) float64 {
			return d.Balances.Current
		}),
		ByGrowthRate: rank(func(d queries.InstitutionDetail) float64 {
			return d.Balances.GrowthRate
		}),
		ByActivity: rank(func(d queries.InstitutionDetail) float64 {
			return float64(d.Transactions.TotalCount)
		}),
		ByUtilization: rank(func(d queries.InstitutionDetail) float64 {
			return d.Metrics.UtilizationScore
		}),
	}
}

// identifyUnderutilized flags accounts scoring below the threshold, with
// the lowest scores first
func identifyUnderutilized(details []queries.InstitutionDetail) []queries.UnderutilizedInstitution {
	underutilized := []queries.UnderutilizedInstitution{}
	for _, inst := range details {
		if inst.Metrics.UtilizationScore >= underutilizedThreshold {
			continue
		}

		var reasons, recommendations []string
		if inst.Transactions.TotalCount == 0 {
			reasons = append(reasons, "No transactions")
			recommendations = append(recommendations, "Start using this account for transactions")
		}
		if inst.Goals.TotalAllocatedPercent == 0 {
			reasons = append(reasons, "Not linked to any goals")
			recommendations = append(recommendations, "Link to one or more financial goals")
		}
		if inst.Balances.Current == 0 {
			reasons = append(reasons, "Zero balance")
			recommendations = append(recommendations, "Add funds to this account")
		}

		underutilized = append(underutilized, queries.UnderutilizedInstitution{
			InstitutionID:    inst.InstitutionID,
			InstitutionName:  inst.InstitutionName,
			UtilizationScore: inst.Metrics.UtilizationScore,
			Reasons:          reasons,
			Recommendations:  recommendations,
		})
	}
	sort.SliceStable(underutilized, func(i, j int) bool {
		return underutilized[i].UtilizationScore < underutilized[j].UtilizationScore
	})
	return underutilized
}

// portfolioMetrics reports balance distribution, HHI concentration and
// growth across the portfolio
func portfolioMetrics(institutions []records.Institution, details []queries.InstitutionDetail) *queries.PortfolioMetrics {
	totalBalance := 0.0
	for _, inst := range institutions {
		totalBalance += inst.CurrentBalance
	}

	distribution := make([]queries.BalanceShare, len(institutions))
	balances := make([]float64, len(institutions))
	for i, inst := range institutions {
		percent := 0.0
		if totalBalance > 0 {
			percent = inst.CurrentBalance / totalBalance * 100
		}
		distribution[i] = queries.BalanceShare{
			InstitutionName: inst.InstitutionName,
			Balance:         calc.Round2(inst.CurrentBalance),
			Percent:         calc.Round2(percent),
		}
		balances[i] = inst.CurrentBalance
	}

	var hhi float64
	var level string
	if totalBalance > 0 {
		hhi = calc.HHI(balances)
		switch {
		case hhi < 0.15:
			level = "Highly diversified"
		case hhi < 0.25:
			level = "Moderately diversified"
		case hhi < 0.50:
			level = "Somewhat concentrated"
		default:
			level = "Highly concentrated"
		}
	} else {
		level = "No balance"
	}

	recommendation := "Well diversified"
	if hhi > 0.5 {
		recommendation = "Consider diversifying"
	}

	growthRates := make([]float64, len(details))
	bestIdx, worstIdx := 0, 0
	for i, detail := range details {
		growthRates[i] = detail.Balances.GrowthRate
		if detail.Balances.GrowthRate > details[bestIdx].Balances.GrowthRate {
			bestIdx = i
		}
		if detail.Balances.GrowthRate < details[worstIdx].Balances.GrowthRate {
			worstIdx = i
		}
	}

	return &queries.PortfolioMetrics{
		Distribution: distribution,
		Concentration: queries.PortfolioConcentration{
			HHI:            calc.Round4(hhi),
			Level:          level,
			Recommendation: recommendation,
		},
		Performance: queries.PortfolioPerformance{
			AverageGrowthRate: calc.Round2(calc.Average(growthRates)),
			BestPerformer:     details[bestIdx].InstitutionName,
			WorstPerformer:    details[worstIdx].InstitutionName,
		},
	}
}
