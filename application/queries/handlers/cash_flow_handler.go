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

// Analysis thresholds shared by the aggregation handlers
const (
	minTransactionsForAnalysis = 5
	minTransactionsForOutliers = 10
	outlierThreshold           = 2.0
	projectionHistoryMonths    = 6
	insufficientDataMessage    = "Insufficient transaction data for analysis"
)

// CashFlowHandler analyzes income vs expenses over a date window
type CashFlowHandler struct {
	institutions ports.InstitutionReader
	transactions ports.TransactionReader
	logger       *zap.Logger
}

// NewCashFlowHandler creates a new cash flow handler
func NewCashFlowHandler(
	institutions ports.InstitutionReader,
	transactions ports.TransactionReader,
	logger *zap.Logger,
) *CashFlowHandler {
	return &CashFlowHandler{
		institutions: institutions,
		transactions: transactions,
		logger:       logger,
	}
}

// Handle executes the cash flow query
func (h *CashFlowHandler) Handle(ctx context.Context, query queries.CashFlowQuery) (*queries.CashFlowResult, error) {
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

	days := datetime.DaysBetween(start.Unix(), end.Unix())

	if len(transactions) < minTransactionsForAnalysis {
		h.logger.Warn("Insufficient transactions for cash flow analysis",
			zap.String("userID", query.UserID),
			zap.Int("count", len(transactions)),
		)
		return &queries.CashFlowResult{
			DateRange: queries.PeriodRange{Start: query.StartDate, End: query.EndDate},
			Anomalies: []queries.Anomaly{},
			Message:   insufficientDataMessage,
		}, nil
	}

	deposits := amountsOf(transactions, records.TransactionTypeDeposit)
	withdrawals := amountsOf(transactions, records.TransactionTypeWithdrawal)

	burnRate := 0.0
	if days > 0 {
		burnRate = calc.BurnRate(withdrawals, days)
	}

	groupBy := query.GroupBy
	if groupBy == "" {
		groupBy = queries.GroupByMonth
	}
	grouped := groupByPeriod(transactions, groupBy)
	trends := buildTrends(grouped)
	anomalies := detectAnomalies(transactions)

	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	totalBalance := 0.0
	for _, inst := range institutions {
		totalBalance += inst.CurrentBalance
	}
	var runwayDays *int
	if runway := calc.Runway(totalBalance, burnRate); runway >= 0 {
		runwayDays = &runway
	}

	netFlow := calc.NetFlow(deposits, withdrawals)
	result := &queries.CashFlowResult{
		UserID: query.UserID,
		DateRange: queries.PeriodRange{
			Start: query.StartDate,
			End:   query.EndDate,
			Days:  days,
		},
		Summary: queries.CashFlowSummary{
			TotalDeposits:    calc.Round2(calc.Sum(deposits)),
			TotalWithdrawals: calc.Round2(calc.Sum(withdrawals)),
			NetCashFlow:      calc.Round2(netFlow),
			TransactionCount: len(transactions),
			DepositCount:     len(deposits),
			WithdrawalCount:  len(withdrawals),
		},
		Metrics: &queries.CashFlowMetrics{
			SavingsRate:          calc.Round2(calc.SavingsRate(deposits, withdrawals)),
			DailyBurnRate:        calc.Round2(burnRate),
			AverageDeposit:       calc.Round2(calc.Average(deposits)),
			AverageWithdrawal:    calc.Round2(calc.Average(withdrawals)),
			MedianDeposit:        calc.Round2(calc.Median(deposits)),
			MedianWithdrawal:     calc.Round2(calc.Median(withdrawals)),
			DepositVolatility:    calc.Round2(calc.StdDev(deposits)),
			WithdrawalVolatility: calc.Round2(calc.StdDev(withdrawals)),
		},
		Balance: &queries.CashFlowBalance{
			CurrentTotal: calc.Round2(totalBalance),
			RunwayDays:   runwayDays,
		},
		Trends:    trends,
		Anomalies: anomalies,
	}

	h.logger.Debug("Cash flow analysis complete",
		zap.String("userID", query.UserID),
		zap.Float64("netFlow", netFlow),
		zap.Int("transactions", len(transactions)),
	)

	return result, nil
}

// HandleProjection projects future cash flow from the trailing six months
func (h *CashFlowHandler) HandleProjection(ctx context.Context, query queries.ProjectCashFlowQuery) (*queries.CashFlowProjectionResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	monthsAhead := query.MonthsAhead
	if monthsAhead == 0 {
		monthsAhead = 3
	}

	end := time.Now().UTC()
	start := datetime.FromUnix(datetime.AddMonths(end.Unix(), -projectionHistoryMonths))

	transactions, err := h.transactions.GetAllUserTransactions(ctx, query.UserID, &start, &end)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return &queries.CashFlowProjectionResult{
			Projections: []queries.MonthProjection{},
			Message:     insufficientDataMessage,
		}, nil
	}

	deposits := amountsOf(transactions, records.TransactionTypeDeposit)
	withdrawals := amountsOf(transactions, records.TransactionTypeWithdrawal)

	avgMonthlyDeposits := calc.Sum(deposits) / projectionHistoryMonths
	avgMonthlyWithdrawals := calc.Sum(withdrawals) / projectionHistoryMonths

	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	balance := 0.0
	for _, inst := range institutions {
		balance += inst.CurrentBalance
	}
	currentBalance := balance

	projections := make([]queries.MonthProjection, 0, monthsAhead)
	for month := 1; month <= monthsAhead; month++ {
		net := avgMonthlyDeposits - avgMonthlyWithdrawals
		balance += net
		futureTS := datetime.AddMonths(end.Unix(), month)
		projections = append(projections, queries.MonthProjection{
			Month:                datetime.MonthKey(futureTS),
			ProjectedDeposits:    calc.Round2(avgMonthlyDeposits),
			ProjectedWithdrawals: calc.Round2(avgMonthlyWithdrawals),
			ProjectedNetFlow:     calc.Round2(net),
			ProjectedBalance:     calc.Round2(balance),
		})
	}

	return &queries.CashFlowProjectionResult{
		CurrentBalance: calc.Round2(currentBalance),
		HistoricalMonthlyAverage: queries.MonthlyFlowAverage{
			Deposits:    calc.Round2(avgMonthlyDeposits),
			Withdrawals: calc.Round2(avgMonthlyWithdrawals),
			NetFlow:     calc.Round2(avgMonthlyDeposits - avgMonthlyWithdrawals),
		},
		Projections: projections,
	}, nil
}

// periodTotals accumulates one grouping period's transactions
type periodTotals struct {
	deposits    []float64
	withdrawals []float64
}

// amountsOf extracts the amounts of one transaction side
func amountsOf(transactions []records.Transaction, txnType string) []float64 {
	var amounts []float64
	for _, t := range transactions {
		if t.Type == txnType {
			amounts = append(amounts, t.Amount)
		}
	}
	return amounts
}

// groupByPeriod buckets transactions into day, week or month keys
func groupByPeriod(transactions []records.Transaction, period string) map[string]*periodTotals {
	grouped := make(map[string]*periodTotals)
	for _, t := range transactions {
		var key string
		switch period {
		case queries.GroupByDay:
			key = datetime.DayKey(t.TransactionDate)
		case queries.GroupByWeek:
			key = datetime.WeekKey(t.TransactionDate)
		default:
			key = datetime.MonthKey(t.TransactionDate)
		}
		bucket, ok := grouped[key]
		if !ok {
			bucket = &periodTotals{}
			grouped[key] = bucket
		}
		if t.IsDeposit() {
			bucket.deposits = append(bucket.deposits, t.Amount)
		} else {
			bucket.withdrawals = append(bucket.withdrawals, t.Amount)
		}
	}
	return grouped
}

// buildTrends derives the per-period series and trend direction
func buildTrends(grouped map[string]*periodTotals) *queries.CashFlowTrends {
	if len(grouped) == 0 {
		return nil
	}

	periods := make([]string, 0, len(grouped))
	for key := range grouped {
		periods = append(periods, key)
	}
	sort.Strings(periods)

	netFlows := make([]float64, len(periods))
	deposits := make([]float64, len(periods))
	withdrawals := make([]float64, len(periods))
	for i, key := range periods {
		bucket := grouped[key]
		deposits[i] = calc.Round2(calc.Sum(bucket.deposits))
		withdrawals[i] = calc.Round2(calc.Sum(bucket.withdrawals))
		netFlows[i] = calc.Round2(calc.NetFlow(bucket.deposits, bucket.withdrawals))
	}

	movingAvg := calc.MovingAverage(netFlows, 3)
	for i := range movingAvg {
		movingAvg[i] = calc.Round2(movingAvg[i])
	}

	direction := "stable"
	if len(netFlows) >= 2 {
		if netFlows[len(netFlows)-1] > netFlows[len(netFlows)-2] {
			direction = "improving"
		} else {
			direction = "declining"
		}
	}

	bestIdx, worstIdx := 0, 0
	for i := range netFlows {
		if netFlows[i] > netFlows[bestIdx] {
			bestIdx = i
		}
		if netFlows[i] < netFlows[worstIdx] {
			worstIdx = i
		}
	}

	return &queries.CashFlowTrends{
		Periods:        periods,
		NetFlows:       netFlows,
		Deposits:       deposits,
		Withdrawals:    withdrawals,
		MovingAverage:  movingAvg,
		TrendDirection: direction,
		BestPeriod:     periods[bestIdx],
		WorstPeriod:    periods[worstIdx],
	}
}

// detectAnomalies flags per-side amount outliers. Analysis needs at least
// ten transactions overall and three on the side being tested.
func detectAnomalies(transactions []records.Transaction) []queries.Anomaly {
	anomalies := []queries.Anomaly{}
	if len(transactions) < minTransactionsForOutliers {
		return anomalies
	}

	for _, side := range []struct {
		txnType string
		label   string
	}{
		{records.TransactionTypeDeposit, "large_deposit"},
		{records.TransactionTypeWithdrawal, "large_withdrawal"},
	} {
		var sideTxns []records.Transaction
		for _, t := range transactions {
			if t.Type == side.txnType {
				sideTxns = append(sideTxns, t)
			}
		}
		if len(sideTxns) < 3 {
			continue
		}

		amounts := make([]float64, len(sideTxns))
		for i, t := range sideTxns {
			amounts[i] = t.Amount
		}
		for _, outlier := range calc.DetectOutliers(amounts, outlierThreshold) {
			txn := sideTxns[outlier.Index]
			description := txn.Description
			if description == "" {
				description = "No description"
			}
			anomalies = append(anomalies, queries.Anomaly{
				Type:          side.label,
				TransactionID: txn.TransactionID,
				Amount:        calc.Round2(outlier.Value),
				Date:          datetime.UnixToISO(txn.TransactionDate),
				Description:   description,
			})
		}
	}

	return anomalies
}
