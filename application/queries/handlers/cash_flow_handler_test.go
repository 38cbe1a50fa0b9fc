package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
)

func newCashFlowHandler(insts *stubInstitutions, txns *stubTransactions) *CashFlowHandler {
	return NewCashFlowHandler(insts, txns, zap.NewNop())
}

func TestCashFlowInsufficientData(t *testing.T) {
	txns := &stubTransactions{transactions: []records.Transaction{
		{TransactionID: "t1", Type: records.TransactionTypeDeposit, Amount: 100,
			TransactionDate: unixDate(2025, time.January, 5)},
		{TransactionID: "t2", Type: records.TransactionTypeWithdrawal, Amount: 50,
			TransactionDate: unixDate(2025, time.January, 10)},
	}}
	handler := newCashFlowHandler(&stubInstitutions{}, txns)

	result, err := handler.Handle(context.Background(), queries.CashFlowQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, "Insufficient transaction data for analysis", result.Message)
	assert.Zero(t, result.Summary.TransactionCount)
	assert.Nil(t, result.Metrics)
	assert.Nil(t, result.Balance)
	assert.Nil(t, result.Trends)
	assert.Empty(t, result.Anomalies)
	assert.Equal(t, "2025-01-01", result.DateRange.Start)
}

func TestCashFlowSummaryAndTrends(t *testing.T) {
	txns := &stubTransactions{transactions: []records.Transaction{
		{TransactionID: "t1", Type: records.TransactionTypeDeposit, Amount: 3000,
			TransactionDate: unixDate(2025, time.January, 2)},
		{TransactionID: "t2", Type: records.TransactionTypeWithdrawal, Amount: 500,
			TransactionDate: unixDate(2025, time.January, 10)},
		{TransactionID: "t3", Type: records.TransactionTypeWithdrawal, Amount: 300,
			TransactionDate: unixDate(2025, time.January, 15)},
		{TransactionID: "t4", Type: records.TransactionTypeWithdrawal, Amount: 200,
			TransactionDate: unixDate(2025, time.January, 20)},
		{TransactionID: "t5", Type: records.TransactionTypeDeposit, Amount: 1000,
			TransactionDate: unixDate(2025, time.February, 3)},
		{TransactionID: "t6", Type: records.TransactionTypeWithdrawal, Amount: 1000,
			TransactionDate: unixDate(2025, time.February, 14)},
	}}
	handler := newCashFlowHandler(&stubInstitutions{institutions: []records.Institution{
		{InstitutionID: "inst-1", CurrentBalance: 10000},
	}}, txns)

	result, err := handler.Handle(context.Background(), queries.CashFlowQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-02-28",
	})
	require.NoError(t, err)

	assert.Equal(t, 4000.0, result.Summary.TotalDeposits)
	assert.Equal(t, 2000.0, result.Summary.TotalWithdrawals)
	assert.Equal(t, 2000.0, result.Summary.NetCashFlow)
	assert.Equal(t, 6, result.Summary.TransactionCount)
	assert.Equal(t, 2, result.Summary.DepositCount)
	assert.Equal(t, 4, result.Summary.WithdrawalCount)

	require.NotNil(t, result.Metrics)
	assert.Equal(t, 50.0, result.Metrics.SavingsRate)
	assert.Equal(t, 2000.0, result.Metrics.AverageDeposit)
	assert.Equal(t, 500.0, result.Metrics.AverageWithdrawal)

	require.NotNil(t, result.Balance)
	assert.Equal(t, 10000.0, result.Balance.CurrentTotal)
	require.NotNil(t, result.Balance.RunwayDays)
	assert.Positive(t, *result.Balance.RunwayDays)

	require.NotNil(t, result.Trends)
	assert.Equal(t, []string{"2025-01", "2025-02"}, result.Trends.Periods)
	assert.Equal(t, []float64{2000, 0}, result.Trends.NetFlows)
	assert.Equal(t, "declining", result.Trends.TrendDirection)
	assert.Equal(t, "2025-01", result.Trends.BestPeriod)
	assert.Equal(t, "2025-02", result.Trends.WorstPeriod)
}

func TestCashFlowDetectsWithdrawalAnomaly(t *testing.T) {
	transactions := make([]records.Transaction, 0, 11)
	for i := 0; i < 10; i++ {
		transactions = append(transactions, records.Transaction{
			TransactionID:   "t-small",
			Type:            records.TransactionTypeWithdrawal,
			Amount:          100,
			TransactionDate: unixDate(2025, time.March, i+1),
		})
	}
	transactions = append(transactions, records.Transaction{
		TransactionID:   "t-big",
		Type:            records.TransactionTypeWithdrawal,
		Amount:          10000,
		TransactionDate: unixDate(2025, time.March, 20),
	})
	handler := newCashFlowHandler(&stubInstitutions{}, &stubTransactions{transactions: transactions})

	result, err := handler.Handle(context.Background(), queries.CashFlowQuery{
		UserID:    "user-1",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-31",
	})
	require.NoError(t, err)

	require.Len(t, result.Anomalies, 1)
	anomaly := result.Anomalies[0]
	assert.Equal(t, "large_withdrawal", anomaly.Type)
	assert.Equal(t, "t-big", anomaly.TransactionID)
	assert.Equal(t, 10000.0, anomaly.Amount)
	assert.Equal(t, "No description", anomaly.Description)
}

func TestCashFlowSkipsAnomaliesBelowMinimum(t *testing.T) {
	transactions := make([]records.Transaction, 0, 6)
	for i := 0; i < 5; i++ {
		transactions = append(transactions, records.Transaction{
			Type:            records.TransactionTypeWithdrawal,
			Amount:          100,
			TransactionDate: unixDate(2025, time.March, i+1),
		})
	}
	transactions = append(transactions, records.Transaction{
		Type:            records.TransactionTypeWithdrawal,
		Amount:          9999,
		TransactionDate: unixDate(2025, time.March, 10),
	})
	handler := newCashFlowHandler(&stubInstitutions{}, &stubTransactions{transactions: transactions})

	result, err := handler.Handle(context.Background(), queries.CashFlowQuery{
		UserID:    "user-1",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-31",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Anomalies)
}

func TestCashFlowProjectionNoHistory(t *testing.T) {
	handler := newCashFlowHandler(&stubInstitutions{}, &stubTransactions{})

	result, err := handler.HandleProjection(context.Background(), queries.ProjectCashFlowQuery{
		UserID: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Insufficient transaction data for analysis", result.Message)
	assert.Empty(t, result.Projections)
}

func TestCashFlowProjection(t *testing.T) {
	now := time.Now().UTC().Unix()
	txns := &stubTransactions{transactions: []records.Transaction{
		{Type: records.TransactionTypeDeposit, Amount: 6000, TransactionDate: now - 86400*30},
		{Type: records.TransactionTypeWithdrawal, Amount: 3000, TransactionDate: now - 86400*15},
	}}
	handler := newCashFlowHandler(&stubInstitutions{institutions: []records.Institution{
		{InstitutionID: "inst-1", CurrentBalance: 2000},
	}}, txns)

	result, err := handler.HandleProjection(context.Background(), queries.ProjectCashFlowQuery{
		UserID:      "user-1",
		MonthsAhead: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2000.0, result.CurrentBalance)
	assert.Equal(t, 1000.0, result.HistoricalMonthlyAverage.Deposits)
	assert.Equal(t, 500.0, result.HistoricalMonthlyAverage.Withdrawals)
	assert.Equal(t, 500.0, result.HistoricalMonthlyAverage.NetFlow)

	require.Len(t, result.Projections, 2)
	assert.Equal(t, 2500.0, result.Projections[0].ProjectedBalance)
	assert.Equal(t, 3000.0, result.Projections[1].ProjectedBalance)
}
