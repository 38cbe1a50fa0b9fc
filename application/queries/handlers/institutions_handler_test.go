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

func newInstitutionsHandler(insts *stubInstitutions, goals *stubGoals, txns *stubTransactions) *InstitutionsHandler {
	return NewInstitutionsHandler(insts, goals, txns, zap.NewNop())
}

func activeInstitutionFixture() (*stubInstitutions, *stubGoals, *stubTransactions) {
	transactions := make([]records.Transaction, 0, 12)
	for i := 0; i < 12; i++ {
		txnType := records.TransactionTypeWithdrawal
		amount := 100.0
		if i%3 == 0 {
			txnType = records.TransactionTypeDeposit
			amount = 500.0
		}
		transactions = append(transactions, records.Transaction{
			TransactionID:   "t",
			InstitutionID:   "inst-1",
			Type:            txnType,
			Amount:          amount,
			TransactionDate: unixDate(2025, time.January, 1) + int64(i)*(30*86400/11),
		})
	}
	insts := &stubInstitutions{institutions: []records.Institution{
		{InstitutionID: "inst-1", InstitutionName: "Chase", StartingBalance: 4000,
			CurrentBalance: 5000, CreatedAt: unixDate(2024, time.June, 1)},
		{InstitutionID: "inst-2", InstitutionName: "Dormant CU", StartingBalance: 0,
			CurrentBalance: 0, CreatedAt: unixDate(2024, time.June, 1)},
	}}
	goals := &stubGoals{goals: []records.Goal{
		{GoalID: "goal-1", Name: "Emergency Fund", TargetAmount: 10000, IsActive: true,
			LinkedInstitutions: map[string]int{"inst-1": 50}},
	}}
	return insts, goals, &stubTransactions{transactions: transactions}
}

func TestInstitutionsNoInstitutions(t *testing.T) {
	handler := newInstitutionsHandler(&stubInstitutions{}, &stubGoals{}, &stubTransactions{})

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, "No institutions found", result.Message)
	assert.Empty(t, result.Institutions)
	assert.Nil(t, result.Rankings)
}

func TestInstitutionsActivityAndUtilization(t *testing.T) {
	insts, goals, txns := activeInstitutionFixture()
	handler := newInstitutionsHandler(insts, goals, txns)

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.TotalInstitutions)
	assert.Equal(t, 5000.0, result.Summary.TotalBalance)
	assert.Equal(t, 1000.0, result.Summary.TotalGrowth)
	assert.Nil(t, result.AnalysisPeriod)

	require.Len(t, result.Institutions, 2)
	chase := result.Institutions[0]
	assert.Equal(t, "Chase", chase.InstitutionName)
	assert.Equal(t, 25.0, chase.Balances.GrowthRate)
	assert.Equal(t, 12, chase.Transactions.TotalCount)
	assert.Equal(t, 4, chase.Transactions.DepositCount)
	assert.Equal(t, 8, chase.Transactions.WithdrawalCount)
	assert.Equal(t, "Very Active", chase.Metrics.ActivityLevel)

	// 30 balance + 30 activity cap + 20 from a 50% allocation
	assert.Equal(t, 80.0, chase.Metrics.UtilizationScore)
	assert.Equal(t, 1, chase.Goals.LinkedCount)
	assert.Equal(t, 50, chase.Goals.TotalAllocatedPercent)
	assert.Equal(t, []string{"Emergency Fund"}, chase.Goals.LinkedGoalNames)

	dormant := result.Institutions[1]
	assert.Zero(t, dormant.Metrics.UtilizationScore)
	assert.Equal(t, "Inactive", dormant.Metrics.ActivityLevel)
	assert.Nil(t, dormant.Transactions.FirstTransactionDate)
}

func TestInstitutionsUnderutilized(t *testing.T) {
	insts, goals, txns := activeInstitutionFixture()
	handler := newInstitutionsHandler(insts, goals, txns)

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.Len(t, result.Underutilized, 1)
	flagged := result.Underutilized[0]
	assert.Equal(t, "inst-2", flagged.InstitutionID)
	assert.ElementsMatch(t, []string{"No transactions", "Not linked to any goals", "Zero balance"}, flagged.Reasons)
	assert.Len(t, flagged.Recommendations, 3)
}

func TestInstitutionsRankings(t *testing.T) {
	insts, goals, txns := activeInstitutionFixture()
	handler := newInstitutionsHandler(insts, goals, txns)

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.NotNil(t, result.Rankings)
	require.Len(t, result.Rankings.ByBalance, 2)
	assert.Equal(t, 1, result.Rankings.ByBalance[0].Rank)
	assert.Equal(t, "Chase", result.Rankings.ByBalance[0].InstitutionName)
	assert.Equal(t, 5000.0, result.Rankings.ByBalance[0].Value)
	assert.Equal(t, "Chase", result.Rankings.ByUtilization[0].InstitutionName)
}

func TestInstitutionsPortfolioConcentration(t *testing.T) {
	insts, goals, txns := activeInstitutionFixture()
	handler := newInstitutionsHandler(insts, goals, txns)

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{UserID: "user-1"})
	require.NoError(t, err)

	require.NotNil(t, result.Portfolio)
	// All balance sits in one account
	assert.Equal(t, 1.0, result.Portfolio.Concentration.HHI)
	assert.Equal(t, "Highly concentrated", result.Portfolio.Concentration.Level)
	assert.Equal(t, "Consider diversifying", result.Portfolio.Concentration.Recommendation)
	assert.Equal(t, "Chase", result.Portfolio.Performance.BestPerformer)

	require.Len(t, result.Portfolio.Distribution, 2)
	assert.Equal(t, 100.0, result.Portfolio.Distribution[0].Percent)
}

func TestInstitutionsAnalysisPeriodEcho(t *testing.T) {
	insts, goals, txns := activeInstitutionFixture()
	handler := newInstitutionsHandler(insts, goals, txns)

	result, err := handler.Handle(context.Background(), queries.InstitutionsQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	})
	require.NoError(t, err)

	require.NotNil(t, result.AnalysisPeriod)
	assert.Equal(t, "2025-01-01", result.AnalysisPeriod.Start)
	assert.Equal(t, "2025-01-31", result.AnalysisPeriod.End)
}
