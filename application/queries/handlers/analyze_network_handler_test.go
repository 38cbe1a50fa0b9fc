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
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

func newNetworkHandler(insts *stubInstitutions, goals *stubGoals, txns *stubTransactions) *AnalyzeNetworkHandler {
	return NewAnalyzeNetworkHandler(insts, goals, txns, zap.NewNop())
}

func TestAnalyzeNetworkFinancialFlowRequiresDates(t *testing.T) {
	handler := newNetworkHandler(&stubInstitutions{}, &stubGoals{}, &stubTransactions{})

	_, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "financial_flow",
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DATE_RANGE_REQUIRED", domainErr.Code)
}

func TestAnalyzeNetworkUnknownGraphType(t *testing.T) {
	handler := newNetworkHandler(&stubInstitutions{}, &stubGoals{}, &stubTransactions{})

	_, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "sankey",
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UNKNOWN_GRAPH_TYPE", domainErr.Code)
}

func TestAnalyzeNetworkGoalInstitutionFetchesAllTime(t *testing.T) {
	txns := &stubTransactions{}
	handler := newNetworkHandler(
		&stubInstitutions{institutions: []records.Institution{
			{InstitutionID: "inst-1", InstitutionName: "Chase", CurrentBalance: 5000},
		}},
		&stubGoals{goals: []records.Goal{
			{GoalID: "goal-1", Name: "Emergency Fund", TargetAmount: 10000, IsActive: true,
				LinkedInstitutions: map[string]int{"inst-1": 40}},
		}},
		txns,
	)

	result, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "goal_institution",
	})
	require.NoError(t, err)

	assert.Nil(t, txns.lastStart)
	assert.Nil(t, txns.lastEnd)
	assert.Nil(t, result.Period)
	assert.Equal(t, "goal_institution", result.GraphType)
	assert.Equal(t, 2, result.GraphStats.Nodes)
	assert.Equal(t, 1, result.GraphStats.Edges)
	assert.True(t, result.GraphStats.IsConnected)
}

func TestAnalyzeNetworkGoalInstitutionOmitsPeriodEvenWithDates(t *testing.T) {
	handler := newNetworkHandler(&stubInstitutions{}, &stubGoals{}, &stubTransactions{})

	result, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "goal_institution",
		StartDate: "2025-01-01",
		EndDate:   "2025-03-31",
	})
	require.NoError(t, err)
	assert.Nil(t, result.Period)
}

func TestAnalyzeNetworkFinancialFlowAppliesWindow(t *testing.T) {
	txns := &stubTransactions{transactions: []records.Transaction{
		{TransactionID: "t1", InstitutionID: "inst-1", Type: records.TransactionTypeWithdrawal,
			Amount: 80, Tags: []string{"food"}},
	}}
	handler := newNetworkHandler(
		&stubInstitutions{institutions: []records.Institution{
			{InstitutionID: "inst-1", InstitutionName: "Chase", CurrentBalance: 5000},
		}},
		&stubGoals{},
		txns,
	)

	result, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "financial_flow",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	})
	require.NoError(t, err)

	require.NotNil(t, txns.lastStart)
	require.NotNil(t, txns.lastEnd)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), txns.lastStart.UTC())
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC), txns.lastEnd.UTC())

	require.NotNil(t, result.Period)
	assert.Equal(t, "2025-01-01", result.Period.Start)
	assert.Equal(t, "2025-01-31", result.Period.End)
	assert.Equal(t, 2, result.GraphStats.Nodes)
	assert.Equal(t, 1, result.GraphStats.Edges)
}

func TestAnalyzeNetworkEmptyGraphStats(t *testing.T) {
	handler := newNetworkHandler(&stubInstitutions{}, &stubGoals{}, &stubTransactions{})

	result, err := handler.Handle(context.Background(), queries.AnalyzeNetworkQuery{
		UserID:    "user-1",
		GraphType: "tag_network",
		StartDate: "2025-01-01",
		EndDate:   "2025-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.GraphStats.Nodes)
	assert.Zero(t, result.GraphStats.Density)
	assert.False(t, result.GraphStats.IsConnected)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)
}
