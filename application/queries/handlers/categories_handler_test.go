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

func categoriesFixture() []records.Transaction {
	return []records.Transaction{
		{TransactionID: "t1", Type: records.TransactionTypeWithdrawal, Amount: 100,
			TransactionDate: unixDate(2025, time.January, 5), Tags: []string{"food", "dining"}},
		{TransactionID: "t2", Type: records.TransactionTypeWithdrawal, Amount: 50,
			TransactionDate: unixDate(2025, time.January, 12), Tags: []string{"food"}},
		{TransactionID: "t3", Type: records.TransactionTypeWithdrawal, Amount: 30,
			TransactionDate: unixDate(2025, time.February, 2)},
		{TransactionID: "t4", Type: records.TransactionTypeWithdrawal, Amount: 20,
			TransactionDate: unixDate(2025, time.February, 9), Tags: []string{"travel"}},
		{TransactionID: "t5", Type: records.TransactionTypeDeposit, Amount: 10,
			TransactionDate: unixDate(2025, time.February, 20), Tags: []string{"food", "travel"}},
	}
}

func TestCategoriesMultiTagCounting(t *testing.T) {
	handler := NewCategoriesHandler(&stubTransactions{transactions: categoriesFixture()}, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.CategoriesQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-02-28",
	})
	require.NoError(t, err)

	assert.Equal(t, 210.0, result.Summary.TotalAmount)
	assert.Equal(t, 5, result.Summary.TransactionCount)
	assert.Equal(t, 4, result.Summary.UniqueCategories)
	assert.Equal(t, "ALL", result.Summary.TransactionType)

	require.NotNil(t, result.Categories)
	assert.Equal(t, 160.0, result.Categories.Totals["food"])
	assert.Equal(t, 100.0, result.Categories.Totals["dining"])
	assert.Equal(t, 30.0, result.Categories.Totals["travel"])
	assert.Equal(t, 30.0, result.Categories.Totals["uncategorized"])
	assert.Equal(t, 3, result.Categories.Counts["food"])
	assert.Equal(t, 1, result.Categories.Counts["uncategorized"])
	assert.InDelta(t, 53.33, result.Categories.Averages["food"], 0.01)
	assert.InDelta(t, 76.19, result.Categories.Percentages["food"], 0.01)

	require.NotEmpty(t, result.TopCategories)
	assert.Equal(t, "food", result.TopCategories[0].Name)
	assert.Equal(t, 1, result.TopCategories[0].Rank)
	assert.Equal(t, 160.0, result.TopCategories[0].Amount)
}

func TestCategoriesRankTiesBreakAlphabetically(t *testing.T) {
	ranked := rankCategories(map[string]float64{
		"zebra": 100,
		"apple": 100,
		"mango": 200,
	}, 10)

	require.Len(t, ranked, 3)
	assert.Equal(t, "mango", ranked[0].Name)
	assert.Equal(t, "apple", ranked[1].Name)
	assert.Equal(t, "zebra", ranked[2].Name)
}

func TestCategoriesMonthlyTrendsCoverAllMonths(t *testing.T) {
	handler := NewCategoriesHandler(&stubTransactions{transactions: categoriesFixture()}, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.CategoriesQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-02-28",
	})
	require.NoError(t, err)

	food := result.Trends["food"]
	require.Len(t, food, 2)
	assert.Equal(t, queries.MonthAmount{Month: "2025-01", Amount: 150}, food[0])
	assert.Equal(t, queries.MonthAmount{Month: "2025-02", Amount: 10}, food[1])

	travel := result.Trends["travel"]
	require.Len(t, travel, 2)
	assert.Zero(t, travel[0].Amount)
	assert.Equal(t, 30.0, travel[1].Amount)
}

func TestCategoriesCoOccurrencePairs(t *testing.T) {
	handler := NewCategoriesHandler(&stubTransactions{transactions: categoriesFixture()}, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.CategoriesQuery{
		UserID:    "user-1",
		StartDate: "2025-01-01",
		EndDate:   "2025-02-28",
	})
	require.NoError(t, err)

	require.Len(t, result.CoOccurrences, 2)
	assert.Equal(t, queries.CategoryPair{Category1: "dining", Category2: "food", Count: 1}, result.CoOccurrences[0])
	assert.Equal(t, queries.CategoryPair{Category1: "food", Category2: "travel", Count: 1}, result.CoOccurrences[1])
}

func TestCategoriesTypeFilterCanEmptyTheWindow(t *testing.T) {
	handler := NewCategoriesHandler(&stubTransactions{transactions: categoriesFixture()}, zap.NewNop())

	result, err := handler.Handle(context.Background(), queries.CategoriesQuery{
		UserID:          "user-1",
		StartDate:       "2025-01-01",
		EndDate:         "2025-02-28",
		TransactionType: records.TransactionTypeDeposit,
	})
	require.NoError(t, err)

	assert.Equal(t, "Insufficient transaction data for analysis", result.Message)
	assert.Nil(t, result.Categories)
	assert.Empty(t, result.TopCategories)
}

func TestCategoriesRejectsUnknownType(t *testing.T) {
	handler := NewCategoriesHandler(&stubTransactions{}, zap.NewNop())

	_, err := handler.Handle(context.Background(), queries.CategoriesQuery{
		UserID:          "user-1",
		StartDate:       "2025-01-01",
		EndDate:         "2025-02-28",
		TransactionType: "TRANSFER",
	})
	require.Error(t, err)
}

func TestSpendingDiversitySingleCategory(t *testing.T) {
	diversity := spendingDiversity(map[string]float64{"food": 500})

	assert.Zero(t, diversity.Score)
	assert.Equal(t, 1, diversity.NumCategories)
	assert.Equal(t, "Highly concentrated - dominated by 1-2 categories", diversity.Description)
}

func TestSpendingDiversityEvenSpread(t *testing.T) {
	diversity := spendingDiversity(map[string]float64{
		"a": 100, "b": 100, "c": 100, "d": 100, "e": 100,
	})

	assert.Equal(t, 80.0, diversity.Score)
	assert.Equal(t, 0.2, diversity.HHI)
	assert.Equal(t, "Highly diverse - spending spread across many categories", diversity.Description)
}
