package handlers

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/calc"
	"github.com/cpsc/analytics/pkg/datetime"
)

// maxCategoriesDisplayed caps ranked category and pair lists
const maxCategoriesDisplayed = 10

// CategoriesHandler analyzes spending by transaction tag
type CategoriesHandler struct {
	transactions ports.TransactionReader
	logger       *zap.Logger
}

// NewCategoriesHandler creates a new category analysis handler
func NewCategoriesHandler(transactions ports.TransactionReader, logger *zap.Logger) *CategoriesHandler {
	return &CategoriesHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// Handle executes the category analysis query
func (h *CategoriesHandler) Handle(ctx context.Context, query queries.CategoriesQuery) (*queries.CategoriesResult, error) {
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

	if query.TransactionType != "" {
		filtered := transactions[:0:0]
		for _, t := range transactions {
			if t.Type == query.TransactionType {
				filtered = append(filtered, t)
			}
		}
		transactions = filtered
	}

	window := queries.DateRange{Start: query.StartDate, End: query.EndDate}
	if len(transactions) < minTransactionsForAnalysis {
		h.logger.Warn("Insufficient transactions for category analysis",
			zap.String("userID", query.UserID),
			zap.Int("count", len(transactions)),
		)
		return &queries.CategoriesResult{
			DateRange:     window,
			TopCategories: []queries.TopCategory{},
			Trends:        map[string][]queries.MonthAmount{},
			Message:       insufficientDataMessage,
		}, nil
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, t := range transactions {
		for _, tag := range tagsOrUncategorized(t) {
			totals[tag] += t.Amount
			counts[tag]++
		}
	}

	averages := make(map[string]float64, len(totals))
	for tag, total := range totals {
		averages[tag] = calc.Round2(total / float64(counts[tag]))
	}

	// Total from transactions, not tag totals, so multi-tagged amounts
	// are not double counted
	totalAmount := 0.0
	for _, t := range transactions {
		totalAmount += t.Amount
	}

	percentages := make(map[string]float64, len(totals))
	rounded := make(map[string]float64, len(totals))
	for tag, total := range totals {
		rounded[tag] = calc.Round2(total)
		if totalAmount > 0 {
			percentages[tag] = calc.Round2(total / totalAmount * 100)
		} else {
			percentages[tag] = 0
		}
	}

	transactionType := query.TransactionType
	if transactionType == "" {
		transactionType = "ALL"
	}

	result := &queries.CategoriesResult{
		UserID:    query.UserID,
		DateRange: window,
		Summary: queries.CategorySummary{
			TotalAmount:      calc.Round2(totalAmount),
			TransactionCount: len(transactions),
			UniqueCategories: len(totals),
			TransactionType:  transactionType,
		},
		Categories: &queries.CategoryBreakdown{
			Totals:      rounded,
			Counts:      counts,
			Averages:    averages,
			Percentages: percentages,
		},
		TopCategories: rankCategories(totals, maxCategoriesDisplayed),
		Trends:        monthlyTrends(transactions),
		Diversity:     spendingDiversity(totals),
		CoOccurrences: categoryPairs(transactions, maxCategoriesDisplayed),
	}

	h.logger.Debug("Category analysis complete",
		zap.String("userID", query.UserID),
		zap.Int("categories", len(totals)),
	)

	return result, nil
}

// tagsOrUncategorized returns the transaction's tags or the fallback
// bucket when it has none
func tagsOrUncategorized(t records.Transaction) []string {
	if len(t.Tags) == 0 {
		return []string{queries.UncategorizedTag}
	}
	return t.Tags
}

// rankCategories sorts categories by total descending and keeps the top
// entries. Ties break alphabetically so rankings are stable.
func rankCategories(totals map[string]float64, limit int) []queries.TopCategory {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > limit {
		names = names[:limit]
	}

	grandTotal := 0.0
	for _, total := range totals {
		grandTotal += total
	}

	ranked := make([]queries.TopCategory, len(names))
	for i, name := range names {
		percentage := 0.0
		if grandTotal > 0 {
			percentage = calc.Round2(totals[name] / grandTotal * 100)
		}
		ranked[i] = queries.TopCategory{
			Name:       name,
			Amount:     calc.Round2(totals[name]),
			Rank:       i + 1,
			Percentage: percentage,
		}
	}
	return ranked
}

// monthlyTrends builds a per-category monthly amount series covering
// every month seen in the window
func monthlyTrends(transactions []records.Transaction) map[string][]queries.MonthAmount {
	monthly := make(map[string]map[string]float64)
	categories := make(map[string]struct{})
	for _, t := range transactions {
		month := datetime.MonthKey(t.TransactionDate)
		if monthly[month] == nil {
			monthly[month] = make(map[string]float64)
		}
		for _, tag := range tagsOrUncategorized(t) {
			monthly[month][tag] += t.Amount
			categories[tag] = struct{}{}
		}
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	trends := make(map[string][]queries.MonthAmount, len(categories))
	for category := range categories {
		series := make([]queries.MonthAmount, len(months))
		for i, month := range months {
			series[i] = queries.MonthAmount{
				Month:  month,
				Amount: calc.Round2(monthly[month][category]),
			}
		}
		trends[category] = series
	}
	return trends
}

// spendingDiversity scores concentration with an inverted HHI
func spendingDiversity(totals map[string]float64) *queries.DiversityMetrics {
	if len(totals) == 0 {
		return &queries.DiversityMetrics{Score: 0, Description: "No data"}
	}

	amounts := make([]float64, 0, len(totals))
	total := 0.0
	for _, amount := range totals {
		amounts = append(amounts, amount)
		total += amount
	}
	if total == 0 {
		return &queries.DiversityMetrics{Score: 0, Description: "No spending"}
	}

	hhi := calc.HHI(amounts)
	score := (1 - hhi) * 100

	var description string
	switch {
	case score >= 75:
		description = "Highly diverse - spending spread across many categories"
	case score >= 50:
		description = "Moderately diverse - balanced spending"
	case score >= 25:
		description = "Concentrated - spending focused on few categories"
	default:
		description = "Highly concentrated - dominated by 1-2 categories"
	}

	return &queries.DiversityMetrics{
		Score:         calc.Round2(score),
		HHI:           calc.Round4(hhi),
		Description:   description,
		NumCategories: len(totals),
	}
}

// categoryPairs counts tag pairs across multi-tag transactions, sorted by
// count descending with lexical tie-breaks
func categoryPairs(transactions []records.Transaction, limit int) []queries.CategoryPair {
	type pair struct{ first, second string }
	pairCounts := make(map[pair]int)
	for _, t := range transactions {
		if len(t.Tags) < 2 {
			continue
		}
		tags := append([]string(nil), t.Tags...)
		sort.Strings(tags)
		for i := 0; i < len(tags); i++ {
			for j := i + 1; j < len(tags); j++ {
				pairCounts[pair{tags[i], tags[j]}]++
			}
		}
	}

	pairs := make([]queries.CategoryPair, 0, len(pairCounts))
	for p, count := range pairCounts {
		pairs = append(pairs, queries.CategoryPair{
			Category1: p.first,
			Category2: p.second,
			Count:     count,
		})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].Category1 != pairs[j].Category1 {
			return pairs[i].Category1 < pairs[j].Category1
		}
		return pairs[i].Category2 < pairs[j].Category2
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
