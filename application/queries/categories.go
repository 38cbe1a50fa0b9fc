package queries

import (
	"github.com/cpsc/analytics/domain/records"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// UncategorizedTag is the bucket for transactions without tags
const UncategorizedTag = "uncategorized"

// CategoriesQuery requests per-tag spending analysis over a date window.
// TransactionType optionally narrows the analysis to one side.
type CategoriesQuery struct {
	UserID          string `json:"user_id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TransactionType string `json:"transaction_type,omitempty"`
}

// Validate validates the query
func (q CategoriesQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	switch q.TransactionType {
	case "", records.TransactionTypeDeposit, records.TransactionTypeWithdrawal:
	default:
		return apperrors.NewDomainError(
			apperrors.DomainValidationError,
			"INVALID_TRANSACTION_TYPE",
			"transactionType must be DEPOSIT or WITHDRAWAL",
		).WithDetail("transaction_type", q.TransactionType)
	}
	return validateDateRange(q.StartDate, q.EndDate)
}

// CategorySummary holds the window-level aggregates
type CategorySummary struct {
	TotalAmount      float64 `json:"total_amount"`
	TransactionCount int     `json:"transaction_count"`
	UniqueCategories int     `json:"unique_categories"`
	TransactionType  string  `json:"transaction_type,omitempty"`
}

// CategoryBreakdown maps each category to its aggregates. A transaction
// with several tags counts fully under every tag.
type CategoryBreakdown struct {
	Totals      map[string]float64 `json:"totals"`
	Counts      map[string]int     `json:"counts"`
	Averages    map[string]float64 `json:"averages"`
	Percentages map[string]float64 `json:"percentages"`
}

// TopCategory is one entry in the ranked category list
type TopCategory struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Rank       int     `json:"rank"`
	Percentage float64 `json:"percentage"`
}

// MonthAmount is one point in a per-category monthly trend series
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// DiversityMetrics scores how spread out spending is across categories.
// The score inverts the Herfindahl-Hirschman index onto a 0-100 scale.
type DiversityMetrics struct {
	Score         float64 `json:"score"`
	HHI           float64 `json:"hhi,omitempty"`
	Description   string  `json:"description"`
	NumCategories int     `json:"num_categories,omitempty"`
}

// CategoryPair counts how often two categories appear on one transaction
type CategoryPair struct {
	Category1 string `json:"category_1"`
	Category2 string `json:"category_2"`
	Count     int    `json:"count"`
}

// CategoriesResult is the full category analysis payload
type CategoriesResult struct {
	UserID        string                   `json:"user_id,omitempty"`
	DateRange     DateRange                `json:"date_range"`
	Summary       CategorySummary          `json:"summary"`
	Categories    *CategoryBreakdown       `json:"categories,omitempty"`
	TopCategories []TopCategory            `json:"top_categories"`
	Trends        map[string][]MonthAmount `json:"trends"`
	Diversity     *DiversityMetrics        `json:"diversity,omitempty"`
	CoOccurrences []CategoryPair           `json:"co_occurrences,omitempty"`
	Message       string                   `json:"message,omitempty"`
}
