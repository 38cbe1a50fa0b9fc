package queries

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
	"github.com/cpsc/analytics/pkg/datetime"
)

// DateRange is an inclusive ISO date window
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PeriodRange is a date window annotated with its span in days
type PeriodRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days,omitempty"`
}

// validateDateRange checks that both bounds are present, parse as ISO dates
// and are strictly ordered
func validateDateRange(start, end string) error {
	if start == "" || end == "" {
		return apperrors.ErrDateRangeRequired
	}
	startT, err := datetime.ParseISODate(start)
	if err != nil {
		return apperrors.ErrInvalidDateRange.WithDetail("start", start)
	}
	endT, err := datetime.ParseISODate(end)
	if err != nil {
		return apperrors.ErrInvalidDateRange.WithDetail("end", end)
	}
	if !startT.Before(endT) {
		return apperrors.ErrInvalidDateRange
	}
	return nil
}
