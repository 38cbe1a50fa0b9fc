package commands

import (
	apperrors "github.com/cpsc/analytics/pkg/errors"
	"github.com/cpsc/analytics/pkg/datetime"
)

// Report types accepted by GenerateReportCommand
const (
	ReportTypeCashFlow      = "cash_flow"
	ReportTypeCategory      = "category"
	ReportTypeGoal          = "goal"
	ReportTypeNetwork       = "network"
	ReportTypeHealthScore   = "health_score"
	ReportTypeComprehensive = "comprehensive"
)

var validReportTypes = map[string]struct{}{
	ReportTypeCashFlow:      {},
	ReportTypeCategory:      {},
	ReportTypeGoal:          {},
	ReportTypeNetwork:       {},
	ReportTypeHealthScore:   {},
	ReportTypeComprehensive: {},
}

// GenerateReportCommand runs an analytics pipeline, renders the result as
// HTML and stores it for download. Goal reports are balance snapshots, so
// they are the only type that does not need a date window.
type GenerateReportCommand struct {
	UserID     string `json:"user_id"`
	ReportType string `json:"report_type"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	UserName   string `json:"user_name,omitempty"`
}

// Validate validates the command
func (c GenerateReportCommand) Validate() error {
	if c.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	if _, ok := validReportTypes[c.ReportType]; !ok {
		return apperrors.NewDomainError(
			apperrors.DomainValidationError,
			"INVALID_REPORT_TYPE",
			"reportType must be one of cash_flow, category, comprehensive, goal, health_score, network",
		).WithDetail("report_type", c.ReportType)
	}
	if c.ReportType == ReportTypeGoal {
		return nil
	}

	if c.StartDate == "" || c.EndDate == "" {
		return apperrors.ErrDateRangeRequired
	}
	startT, err := datetime.ParseISODate(c.StartDate)
	if err != nil {
		return apperrors.ErrInvalidDateRange.WithDetail("start", c.StartDate)
	}
	endT, err := datetime.ParseISODate(c.EndDate)
	if err != nil {
		return apperrors.ErrInvalidDateRange.WithDetail("end", c.EndDate)
	}
	if !startT.Before(endT) {
		return apperrors.ErrInvalidDateRange
	}
	return nil
}

// ReportDateRange echoes the window a report covers
type ReportDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GenerateReportResult locates the stored report
type GenerateReportResult struct {
	ReportType  string           `json:"reportType"`
	UserID      string           `json:"userId"`
	GeneratedAt string           `json:"generatedAt"`
	ReportURL   string           `json:"reportUrl"`
	StorageKey  string           `json:"s3Key"`
	DateRange   *ReportDateRange `json:"dateRange,omitempty"`
}
