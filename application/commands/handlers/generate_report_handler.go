package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/commands"
	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	"github.com/cpsc/analytics/domain/graph"
	"github.com/cpsc/analytics/pkg/datetime"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// ReportGeneratedEvent is the event type published after a successful
// report upload
const ReportGeneratedEvent = "report.generated"

// reportURLExpiry bounds how long a report download link stays valid
const reportURLExpiry = 30 * 24 * time.Hour

// comprehensiveSections are the report types folded into a comprehensive
// report, in render order
var comprehensiveSections = []string{
	commands.ReportTypeCashFlow,
	commands.ReportTypeCategory,
	commands.ReportTypeGoal,
	commands.ReportTypeHealthScore,
}

// GenerateReportHandler runs the requested analytics, renders the HTML
// report, stores it and publishes a completion event
type GenerateReportHandler struct {
	queryBus  *querybus.QueryBus
	renderer  ports.ReportRenderer
	store     ports.ReportStore
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewGenerateReportHandler creates a new report generation handler
func NewGenerateReportHandler(
	queryBus *querybus.QueryBus,
	renderer ports.ReportRenderer,
	store ports.ReportStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *GenerateReportHandler {
	return &GenerateReportHandler{
		queryBus:  queryBus,
		renderer:  renderer,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the report generation command
func (h *GenerateReportHandler) Handle(ctx context.Context, cmd commands.GenerateReportCommand) (*commands.GenerateReportResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var html []byte
	var err error
	if cmd.ReportType == commands.ReportTypeComprehensive {
		html, err = h.renderComprehensive(ctx, cmd)
	} else {
		html, err = h.renderSingle(ctx, cmd.ReportType, cmd)
	}
	if err != nil {
		return nil, err
	}

	key, err := h.store.Put(ctx, cmd.UserID, cmd.ReportType, html)
	if err != nil {
		return nil, apperrors.ErrReportUploadFailed.WithCause(err)
	}
	url, err := h.store.PresignGet(ctx, key, reportURLExpiry)
	if err != nil {
		return nil, apperrors.ErrReportUploadFailed.WithCause(err)
	}

	result := &commands.GenerateReportResult{
		ReportType:  cmd.ReportType,
		UserID:      cmd.UserID,
		GeneratedAt: datetime.NowRFC3339(),
		ReportURL:   url,
		StorageKey:  key,
	}
	if cmd.StartDate != "" && cmd.EndDate != "" {
		result.DateRange = &commands.ReportDateRange{Start: cmd.StartDate, End: cmd.EndDate}
	}

	// A report the caller can already download is not lost because the
	// notification did not go out
	if err := h.publisher.Publish(ctx, ReportGeneratedEvent, result); err != nil {
		h.logger.Warn("Report event publish failed",
			zap.String("userID", cmd.UserID),
			zap.String("reportType", cmd.ReportType),
			zap.Error(err),
		)
	}

	h.logger.Info("Report generated",
		zap.String("userID", cmd.UserID),
		zap.String("reportType", cmd.ReportType),
		zap.String("key", key),
	)

	return result, nil
}

// renderSingle runs one analytics query and renders its report
func (h *GenerateReportHandler) renderSingle(ctx context.Context, reportType string, cmd commands.GenerateReportCommand) ([]byte, error) {
	query, err := analyticsQueryFor(reportType, cmd)
	if err != nil {
		return nil, err
	}

	data, err := h.queryBus.Ask(ctx, query)
	if err != nil {
		return nil, err
	}

	html, err := h.renderer.Render(reportType, cmd.UserName, data)
	if err != nil {
		return nil, apperrors.ErrReportRenderFailed.WithCause(err)
	}
	return html, nil
}

// renderComprehensive renders each section and hands the collection to
// the renderer. Sections that fail are skipped rather than sinking the
// whole report.
func (h *GenerateReportHandler) renderComprehensive(ctx context.Context, cmd commands.GenerateReportCommand) ([]byte, error) {
	sections := make(map[string]interface{}, len(comprehensiveSections))
	for _, section := range comprehensiveSections {
		query, err := analyticsQueryFor(section, cmd)
		if err != nil {
			return nil, err
		}
		data, err := h.queryBus.Ask(ctx, query)
		if err != nil {
			h.logger.Warn("Skipping report section",
				zap.String("section", section),
				zap.Error(err),
			)
			continue
		}
		sections[section] = data
	}
	if len(sections) == 0 {
		return nil, apperrors.ErrReportRenderFailed
	}

	html, err := h.renderer.Render(commands.ReportTypeComprehensive, cmd.UserName, sections)
	if err != nil {
		return nil, apperrors.ErrReportRenderFailed.WithCause(err)
	}
	return html, nil
}

// analyticsQueryFor maps a report type to the query that produces its
// data
func analyticsQueryFor(reportType string, cmd commands.GenerateReportCommand) (querybus.Query, error) {
	switch reportType {
	case commands.ReportTypeCashFlow:
		return queries.CashFlowQuery{
			UserID:    cmd.UserID,
			StartDate: cmd.StartDate,
			EndDate:   cmd.EndDate,
		}, nil
	case commands.ReportTypeCategory:
		return queries.CategoriesQuery{
			UserID:    cmd.UserID,
			StartDate: cmd.StartDate,
			EndDate:   cmd.EndDate,
		}, nil
	case commands.ReportTypeGoal:
		return queries.GoalsQuery{UserID: cmd.UserID}, nil
	case commands.ReportTypeNetwork:
		return queries.AnalyzeNetworkQuery{
			UserID:    cmd.UserID,
			GraphType: string(graph.KindFinancialFlow),
			StartDate: cmd.StartDate,
			EndDate:   cmd.EndDate,
		}, nil
	case commands.ReportTypeHealthScore:
		return queries.HealthQuery{
			UserID:                 cmd.UserID,
			StartDate:              cmd.StartDate,
			EndDate:                cmd.EndDate,
			IncludeRecommendations: true,
		}, nil
	}
	return nil, apperrors.NewDomainError(
		apperrors.DomainValidationError,
		"INVALID_REPORT_TYPE",
		"no analytics mapping for report type",
	).WithDetail("report_type", reportType)
}
