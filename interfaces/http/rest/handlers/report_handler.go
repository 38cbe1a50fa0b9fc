package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/commands"
	commandbus "github.com/cpsc/analytics/application/commands/bus"
	"github.com/cpsc/analytics/pkg/auth"
	"github.com/cpsc/analytics/pkg/common"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// ReportHandler handles report generation HTTP requests
type ReportHandler struct {
	commandBus *commandbus.CommandBus
	errors     *apperrors.ErrorHandler
	logger     *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	commandBus *commandbus.CommandBus,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		commandBus: commandBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// GenerateReportRequest is the request body for report generation
type GenerateReportRequest struct {
	ReportType string            `json:"reportType" validate:"required,oneof=cash_flow category comprehensive goal health_score network"`
	DateRange  *DateRangeRequest `json:"dateRange,omitempty"`
	UserName   string            `json:"userName,omitempty" validate:"omitempty,max=100"`
}

// Generate handles POST /reports/generate
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := common.ParseJSONBody(w, r, &req, maxRequestBody); err != nil {
		h.errors.Handle(w, r, invalidBody(err))
		return
	}

	if err := common.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, invalidRequest(err))
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, apperrors.ErrMissingUserIdentity)
		return
	}

	cmd := commands.GenerateReportCommand{
		UserID:     userCtx.UserID,
		ReportType: req.ReportType,
		UserName:   req.UserName,
	}
	if req.DateRange != nil {
		cmd.StartDate = req.DateRange.Start
		cmd.EndDate = req.DateRange.End
	}

	result, err := h.commandBus.Send(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Report generation failed",
			zap.String("userID", userCtx.UserID),
			zap.String("reportType", req.ReportType),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
