package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/queries"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	"github.com/cpsc/analytics/pkg/auth"
	"github.com/cpsc/analytics/pkg/common"
	"github.com/cpsc/analytics/pkg/datetime"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// Analytics types accepted by the generate endpoint
const (
	analyticsCashFlow     = "cash_flow"
	analyticsCategories   = "categories"
	analyticsGoals        = "goals"
	analyticsInstitutions = "institutions"
	analyticsNetwork      = "network"
	analyticsHealth       = "health"
)

// maxRequestBody bounds analytics request payloads
const maxRequestBody = 1 << 20

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	queryBus *querybus.QueryBus,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// DateRangeRequest is the analysis window in ISO dates
type DateRangeRequest struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

// AnalyticsOptions tunes an analytics run
type AnalyticsOptions struct {
	GroupBy                string `json:"groupBy,omitempty" validate:"omitempty,oneof=day week month"`
	GraphType              string `json:"graphType,omitempty" validate:"omitempty,oneof=financial_flow goal_institution tag_network"`
	TransactionType        string `json:"transactionType,omitempty" validate:"omitempty,oneof=DEPOSIT WITHDRAWAL"`
	IncludeRecommendations bool   `json:"includeRecommendations,omitempty"`
}

// GenerateAnalyticsRequest is the request body for the generate endpoint
type GenerateAnalyticsRequest struct {
	AnalyticsType string            `json:"analyticsType" validate:"required,oneof=cash_flow categories goals institutions network health"`
	DateRange     *DateRangeRequest `json:"dateRange,omitempty"`
	Options       AnalyticsOptions  `json:"options"`
}

// AnalyticsResponse is the envelope wrapping every analytics result
type AnalyticsResponse struct {
	AnalyticsType string            `json:"analyticsType"`
	UserID        string            `json:"userId"`
	GeneratedAt   string            `json:"generatedAt"`
	Data          interface{}       `json:"data"`
	DateRange     *DateRangeRequest `json:"dateRange,omitempty"`
}

// Generate handles POST /analytics/generate
func (h *AnalyticsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateAnalyticsRequest
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

	// Goal and institution analytics are balance snapshots and work
	// without a window. Everything else needs one.
	if req.DateRange == nil && req.AnalyticsType != analyticsGoals && req.AnalyticsType != analyticsInstitutions {
		h.errors.Handle(w, r, apperrors.ErrDateRangeRequired)
		return
	}

	query, err := buildAnalyticsQuery(userCtx.UserID, req)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Analytics query failed",
			zap.String("userID", userCtx.UserID),
			zap.String("analyticsType", req.AnalyticsType),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	response := AnalyticsResponse{
		AnalyticsType: req.AnalyticsType,
		UserID:        userCtx.UserID,
		GeneratedAt:   datetime.NowRFC3339(),
		Data:          result,
		DateRange:     req.DateRange,
	}

	common.RespondJSON(w, http.StatusOK, response)
}

// buildAnalyticsQuery maps a validated request onto its query type
func buildAnalyticsQuery(userID string, req GenerateAnalyticsRequest) (querybus.Query, error) {
	var start, end string
	if req.DateRange != nil {
		start = req.DateRange.Start
		end = req.DateRange.End
	}

	switch req.AnalyticsType {
	case analyticsCashFlow:
		return queries.CashFlowQuery{
			UserID:    userID,
			StartDate: start,
			EndDate:   end,
			GroupBy:   req.Options.GroupBy,
		}, nil
	case analyticsCategories:
		return queries.CategoriesQuery{
			UserID:          userID,
			StartDate:       start,
			EndDate:         end,
			TransactionType: req.Options.TransactionType,
		}, nil
	case analyticsGoals:
		return queries.GoalsQuery{UserID: userID}, nil
	case analyticsInstitutions:
		return queries.InstitutionsQuery{
			UserID:    userID,
			StartDate: start,
			EndDate:   end,
		}, nil
	case analyticsNetwork:
		graphType := req.Options.GraphType
		if graphType == "" {
			graphType = "financial_flow"
		}
		return queries.AnalyzeNetworkQuery{
			UserID:    userID,
			GraphType: graphType,
			StartDate: start,
			EndDate:   end,
		}, nil
	case analyticsHealth:
		return queries.HealthQuery{
			UserID:                 userID,
			StartDate:              start,
			EndDate:                end,
			IncludeRecommendations: req.Options.IncludeRecommendations,
		}, nil
	default:
		return nil, apperrors.NewDomainError(
			apperrors.DomainValidationError,
			"INVALID_ANALYTICS_TYPE",
			"analyticsType must be one of cash_flow, categories, goals, health, institutions, network",
		).WithDetail("analytics_type", req.AnalyticsType)
	}
}

// Project handles POST /analytics/cash-flow/project
func (h *AnalyticsHandler) Project(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MonthsAhead int `json:"monthsAhead,omitempty" validate:"omitempty,min=1,max=24"`
	}
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

	result, err := h.queryBus.Ask(r.Context(), queries.ProjectCashFlowQuery{
		UserID:      userCtx.UserID,
		MonthsAhead: req.MonthsAhead,
	})
	if err != nil {
		h.logger.Error("Cash flow projection failed",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	response := AnalyticsResponse{
		AnalyticsType: analyticsCashFlow,
		UserID:        userCtx.UserID,
		GeneratedAt:   datetime.NowRFC3339(),
		Data:          result,
	}

	common.RespondJSON(w, http.StatusOK, response)
}

func invalidBody(err error) *apperrors.DomainError {
	return apperrors.NewDomainError(
		apperrors.DomainValidationError,
		"INVALID_REQUEST_BODY",
		"Request body is not valid JSON",
	).WithDetail("reason", err.Error())
}

func invalidRequest(err error) *apperrors.DomainError {
	return apperrors.NewDomainError(
		apperrors.DomainValidationError,
		"VALIDATION_ERROR",
		err.Error(),
	)
}
