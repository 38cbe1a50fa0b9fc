package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/commands"
	"github.com/cpsc/analytics/application/queries"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

type stubRenderer struct {
	lastReportType string
	lastUserName   string
	lastData       interface{}
	err            error
}

func (s *stubRenderer) Render(reportType, userName string, data interface{}) ([]byte, error) {
	s.lastReportType = reportType
	s.lastUserName = userName
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return []byte("<html>report</html>"), nil
}

type stubStore struct {
	putErr     error
	presignErr error
	lastHTML   []byte
	lastExpiry time.Duration
}

func (s *stubStore) Put(ctx context.Context, userID, reportType string, html []byte) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	s.lastHTML = html
	return "reports/" + userID + "/" + reportType + ".html", nil
}

func (s *stubStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.lastExpiry = expiry
	return "https://example.com/" + key, nil
}

type stubPublisher struct {
	err        error
	eventTypes []string
	details    []interface{}
}

func (s *stubPublisher) Publish(ctx context.Context, eventType string, detail interface{}) error {
	s.eventTypes = append(s.eventTypes, eventType)
	s.details = append(s.details, detail)
	return s.err
}

// newReportQueryBus registers canned responses for the given query types
func newReportQueryBus(t *testing.T, responses map[string]interface{}) *querybus.QueryBus {
	t.Helper()
	bus := querybus.NewQueryBus()

	register := func(query querybus.Query, key string) {
		data, ok := responses[key]
		if !ok {
			return
		}
		err := bus.Register(query, querybus.QueryHandlerFunc(
			func(ctx context.Context, q querybus.Query) (interface{}, error) {
				return data, nil
			}))
		require.NoError(t, err)
	}

	register(queries.CashFlowQuery{}, commands.ReportTypeCashFlow)
	register(queries.CategoriesQuery{}, commands.ReportTypeCategory)
	register(queries.GoalsQuery{}, commands.ReportTypeGoal)
	register(queries.AnalyzeNetworkQuery{}, commands.ReportTypeNetwork)
	register(queries.HealthQuery{}, commands.ReportTypeHealthScore)

	return bus
}

func TestGenerateGoalReport(t *testing.T) {
	goalsResult := &queries.GoalsResult{UserID: "user-1"}
	bus := newReportQueryBus(t, map[string]interface{}{
		commands.ReportTypeGoal: goalsResult,
	})
	renderer := &stubRenderer{}
	store := &stubStore{}
	publisher := &stubPublisher{}
	handler := NewGenerateReportHandler(bus, renderer, store, publisher, zap.NewNop())

	result, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeGoal,
		UserName:   "Avery",
	})
	require.NoError(t, err)

	assert.Equal(t, commands.ReportTypeGoal, result.ReportType)
	assert.Equal(t, "user-1", result.UserID)
	assert.NotEmpty(t, result.GeneratedAt)
	assert.Equal(t, "reports/user-1/goal.html", result.StorageKey)
	assert.Equal(t, "https://example.com/reports/user-1/goal.html", result.ReportURL)
	assert.Nil(t, result.DateRange)

	assert.Equal(t, commands.ReportTypeGoal, renderer.lastReportType)
	assert.Equal(t, "Avery", renderer.lastUserName)
	assert.Same(t, goalsResult, renderer.lastData)
	assert.NotEmpty(t, store.lastHTML)
	assert.Equal(t, 30*24*time.Hour, store.lastExpiry)
	assert.Equal(t, []string{ReportGeneratedEvent}, publisher.eventTypes)
}

func TestGenerateReportEchoesDateRange(t *testing.T) {
	bus := newReportQueryBus(t, map[string]interface{}{
		commands.ReportTypeCashFlow: &queries.CashFlowResult{},
	})
	handler := NewGenerateReportHandler(bus, &stubRenderer{}, &stubStore{}, &stubPublisher{}, zap.NewNop())

	result, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeCashFlow,
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
	})
	require.NoError(t, err)

	require.NotNil(t, result.DateRange)
	assert.Equal(t, "2025-01-01", result.DateRange.Start)
	assert.Equal(t, "2025-01-31", result.DateRange.End)
}

func TestGenerateReportRejectsInvalidType(t *testing.T) {
	bus := newReportQueryBus(t, nil)
	handler := NewGenerateReportHandler(bus, &stubRenderer{}, &stubStore{}, &stubPublisher{}, zap.NewNop())

	_, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: "weekly_digest",
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_REPORT_TYPE", domainErr.Code)
}

func TestGenerateComprehensiveSkipsFailedSections(t *testing.T) {
	// Only the goal section has a handler; the other sections fail and
	// are dropped from the rendered report.
	bus := newReportQueryBus(t, map[string]interface{}{
		commands.ReportTypeGoal: &queries.GoalsResult{},
	})
	renderer := &stubRenderer{}
	handler := NewGenerateReportHandler(bus, renderer, &stubStore{}, &stubPublisher{}, zap.NewNop())

	result, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeComprehensive,
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, commands.ReportTypeComprehensive, result.ReportType)

	sections, ok := renderer.lastData.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, sections, 1)
	assert.Contains(t, sections, commands.ReportTypeGoal)
}

func TestGenerateComprehensiveFailsWhenAllSectionsFail(t *testing.T) {
	bus := newReportQueryBus(t, nil)
	handler := NewGenerateReportHandler(bus, &stubRenderer{}, &stubStore{}, &stubPublisher{}, zap.NewNop())

	_, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeComprehensive,
		StartDate:  "2025-01-01",
		EndDate:    "2025-01-31",
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REPORT_RENDER_FAILED", domainErr.Code)
}

func TestGenerateReportUploadFailure(t *testing.T) {
	bus := newReportQueryBus(t, map[string]interface{}{
		commands.ReportTypeGoal: &queries.GoalsResult{},
	})
	store := &stubStore{putErr: errors.New("bucket unreachable")}
	handler := NewGenerateReportHandler(bus, &stubRenderer{}, store, &stubPublisher{}, zap.NewNop())

	_, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeGoal,
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REPORT_UPLOAD_FAILED", domainErr.Code)
	assert.True(t, domainErr.Retryable)
}

func TestGenerateReportPublishFailureIsNonFatal(t *testing.T) {
	bus := newReportQueryBus(t, map[string]interface{}{
		commands.ReportTypeGoal: &queries.GoalsResult{},
	})
	publisher := &stubPublisher{err: errors.New("event bus down")}
	handler := NewGenerateReportHandler(bus, &stubRenderer{}, &stubStore{}, publisher, zap.NewNop())

	result, err := handler.Handle(context.Background(), commands.GenerateReportCommand{
		UserID:     "user-1",
		ReportType: commands.ReportTypeGoal,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReportURL)
}
