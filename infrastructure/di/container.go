package di

import (
	"go.uber.org/zap"

	commandbus "github.com/cpsc/analytics/application/commands/bus"
	"github.com/cpsc/analytics/application/ports"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	"github.com/cpsc/analytics/infrastructure/config"
	"github.com/cpsc/analytics/pkg/auth"
	tracing "github.com/cpsc/analytics/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Institutions   ports.InstitutionReader
	Goals          ports.GoalReader
	Transactions   ports.TransactionReader
	EventPublisher ports.EventPublisher
	ReportStore    ports.ReportStore
	ReportRenderer ports.ReportRenderer
	Cache          ports.Cache
	QueryBus       *querybus.QueryBus
	CommandBus     *commandbus.CommandBus
	Tracer         *tracing.Tracer
	JWTValidator   *auth.JWTValidator
	RateLimiter    *auth.UserRateLimiter
}
