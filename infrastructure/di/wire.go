//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/cpsc/analytics/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideS3Client,
	ProvideInstitutionReader,
	ProvideGoalReader,
	ProvideTransactionReader,
	ProvideEventPublisher,
	ProvideReportStore,
	ProvideReportRenderer,
	ProvideMetrics,
	ProvideTracer,
	ProvideInMemoryCache,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideQueryBus,
	ProvideCommandBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
