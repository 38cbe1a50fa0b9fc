package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/commands"
	commandbus "github.com/cpsc/analytics/application/commands/bus"
	commandhandlers "github.com/cpsc/analytics/application/commands/handlers"
	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	queryhandlers "github.com/cpsc/analytics/application/queries/handlers"
	"github.com/cpsc/analytics/infrastructure/config"
	"github.com/cpsc/analytics/infrastructure/messaging/eventbridge"
	"github.com/cpsc/analytics/infrastructure/observability"
	"github.com/cpsc/analytics/infrastructure/persistence/dynamodb"
	"github.com/cpsc/analytics/infrastructure/reports"
	"github.com/cpsc/analytics/pkg/auth"
	tracing "github.com/cpsc/analytics/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideInstitutionReader creates the institution reader
func ProvideInstitutionReader(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.InstitutionReader {
	return dynamodb.NewInstitutionReader(client, cfg.InstitutionsTable, logger)
}

// ProvideGoalReader creates the goal reader
func ProvideGoalReader(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GoalReader {
	return dynamodb.NewGoalReader(client, cfg.GoalsTable, logger)
}

// ProvideTransactionReader creates the transaction reader
func ProvideTransactionReader(
	client *awsdynamodb.Client,
	cfg *config.Config,
	institutions ports.InstitutionReader,
	logger *zap.Logger,
) ports.TransactionReader {
	return dynamodb.NewTransactionReader(client, cfg.TransactionsTable, institutions, logger)
}

// ProvideEventPublisher creates the EventBridge event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideReportStore creates the S3 report store
func ProvideReportStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.ReportStore {
	return reports.NewS3Store(client, cfg.ReportsBucket, logger)
}

// ProvideReportRenderer creates the HTML report renderer
func ProvideReportRenderer() (ports.ReportRenderer, error) {
	return reports.NewRenderer()
}

// ProvideMetrics creates the query bus metrics sink
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) querybus.Metrics {
	if cfg.EnableMetrics {
		return observability.NewCloudWatchMetrics(client, logger)
	}
	return observability.NoopMetrics{}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *tracing.Tracer {
	return tracing.NewTracer("cpsc-analytics")
}

// ProvideInMemoryCache creates a simple in-memory cache.
// In production, this would be Redis or similar.
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideJWTValidator creates the bearer token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideRateLimiter creates the per-user request rate limiter
func ProvideRateLimiter() *auth.UserRateLimiter {
	return auth.NewUserRateLimiter(100)
}

// QueryHandlerAdapter adapts typed query handlers to the generic
// interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with every analytics handler
// registered behind caching and metrics middleware
func ProvideQueryBus(
	institutions ports.InstitutionReader,
	goals ports.GoalReader,
	transactions ports.TransactionReader,
	cache ports.Cache,
	metrics querybus.Metrics,
	tracer *tracing.Tracer,
	cfg *config.Config,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	caching := querybus.NewCachingMiddleware(cache, cfg.CacheTTLSeconds)
	instrumented := querybus.NewMetricsMiddleware(metrics)
	wrap := func(handler querybus.QueryHandler) querybus.QueryHandler {
		wrapped := instrumented.Wrap(handler)
		if cfg.EnableTracing {
			wrapped = traceHandler(tracer, wrapped)
		}
		return caching.Wrap(wrapped)
	}

	networkHandler := queryhandlers.NewAnalyzeNetworkHandler(institutions, goals, transactions, logger)
	queryBus.Register(queries.AnalyzeNetworkQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			networkQuery, ok := query.(queries.AnalyzeNetworkQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return networkHandler.Handle(ctx, networkQuery)
		},
	}))

	cashFlowHandler := queryhandlers.NewCashFlowHandler(institutions, transactions, logger)
	queryBus.Register(queries.CashFlowQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			cashFlowQuery, ok := query.(queries.CashFlowQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return cashFlowHandler.Handle(ctx, cashFlowQuery)
		},
	}))
	queryBus.Register(queries.ProjectCashFlowQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			projectionQuery, ok := query.(queries.ProjectCashFlowQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return cashFlowHandler.HandleProjection(ctx, projectionQuery)
		},
	}))

	categoriesHandler := queryhandlers.NewCategoriesHandler(transactions, logger)
	queryBus.Register(queries.CategoriesQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			categoriesQuery, ok := query.(queries.CategoriesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return categoriesHandler.Handle(ctx, categoriesQuery)
		},
	}))

	goalsHandler := queryhandlers.NewGoalsHandler(institutions, goals, logger)
	queryBus.Register(queries.GoalsQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			goalsQuery, ok := query.(queries.GoalsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return goalsHandler.Handle(ctx, goalsQuery)
		},
	}))

	institutionsHandler := queryhandlers.NewInstitutionsHandler(institutions, goals, transactions, logger)
	queryBus.Register(queries.InstitutionsQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			institutionsQuery, ok := query.(queries.InstitutionsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return institutionsHandler.Handle(ctx, institutionsQuery)
		},
	}))

	healthHandler := queryhandlers.NewHealthHandler(institutions, goals, transactions, logger)
	queryBus.Register(queries.HealthQuery{}, wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			healthQuery, ok := query.(queries.HealthQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return healthHandler.Handle(ctx, healthQuery)
		},
	}))

	return queryBus
}

// traceHandler records each query as an X-Ray subsegment
func traceHandler(tracer *tracing.Tracer, next querybus.QueryHandler) querybus.QueryHandler {
	return querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		var result interface{}
		err := tracer.TraceFunction(ctx, fmt.Sprintf("query.%T", query), func(ctx context.Context) error {
			var handleErr error
			result, handleErr = next.Handle(ctx, query)
			return handleErr
		})
		return result, err
	})
}

// CommandHandlerAdapter adapts typed command handlers to the generic
// interface
type CommandHandlerAdapter struct {
	handler func(context.Context, commandbus.Command) (interface{}, error)
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with the report pipeline
// registered behind logging and validation middleware
func ProvideCommandBus(
	queryBus *querybus.QueryBus,
	renderer ports.ReportRenderer,
	store ports.ReportStore,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *commandbus.CommandBus {
	cmdBus := commandbus.NewCommandBus()

	pipeline := commandbus.NewPipeline(
		commandbus.LoggingMiddleware(&zapLoggerAdapter{logger}),
		commandbus.ValidationMiddleware(),
	)

	reportHandler := commandhandlers.NewGenerateReportHandler(
		queryBus, renderer, store, publisher, logger)
	cmdBus.Register(commands.GenerateReportCommand{}, pipeline.Execute(&CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			reportCmd, ok := cmd.(commands.GenerateReportCommand)
			if !ok {
				return nil, fmt.Errorf("invalid command type")
			}
			return reportHandler.Handle(ctx, reportCmd)
		},
	}))

	return cmdBus
}

// zapLoggerAdapter adapts zap.Logger to the command bus Logger interface
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Debug(msg string, fields ...interface{}) {
	a.logger.Debug(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Info(msg string, fields ...interface{}) {
	a.logger.Info(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) Error(msg string, fields ...interface{}) {
	a.logger.Error(msg, a.fieldsToZap(fields...)...)
}

func (a *zapLoggerAdapter) fieldsToZap(fields ...interface{}) []zap.Field {
	var zapFields []zap.Field
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, _ := fields[i].(string)
			zapFields = append(zapFields, zap.Any(key, fields[i+1]))
		}
	}
	return zapFields
}
