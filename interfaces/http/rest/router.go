package rest

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	commandbus "github.com/cpsc/analytics/application/commands/bus"
	querybus "github.com/cpsc/analytics/application/queries/bus"
	"github.com/cpsc/analytics/interfaces/http/rest/handlers"
	"github.com/cpsc/analytics/interfaces/http/rest/middleware"
	"github.com/cpsc/analytics/pkg/auth"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus  *commandbus.CommandBus
	queryBus    *querybus.QueryBus
	validator   *auth.JWTValidator
	userLimiter *auth.UserRateLimiter
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *commandbus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	userLimiter *auth.UserRateLimiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:  commandBus,
		queryBus:    queryBus,
		validator:   validator,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.cpsc.app"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	errorHandler := apperrors.NewErrorHandler(rt.logger, false)

	// On Lambda the API Gateway JWT authorizer has already validated the
	// token; elsewhere we validate bearer tokens ourselves.
	authenticate := middleware.Authenticate(rt.validator, rt.userLimiter, rt.logger)
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		authenticate = middleware.AuthenticateForLambda(rt.userLimiter, rt.logger)
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(rt.queryBus, errorHandler, rt.logger)
			r.Post("/generate", analyticsHandler.Generate)
			r.Post("/cash-flow/project", analyticsHandler.Project)
		})

		r.Route("/reports", func(r chi.Router) {
			reportHandler := handlers.NewReportHandler(rt.commandBus, errorHandler, rt.logger)
			r.Post("/generate", reportHandler.Generate)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
