package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion         string
	InstitutionsTable string
	TransactionsTable string
	GoalsTable        string
	ReportsBucket     string
	EventBusName      string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string
	ColdStartTimeout   int // milliseconds

	// Cache configuration
	CacheTTLSeconds int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables. Table and
// bucket names default to the per-environment naming convention.
func LoadConfig() (*Config, error) {
	environment := getEnv("ENVIRONMENT", "devl")

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   environment,
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),

		InstitutionsTable: getEnv("INSTITUTIONS_TABLE", "Institutions-"+environment),
		TransactionsTable: getEnv("TRANSACTIONS_TABLE", "Transactions-"+environment),
		GoalsTable:        getEnv("GOALS_TABLE", "Goals-"+environment),
		ReportsBucket:     getEnv("REPORTS_BUCKET", "cpsc-analytics-"+environment),
		EventBusName:      getEnv("EVENT_BUS_NAME", "cpsc-analytics-events"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),
		ColdStartTimeout:   getEnvInt("COLD_START_TIMEOUT", 3000),

		// Caching
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 300),

		// Authentication
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "cpsc-analytics"),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.ReportsBucket == "" {
			return fmt.Errorf("REPORTS_BUCKET is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "devl" || c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
