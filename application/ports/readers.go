package ports

import (
	"context"
	"time"

	"github.com/cpsc/analytics/domain/records"
)

// InstitutionReader loads a user's financial institutions.
// This is a port in hexagonal architecture - the application doesn't know
// about the implementation.
type InstitutionReader interface {
	// GetInstitutions retrieves all institutions for a user
	GetInstitutions(ctx context.Context, userID string) ([]records.Institution, error)
}

// GoalReader loads a user's financial goals
type GoalReader interface {
	// GetGoals retrieves all goals for a user
	GetGoals(ctx context.Context, userID string) ([]records.Goal, error)
}

// TransactionReader loads a user's transactions
type TransactionReader interface {
	// GetAllUserTransactions retrieves transactions across all of a user's
	// institutions, newest first. Nil bounds mean unbounded on that side.
	GetAllUserTransactions(ctx context.Context, userID string, start, end *time.Time) ([]records.Transaction, error)

	// GetByInstitution retrieves transactions for a single institution,
	// newest first
	GetByInstitution(ctx context.Context, userID, institutionID string, start, end *time.Time) ([]records.Transaction, error)
}

// ReportStore persists rendered reports and hands back a time-limited
// download link
type ReportStore interface {
	// Put stores a rendered HTML report and returns its object key
	Put(ctx context.Context, userID, reportType string, html []byte) (string, error)

	// PresignGet returns a temporary download URL for a stored report
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// EventPublisher emits application events to the outside world
type EventPublisher interface {
	// Publish sends a single event of the given type with a JSON-encodable
	// detail payload
	Publish(ctx context.Context, eventType string, detail interface{}) error
}

// Cache defines the interface for caching query results
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
