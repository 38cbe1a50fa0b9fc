package handlers

import (
	"context"
	"time"

	"github.com/cpsc/analytics/domain/records"
)

// stubInstitutions is a canned InstitutionReader
type stubInstitutions struct {
	institutions []records.Institution
	err          error
}

func (s *stubInstitutions) GetInstitutions(ctx context.Context, userID string) ([]records.Institution, error) {
	return s.institutions, s.err
}

// stubGoals is a canned GoalReader
type stubGoals struct {
	goals []records.Goal
	err   error
}

func (s *stubGoals) GetGoals(ctx context.Context, userID string) ([]records.Goal, error) {
	return s.goals, s.err
}

// stubTransactions is a canned TransactionReader that records the last
// window it was asked for
type stubTransactions struct {
	transactions []records.Transaction
	err          error

	lastStart *time.Time
	lastEnd   *time.Time
}

func (s *stubTransactions) GetAllUserTransactions(ctx context.Context, userID string, start, end *time.Time) ([]records.Transaction, error) {
	s.lastStart, s.lastEnd = start, end
	return s.transactions, s.err
}

// unixDate builds a UTC midnight timestamp for test fixtures
func unixDate(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
}

func (s *stubTransactions) GetByInstitution(ctx context.Context, userID, institutionID string, start, end *time.Time) ([]records.Transaction, error) {
	s.lastStart, s.lastEnd = start, end
	if s.err != nil {
		return nil, s.err
	}
	var matched []records.Transaction
	for _, t := range s.transactions {
		if t.InstitutionID == institutionID {
			matched = append(matched, t)
		}
	}
	return matched, nil
}
