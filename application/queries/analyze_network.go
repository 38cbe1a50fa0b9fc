package queries

import (
	"github.com/cpsc/analytics/domain/graph"
	apperrors "github.com/cpsc/analytics/pkg/errors"
)

// AnalyzeNetworkQuery requests relationship-graph analytics for a user.
// The goal-institution graph is always built from all-time data, so the
// date range is only required for the other graph types.
type AnalyzeNetworkQuery struct {
	UserID    string `json:"user_id"`
	GraphType string `json:"graph_type"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// Validate validates the query
func (q AnalyzeNetworkQuery) Validate() error {
	if q.UserID == "" {
		return apperrors.ErrMissingUserIdentity
	}
	kind, err := graph.ParseKind(q.GraphType)
	if err != nil {
		return apperrors.ErrUnknownGraphType.WithDetail("graph_type", q.GraphType)
	}
	if kind != graph.KindGoalInstitution {
		return validateDateRange(q.StartDate, q.EndDate)
	}
	return nil
}

// GraphStats summarizes the built graph
type GraphStats struct {
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Density     float64 `json:"density"`
	IsConnected bool    `json:"is_connected"`
}

// NetworkResult is the full network analysis payload
type NetworkResult struct {
	UserID      string                  `json:"user_id"`
	GraphType   string                  `json:"graph_type"`
	GraphStats  GraphStats              `json:"graph_stats"`
	Nodes       []graph.SerializedNode  `json:"nodes"`
	Edges       []graph.SerializedEdge  `json:"edges"`
	Centrality  graph.Centrality        `json:"centrality"`
	Communities graph.CommunityReport   `json:"communities"`
	Period      *DateRange              `json:"period,omitempty"`
}
