package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cpsc/analytics/application/ports"
	"github.com/cpsc/analytics/application/queries"
	"github.com/cpsc/analytics/domain/graph"
	"github.com/cpsc/analytics/domain/records"
	"github.com/cpsc/analytics/pkg/datetime"
)

// AnalyzeNetworkHandler builds the requested relationship graph and runs
// the full metric suite over it
type AnalyzeNetworkHandler struct {
	institutions ports.InstitutionReader
	goals        ports.GoalReader
	transactions ports.TransactionReader
	logger       *zap.Logger
}

// NewAnalyzeNetworkHandler creates a new network analysis handler
func NewAnalyzeNetworkHandler(
	institutions ports.InstitutionReader,
	goals ports.GoalReader,
	transactions ports.TransactionReader,
	logger *zap.Logger,
) *AnalyzeNetworkHandler {
	return &AnalyzeNetworkHandler{
		institutions: institutions,
		goals:        goals,
		transactions: transactions,
		logger:       logger,
	}
}

// Handle executes the network analysis query
func (h *AnalyzeNetworkHandler) Handle(ctx context.Context, query queries.AnalyzeNetworkQuery) (*queries.NetworkResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	kind, err := graph.ParseKind(query.GraphType)
	if err != nil {
		return nil, err
	}

	institutions, err := h.institutions.GetInstitutions(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	goals, err := h.goals.GetGoals(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	g, err := h.buildGraph(ctx, kind, query, institutions, goals)
	if err != nil {
		return nil, err
	}

	centrality := graph.ComputeCentrality(g)
	communities := graph.DetectCommunities(g)

	result := &queries.NetworkResult{
		UserID:      query.UserID,
		GraphType:   string(kind),
		GraphStats:  buildGraphStats(g),
		Nodes:       graph.SerializeNodes(g),
		Edges:       graph.SerializeEdges(g),
		Centrality:  centrality,
		Communities: communities,
	}

	// Period is only reported when a date window was actually applied
	if kind != graph.KindGoalInstitution && query.StartDate != "" && query.EndDate != "" {
		result.Period = &queries.DateRange{Start: query.StartDate, End: query.EndDate}
	}

	h.logger.Debug("Network analysis complete",
		zap.String("userID", query.UserID),
		zap.String("graphType", string(kind)),
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
	)

	return result, nil
}

// buildGraph fetches the records each graph type needs and constructs it.
// The goal-institution graph always reads all-time transactions so
// inactive goals whose completion transactions fall outside any window
// still link to their institutions.
func (h *AnalyzeNetworkHandler) buildGraph(
	ctx context.Context,
	kind graph.Kind,
	query queries.AnalyzeNetworkQuery,
	institutions []records.Institution,
	goals []records.Goal,
) (*graph.Graph, error) {
	if kind == graph.KindGoalInstitution {
		all, err := h.transactions.GetAllUserTransactions(ctx, query.UserID, nil, nil)
		if err != nil {
			return nil, err
		}
		return graph.BuildGoalInstitution(institutions, goals, all), nil
	}

	start, end, err := parseWindow(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	transactions, err := h.transactions.GetAllUserTransactions(ctx, query.UserID, start, end)
	if err != nil {
		return nil, err
	}

	if kind == graph.KindFinancialFlow {
		return graph.BuildFinancialFlow(transactions, institutions, goals), nil
	}
	return graph.BuildTagNetwork(transactions), nil
}

// buildGraphStats reports density and connectivity as zero values for
// graphs with fewer than two nodes
func buildGraphStats(g *graph.Graph) queries.GraphStats {
	stats := queries.GraphStats{
		Nodes: g.NumNodes(),
		Edges: g.NumEdges(),
	}
	if g.NumNodes() > 1 {
		stats.Density = g.Density()
		stats.IsConnected = g.IsConnected()
	}
	return stats
}

// parseWindow converts ISO date bounds to time values, with the end bound
// extended to the end of its day so the window is inclusive
func parseWindow(startDate, endDate string) (*time.Time, *time.Time, error) {
	startT, err := datetime.ParseISODate(startDate)
	if err != nil {
		return nil, nil, err
	}
	endT, err := datetime.ParseISODate(endDate)
	if err != nil {
		return nil, nil, err
	}
	endT = endT.Add(24*time.Hour - time.Second)
	return &startT, &endT, nil
}
