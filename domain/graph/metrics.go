package graph

import (
	"errors"
	"math"
	"sort"
)

// ErrMetricUnavailable reports that a metric could not be computed for the
// given graph, e.g. PageRank failing to converge. Callers degrade to an
// empty result instead of failing the analysis.
var ErrMetricUnavailable = errors.New("metric unavailable for this graph")

// PageRank parameters
const (
	pageRankDamping   = 0.85
	pageRankMaxIter   = 100
	pageRankTolerance = 1e-6
)

// How many nodes each metric reports
const topNodeCount = 10

// Centrality holds the per-metric top nodes. A metric whose preconditions
// the graph does not meet is left as an empty map.
type Centrality struct {
	Degree      map[string]float64 `json:"degree_centrality"`
	Betweenness map[string]float64 `json:"betweenness_centrality"`
	Closeness   map[string]float64 `json:"closeness_centrality"`
	PageRank    map[string]float64 `json:"pagerank"`
}

// ComputeCentrality calculates degree, betweenness, closeness and PageRank
// centrality, each truncated to the top nodes by value. Degree, betweenness
// and closeness run on the undirected projection; PageRank keeps direction
// when the graph is directed. Betweenness needs more than two nodes and
// closeness a connected graph; metric failures yield empty maps, never
// errors.
func ComputeCentrality(g *Graph) Centrality {
	result := Centrality{
		Degree:      map[string]float64{},
		Betweenness: map[string]float64{},
		Closeness:   map[string]float64{},
		PageRank:    map[string]float64{},
	}
	if g.NumNodes() == 0 {
		return result
	}

	u := g.Undirected()

	result.Degree = topK(u.Nodes(), degreeCentrality(u), topNodeCount)

	if u.NumNodes() > 2 {
		result.Betweenness = topK(u.Nodes(), betweennessCentrality(u), topNodeCount)
	}

	if u.IsConnected() {
		result.Closeness = topK(u.Nodes(), closenessCentrality(u), topNodeCount)
	}

	pagerankGraph := g
	if !g.Directed() {
		pagerankGraph = u
	}
	if ranks, err := PageRank(pagerankGraph); err == nil {
		result.PageRank = topK(pagerankGraph.Nodes(), ranks, topNodeCount)
	}

	return result
}

// degreeCentrality is degree divided by n-1. Trivial graphs score 1.
func degreeCentrality(g *Graph) map[string]float64 {
	n := g.NumNodes()
	centrality := make(map[string]float64, n)
	if n <= 1 {
		for _, id := range g.Nodes() {
			centrality[id] = 1
		}
		return centrality
	}
	scale := 1 / float64(n-1)
	for _, id := range g.Nodes() {
		centrality[id] = float64(g.Degree(id)) * scale
	}
	return centrality
}

// betweennessCentrality implements Brandes' algorithm over unweighted
// shortest paths, normalized for an undirected graph.
func betweennessCentrality(g *Graph) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	betweenness := make(map[string]float64, n)
	for _, id := range nodes {
		betweenness[id] = 0
	}

	for _, source := range nodes {
		// Single-source shortest paths by BFS
		var stack []string
		preds := make(map[string][]string, n)
		sigma := map[string]float64{source: 1}
		dist := map[string]int{source: 0}
		queue := []string{source}

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, w := range g.Neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		// Accumulate dependencies in reverse BFS order
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	// Each pair is counted from both endpoints, so the undirected
	// normalization is 1/((n-1)(n-2)) on the doubled sums
	if n > 2 {
		scale := 1 / (float64(n-1) * float64(n-2))
		for id := range betweenness {
			betweenness[id] *= scale
		}
	}
	return betweenness
}

// closenessCentrality is (n-1) over the sum of shortest-path distances.
// Only meaningful on a connected graph; the caller gates on that.
func closenessCentrality(g *Graph) map[string]float64 {
	nodes := g.Nodes()
	n := len(nodes)
	centrality := make(map[string]float64, n)

	for _, source := range nodes {
		dist := map[string]int{source: 0}
		queue := []string{source}
		total := 0

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range g.Neighbors(v) {
				if _, seen := dist[w]; !seen {
					dist[w] = dist[v] + 1
					total += dist[w]
					queue = append(queue, w)
				}
			}
		}

		if total > 0 {
			centrality[source] = float64(n-1) / float64(total)
		} else {
			centrality[source] = 0
		}
	}
	return centrality
}

// PageRank computes weighted PageRank with 0.85 damping by power iteration.
// Nodes without outgoing weight are treated as dangling and redistribute
// uniformly. Returns ErrMetricUnavailable if the iteration does not
// converge.
func PageRank(g *Graph) (map[string]float64, error) {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return map[string]float64{}, nil
	}

	outWeight := make(map[string]float64, n)
	for _, u := range nodes {
		for _, v := range g.Neighbors(u) {
			outWeight[u] += g.EdgeAttrsOf(u, v).Weight
		}
	}

	ranks := make(map[string]float64, n)
	for _, id := range nodes {
		ranks[id] = 1 / float64(n)
	}

	for iter := 0; iter < pageRankMaxIter; iter++ {
		last := ranks
		ranks = make(map[string]float64, n)

		danglingSum := 0.0
		for _, id := range nodes {
			if outWeight[id] == 0 {
				danglingSum += last[id]
			}
		}

		base := (1-pageRankDamping)/float64(n) + pageRankDamping*danglingSum/float64(n)
		for _, id := range nodes {
			ranks[id] = base
		}
		for _, u := range nodes {
			if outWeight[u] == 0 {
				continue
			}
			share := pageRankDamping * last[u] / outWeight[u]
			for _, v := range g.Neighbors(u) {
				ranks[v] += share * g.EdgeAttrsOf(u, v).Weight
			}
		}

		err := 0.0
		for _, id := range nodes {
			err += math.Abs(ranks[id] - last[id])
		}
		if err < float64(n)*pageRankTolerance {
			return ranks, nil
		}
	}

	return nil, ErrMetricUnavailable
}

// topK keeps the k highest-valued nodes. The sort is stable over the
// given node order, so ties resolve to earlier-inserted nodes.
func topK(order []string, values map[string]float64, k int) map[string]float64 {
	type nodeValue struct {
		id    string
		value float64
	}
	ranked := make([]nodeValue, 0, len(values))
	for _, id := range order {
		if v, ok := values[id]; ok {
			ranked = append(ranked, nodeValue{id: id, value: v})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	top := make(map[string]float64, len(ranked))
	for _, nv := range ranked {
		top[nv.id] = nv.value
	}
	return top
}
