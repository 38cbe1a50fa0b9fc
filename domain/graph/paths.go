package graph

import "math"

// PathResult describes a shortest path between two nodes. Length is +Inf
// when no path exists, including when either node is absent.
type PathResult struct {
	Exists bool     `json:"exists"`
	Path   []string `json:"path"`
	Length float64  `json:"length"`
}

// ShortestPath finds the hop-minimal path between two nodes over the
// undirected projection by breadth-first search.
func ShortestPath(g *Graph, source, target string) PathResult {
	noPath := PathResult{Exists: false, Path: []string{}, Length: math.Inf(1)}

	u := g.Undirected()
	if !u.HasNode(source) || !u.HasNode(target) {
		return noPath
	}
	if source == target {
		return PathResult{Exists: true, Path: []string{source}, Length: 0}
	}

	parent := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range u.Neighbors(v) {
			if _, seen := parent[w]; seen {
				continue
			}
			parent[w] = v
			if w == target {
				path := []string{w}
				for p := v; p != ""; p = parent[p] {
					path = append([]string{p}, path...)
				}
				return PathResult{Exists: true, Path: path, Length: float64(len(path) - 1)}
			}
			queue = append(queue, w)
		}
	}

	return noPath
}

// ClusteringCoefficients returns the local clustering coefficient of the
// top nodes: of the pairs of a node's neighbors, the fraction that are
// themselves connected. Nodes with fewer than two neighbors score 0.
func ClusteringCoefficients(g *Graph) map[string]float64 {
	u := g.Undirected()
	if u.NumNodes() == 0 {
		return map[string]float64{}
	}

	coefficients := make(map[string]float64, u.NumNodes())
	for _, id := range u.Nodes() {
		nbrs := u.Neighbors(id)
		k := len(nbrs)
		if k < 2 {
			coefficients[id] = 0
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if u.HasEdge(nbrs[i], nbrs[j]) {
					links++
				}
			}
		}
		coefficients[id] = 2 * float64(links) / (float64(k) * float64(k-1))
	}

	return topK(u.Nodes(), coefficients, topNodeCount)
}
