package graph

import "sort"

// Community is one detected cluster of nodes
type Community struct {
	ID    int      `json:"id"`
	Nodes []string `json:"nodes"`
	Size  int      `json:"size"`
}

// CommunityReport summarizes community detection over a graph
type CommunityReport struct {
	NumCommunities int         `json:"num_communities"`
	Communities    []Community `json:"communities"`
	Modularity     float64     `json:"modularity"`
}

// DetectCommunities clusters the undirected projection by greedy modularity
// maximization: every node starts alone and the pair of connected
// communities whose merge gains the most modularity is merged until no
// merge gains. Communities are reported largest first with sorted members.
// Graphs where detection cannot run (no nodes or no edges) yield a zero
// report, never an error.
func DetectCommunities(g *Graph) CommunityReport {
	report := CommunityReport{Communities: []Community{}}
	if g.NumNodes() == 0 {
		return report
	}

	u := g.Undirected()
	partition, err := greedyModularityPartition(u)
	if err != nil {
		return report
	}

	communities := make([]Community, len(partition))
	for i, members := range partition {
		sorted := append([]string(nil), members...)
		sort.Strings(sorted)
		communities[i] = Community{Nodes: sorted, Size: len(sorted)}
	}
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].Size > communities[j].Size
	})
	for i := range communities {
		communities[i].ID = i
	}

	report.NumCommunities = len(communities)
	report.Communities = communities
	report.Modularity = modularity(u, communities)
	return report
}

// greedyModularityPartition merges communities while a merge increases
// unweighted modularity. Returns ErrMetricUnavailable on edgeless graphs,
// where modularity is undefined.
func greedyModularityPartition(g *Graph) ([][]string, error) {
	m := float64(g.NumEdges())
	if m == 0 {
		return nil, ErrMetricUnavailable
	}

	nodes := g.Nodes()
	community := make(map[string]int, len(nodes))
	for i, id := range nodes {
		community[id] = i
	}

	// degreeSum[c] tracks the sum of node degrees inside community c;
	// between[c1][c2] the number of edges connecting the two (c1 < c2)
	degreeSum := make(map[int]float64, len(nodes))
	for _, id := range nodes {
		degreeSum[community[id]] += float64(g.Degree(id))
	}
	between := make(map[[2]int]float64)
	for _, e := range g.Edges() {
		c1, c2 := community[e.Source], community[e.Target]
		if c1 == c2 {
			continue
		}
		between[communityPair(c1, c2)]++
	}

	members := make(map[int][]string, len(nodes))
	order := make([]int, 0, len(nodes))
	for _, id := range nodes {
		c := community[id]
		if _, seen := members[c]; !seen {
			order = append(order, c)
		}
		members[c] = append(members[c], id)
	}

	for {
		pairs := make([][2]int, 0, len(between))
		for pair := range between {
			pairs = append(pairs, pair)
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i][0] != pairs[j][0] {
				return pairs[i][0] < pairs[j][0]
			}
			return pairs[i][1] < pairs[j][1]
		})

		bestGain := 0.0
		var bestPair [2]int
		found := false
		for _, pair := range pairs {
			// dQ of merging: e12/m - 2 (d1/2m)(d2/2m)
			gain := between[pair]/m - 2*(degreeSum[pair[0]]/(2*m))*(degreeSum[pair[1]]/(2*m))
			if gain > 0 && (!found || gain > bestGain) {
				bestGain = gain
				bestPair = pair
				found = true
			}
		}
		if !found {
			break
		}

		keep, gone := bestPair[0], bestPair[1]
		members[keep] = append(members[keep], members[gone]...)
		delete(members, gone)
		degreeSum[keep] += degreeSum[gone]
		delete(degreeSum, gone)
		for i := range order {
			if order[i] == gone {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}

		// Re-point edge counts from the absorbed community
		for pair, edges := range between {
			if pair[0] != gone && pair[1] != gone {
				continue
			}
			delete(between, pair)
			other := pair[0]
			if other == gone {
				other = pair[1]
			}
			if other == keep {
				continue
			}
			between[communityPair(keep, other)] += edges
		}
	}

	partition := make([][]string, 0, len(order))
	for _, c := range order {
		partition = append(partition, members[c])
	}
	return partition, nil
}

// modularity scores a partition using edge weights:
// Q = sum over communities of [W_in/W - (S_c/2W)^2]
func modularity(g *Graph, communities []Community) float64 {
	totalWeight := 0.0
	for _, e := range g.Edges() {
		totalWeight += e.Attrs.Weight
	}
	if totalWeight == 0 {
		return 0
	}

	community := make(map[string]int, g.NumNodes())
	for i, c := range communities {
		for _, id := range c.Nodes {
			community[id] = i
		}
	}

	intra := make([]float64, len(communities))
	strength := make([]float64, len(communities))
	for _, e := range g.Edges() {
		w := e.Attrs.Weight
		cs, ct := community[e.Source], community[e.Target]
		strength[cs] += w
		strength[ct] += w
		if cs == ct {
			intra[cs] += w
		}
	}

	q := 0.0
	for i := range communities {
		q += intra[i]/totalWeight - (strength[i]/(2*totalWeight))*(strength[i]/(2*totalWeight))
	}
	return q
}

func communityPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
