// Package graph builds and analyzes relationship graphs over a user's
// financial records. It owns its graph representation: insertion-ordered
// node and edge lists over an adjacency map, so metric results and
// serialization are deterministic.
package graph

import "fmt"

// Kind identifies which relationship graph to build
type Kind string

const (
	// KindFinancialFlow is the directed money-flow graph between
	// institutions, goals and spending categories
	KindFinancialFlow Kind = "financial_flow"

	// KindGoalInstitution is the undirected goal/institution allocation graph
	KindGoalInstitution Kind = "goal_institution"

	// KindTagNetwork is the undirected tag co-occurrence graph
	KindTagNetwork Kind = "tag_network"
)

// ParseKind validates a graph kind received from a request
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFinancialFlow:
		return KindFinancialFlow, nil
	case KindGoalInstitution:
		return KindGoalInstitution, nil
	case KindTagNetwork:
		return KindTagNetwork, nil
	default:
		return "", fmt.Errorf("unknown graph type %q", s)
	}
}

// String returns the wire name of the kind
func (k Kind) String() string {
	return string(k)
}

// Edge is one graph edge in insertion order
type Edge struct {
	Source string
	Target string
	Attrs  *EdgeAttrs
}

// Graph is a node/edge structure with attribute-carrying nodes and edges.
// Nodes and edges keep insertion order; adjacency is a nested map for
// constant-time edge lookup. An undirected graph stores each edge under
// both endpoints, sharing one EdgeAttrs.
type Graph struct {
	directed bool

	nodeOrder []string
	nodes     map[string]NodeAttrs

	edgeOrder []Edge
	adj       map[string]map[string]*EdgeAttrs
	nbrOrder  map[string][]string
}

// NewDirected creates an empty directed graph
func NewDirected() *Graph {
	return newGraph(true)
}

// NewUndirected creates an empty undirected graph
func NewUndirected() *Graph {
	return newGraph(false)
}

func newGraph(directed bool) *Graph {
	return &Graph{
		directed: directed,
		nodes:    make(map[string]NodeAttrs),
		adj:      make(map[string]map[string]*EdgeAttrs),
		nbrOrder: make(map[string][]string),
	}
}

// Directed reports whether edges are directional
func (g *Graph) Directed() bool {
	return g.directed
}

// AddNode inserts a node, or replaces its attributes if it already exists
func (g *Graph) AddNode(id string, attrs NodeAttrs) {
	if _, exists := g.nodes[id]; !exists {
		g.nodeOrder = append(g.nodeOrder, id)
		g.adj[id] = make(map[string]*EdgeAttrs)
	}
	g.nodes[id] = attrs
}

// HasNode reports whether the node exists
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeAttrsOf returns the attributes of a node, or nil if absent
func (g *Graph) NodeAttrsOf(id string) NodeAttrs {
	return g.nodes[id]
}

// AddEdge inserts an edge, creating missing endpoints as attribute-less
// nodes. Adding an existing edge replaces its attributes.
func (g *Graph) AddEdge(source, target string, attrs *EdgeAttrs) {
	if !g.HasNode(source) {
		g.AddNode(source, nil)
	}
	if !g.HasNode(target) {
		g.AddNode(target, nil)
	}

	if existing := g.adj[source][target]; existing != nil {
		// Replace attributes in place so both directions stay in sync
		*existing = *attrs
		return
	}

	g.adj[source][target] = attrs
	g.nbrOrder[source] = append(g.nbrOrder[source], target)
	if !g.directed && source != target {
		g.adj[target][source] = attrs
		g.nbrOrder[target] = append(g.nbrOrder[target], source)
	}

	g.edgeOrder = append(g.edgeOrder, Edge{Source: source, Target: target, Attrs: attrs})
}

// HasEdge reports whether an edge exists from source to target
func (g *Graph) HasEdge(source, target string) bool {
	_, ok := g.adj[source][target]
	return ok
}

// EdgeAttrsOf returns the attributes of an edge, or nil if absent
func (g *Graph) EdgeAttrsOf(source, target string) *EdgeAttrs {
	return g.adj[source][target]
}

// Nodes returns node IDs in insertion order
func (g *Graph) Nodes() []string {
	return g.nodeOrder
}

// Edges returns edges in insertion order
func (g *Graph) Edges() []Edge {
	return g.edgeOrder
}

// Neighbors returns a node's neighbors in edge insertion order. For a
// directed graph these are the out-neighbors.
func (g *Graph) Neighbors(id string) []string {
	return g.nbrOrder[id]
}

// Degree returns the number of incident edges. For a directed graph this
// counts out-edges only.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// NumNodes returns the node count
func (g *Graph) NumNodes() int {
	return len(g.nodeOrder)
}

// NumEdges returns the edge count
func (g *Graph) NumEdges() int {
	return len(g.edgeOrder)
}

// Density returns the graph density: m/(n(n-1)) directed, 2m/(n(n-1))
// undirected. Graphs with fewer than two nodes have density 0.
func (g *Graph) Density() float64 {
	n := float64(g.NumNodes())
	m := float64(g.NumEdges())
	if n <= 1 {
		return 0
	}
	if g.directed {
		return m / (n * (n - 1))
	}
	return 2 * m / (n * (n - 1))
}

// Undirected returns the undirected projection. An already-undirected
// graph is returned as is. Reverse edge pairs collapse to a single edge,
// the later one's attributes winning.
func (g *Graph) Undirected() *Graph {
	if !g.directed {
		return g
	}

	u := NewUndirected()
	for _, id := range g.nodeOrder {
		u.AddNode(id, g.nodes[id])
	}
	for _, e := range g.edgeOrder {
		attrs := *e.Attrs
		u.AddEdge(e.Source, e.Target, &attrs)
	}
	return u
}

// IsConnected reports whether every node is reachable from every other,
// ignoring edge direction. An empty graph is not connected; a single node
// is.
func (g *Graph) IsConnected() bool {
	n := g.NumNodes()
	if n == 0 {
		return false
	}

	u := g.Undirected()
	visited := make(map[string]bool, n)
	queue := []string{u.nodeOrder[0]}
	visited[u.nodeOrder[0]] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, nbr := range u.Neighbors(current) {
			if !visited[nbr] {
				visited[nbr] = true
				queue = append(queue, nbr)
			}
		}
	}

	return len(visited) == n
}
