package graph

// SerializedNode is a node with its rendered attributes
type SerializedNode struct {
	ID         string                 `json:"id"`
	Attributes map[string]interface{} `json:"attributes"`
}

// SerializedEdge is an edge with its rendered attributes
type SerializedEdge struct {
	Source     string                 `json:"source"`
	Target     string                 `json:"target"`
	Attributes map[string]interface{} `json:"attributes"`
}

// SerializeNodes renders every node in insertion order. Nothing is lost:
// each attribute variant emits all of its fields.
func SerializeNodes(g *Graph) []SerializedNode {
	nodes := make([]SerializedNode, 0, g.NumNodes())
	for _, id := range g.Nodes() {
		attrs := map[string]interface{}{}
		if a := g.NodeAttrsOf(id); a != nil {
			attrs = a.Map()
		}
		nodes = append(nodes, SerializedNode{ID: id, Attributes: attrs})
	}
	return nodes
}

// SerializeEdges renders every edge in insertion order
func SerializeEdges(g *Graph) []SerializedEdge {
	edges := make([]SerializedEdge, 0, g.NumEdges())
	for _, e := range g.Edges() {
		edges = append(edges, SerializedEdge{
			Source:     e.Source,
			Target:     e.Target,
			Attributes: e.Attrs.Map(),
		})
	}
	return edges
}
