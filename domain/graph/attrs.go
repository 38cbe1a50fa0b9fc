package graph

// Node types carried in serialized attributes
const (
	NodeTypeInstitution = "institution"
	NodeTypeGoal        = "goal"
	NodeTypeCategory    = "category"
	NodeTypeTag         = "tag"
)

// Flow types carried on financial-flow and goal-institution edges
const (
	FlowTypeSpending           = "spending"
	FlowTypeAllocation         = "allocation"
	FlowTypeInactiveAllocation = "inactive_allocation"
)

// NodeAttrs is the attribute payload of a node. Implementations are the
// four node variants; Map renders the attributes for serialization.
type NodeAttrs interface {
	NodeType() string
	Map() map[string]interface{}
}

// InstitutionAttrs annotates an institution node
type InstitutionAttrs struct {
	Name    string
	Balance float64
}

func (a *InstitutionAttrs) NodeType() string { return NodeTypeInstitution }

func (a *InstitutionAttrs) Map() map[string]interface{} {
	return map[string]interface{}{
		"type":    NodeTypeInstitution,
		"name":    a.Name,
		"balance": a.Balance,
	}
}

// GoalAttrs annotates a goal node. Status fields are only serialized for
// graphs that carry goal status (goal-institution).
type GoalAttrs struct {
	Name        string
	Target      float64
	Current     float64
	WithStatus  bool
	IsCompleted bool
	IsActive    bool
}

func (a *GoalAttrs) NodeType() string { return NodeTypeGoal }

func (a *GoalAttrs) Map() map[string]interface{} {
	m := map[string]interface{}{
		"type":    NodeTypeGoal,
		"name":    a.Name,
		"target":  a.Target,
		"current": a.Current,
	}
	if a.WithStatus {
		m["is_completed"] = a.IsCompleted
		m["is_active"] = a.IsActive
	}
	return m
}

// CategoryAttrs annotates a spending-category node
type CategoryAttrs struct {
	Name string
}

func (a *CategoryAttrs) NodeType() string { return NodeTypeCategory }

func (a *CategoryAttrs) Map() map[string]interface{} {
	return map[string]interface{}{
		"type": NodeTypeCategory,
		"name": a.Name,
	}
}

// TagAttrs annotates a tag node. TotalAmount is only carried in the tag
// co-occurrence graph.
type TagAttrs struct {
	Name        string
	TotalAmount *float64
}

func (a *TagAttrs) NodeType() string { return NodeTypeTag }

func (a *TagAttrs) Map() map[string]interface{} {
	m := map[string]interface{}{
		"type": NodeTypeTag,
		"name": a.Name,
	}
	if a.TotalAmount != nil {
		m["total_amount"] = *a.TotalAmount
	}
	return m
}

// EdgeAttrs is the attribute payload of an edge. Allocation distinguishes
// "not carried" (HasAllocation false) from "carried but unknown"
// (HasAllocation true, Allocation nil): inactive-goal edges derived from
// transactions have an explicit null allocation.
type EdgeAttrs struct {
	Weight        float64
	FlowType      string
	HasAllocation bool
	Allocation    *int
	CoOccurrences *int
}

// Map renders the edge attributes for serialization
func (a *EdgeAttrs) Map() map[string]interface{} {
	m := map[string]interface{}{
		"weight": a.Weight,
	}
	if a.FlowType != "" {
		m["flow_type"] = a.FlowType
	}
	if a.HasAllocation {
		if a.Allocation != nil {
			m["allocation"] = *a.Allocation
		} else {
			m["allocation"] = nil
		}
	}
	if a.CoOccurrences != nil {
		m["co_occurrences"] = *a.CoOccurrences
	}
	return m
}
