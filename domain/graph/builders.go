package graph

import (
	"sort"

	"github.com/cpsc/analytics/domain/records"
)

// GoalCompletionTag marks transactions created when a goal completes. The
// goal-institution graph skips it: the institution-goal edge already
// represents that flow.
const GoalCompletionTag = "goal-completion"

// Node ID namespacing. Tag-network nodes use the bare tag as ID.
func InstitutionNodeID(id string) string { return "inst_" + id }
func GoalNodeID(id string) string        { return "goal_" + id }
func CategoryNodeID(tag string) string   { return "cat_" + tag }
func TagNodeID(tag string) string        { return "tag_" + tag }

// BuildFinancialFlow builds the directed money-flow graph.
//
// Nodes are institutions, goals and spending categories. Spending edges run
// institution -> category weighted by summed withdrawal amounts. Allocation
// edges run institution -> goal weighted by target * percent / 100. Inactive
// goals additionally get weight-0 inactive_allocation edges derived from
// their linked transactions, never overwriting an existing edge.
func BuildFinancialFlow(transactions []records.Transaction, institutions []records.Institution, goals []records.Goal) *Graph {
	g := NewDirected()

	for i := range institutions {
		inst := &institutions[i]
		g.AddNode(InstitutionNodeID(inst.InstitutionID), &InstitutionAttrs{
			Name:    inst.InstitutionName,
			Balance: inst.CurrentBalance,
		})
	}

	for i := range goals {
		goal := &goals[i]
		g.AddNode(GoalNodeID(goal.GoalID), &GoalAttrs{
			Name:    goal.Name,
			Target:  goal.TargetAmount,
			Current: goal.CurrentAmount(institutions),
		})
	}

	// Accumulate institution -> category withdrawal flows, keeping
	// first-seen order for deterministic edge insertion
	type catFlows struct {
		catOrder []string
		amounts  map[string]float64
	}
	flowOrder := []string{}
	flows := make(map[string]*catFlows)

	for i := range transactions {
		txn := &transactions[i]
		instNode := InstitutionNodeID(txn.InstitutionID)

		for _, tag := range txn.Tags {
			catNode := CategoryNodeID(tag)
			if !g.HasNode(catNode) {
				g.AddNode(catNode, &CategoryAttrs{Name: tag})
			}

			if txn.IsWithdrawal() {
				cf, ok := flows[instNode]
				if !ok {
					cf = &catFlows{amounts: make(map[string]float64)}
					flows[instNode] = cf
					flowOrder = append(flowOrder, instNode)
				}
				if _, seen := cf.amounts[catNode]; !seen {
					cf.catOrder = append(cf.catOrder, catNode)
				}
				cf.amounts[catNode] += txn.Amount
			}
		}
	}

	// Spending edges only for institutions present in the graph
	for _, instNode := range flowOrder {
		if !g.HasNode(instNode) {
			continue
		}
		cf := flows[instNode]
		for _, catNode := range cf.catOrder {
			g.AddEdge(instNode, catNode, &EdgeAttrs{
				Weight:   cf.amounts[catNode],
				FlowType: FlowTypeSpending,
			})
		}
	}

	// Allocation edges from institutions to goals
	for i := range goals {
		goal := &goals[i]
		goalNode := GoalNodeID(goal.GoalID)
		for _, instID := range sortedKeys(goal.LinkedInstitutions) {
			instNode := InstitutionNodeID(instID)
			if g.HasNode(instNode) {
				weight := goal.TargetAmount * float64(goal.LinkedInstitutions[instID]) / 100
				g.AddEdge(instNode, goalNode, &EdgeAttrs{
					Weight:   weight,
					FlowType: FlowTypeAllocation,
				})
			}
		}
	}

	// Inactive goals: derive institution links from linked transactions
	txnByID := transactionIndex(transactions)
	for i := range goals {
		goal := &goals[i]
		if goal.IsActive || len(goal.LinkedTransactions) == 0 {
			continue
		}
		goalNode := GoalNodeID(goal.GoalID)
		for _, txnID := range goal.LinkedTransactions {
			txn, ok := txnByID[txnID]
			if !ok {
				continue
			}
			instNode := InstitutionNodeID(txn.InstitutionID)
			if g.HasNode(instNode) && !g.HasEdge(instNode, goalNode) {
				g.AddEdge(instNode, goalNode, &EdgeAttrs{
					Weight:   0,
					FlowType: FlowTypeInactiveAllocation,
				})
			}
		}
	}

	return g
}

// BuildGoalInstitution builds the undirected goal/institution graph.
//
// Active goals connect to institutions through their allocation map, the
// edge weight and allocation both being the percent. Inactive goals connect
// through their linked transactions: amounts are pre-summed per institution
// and the edge carries a null allocation. Allocation edges win over
// transaction-derived ones. Transactions additionally produce aggregated
// tag edges: goal-linked transactions hang their tags off the goal,
// everything else off the institution, with the goal-completion tag skipped.
func BuildGoalInstitution(institutions []records.Institution, goals []records.Goal, transactions []records.Transaction) *Graph {
	g := NewUndirected()

	for i := range institutions {
		inst := &institutions[i]
		g.AddNode(InstitutionNodeID(inst.InstitutionID), &InstitutionAttrs{
			Name:    inst.InstitutionName,
			Balance: inst.CurrentBalance,
		})
	}

	for i := range goals {
		goal := &goals[i]
		goalNode := GoalNodeID(goal.GoalID)
		g.AddNode(goalNode, &GoalAttrs{
			Name:        goal.Name,
			Target:      goal.TargetAmount,
			Current:     goal.CurrentAmount(institutions),
			WithStatus:  true,
			IsCompleted: goal.IsCompleted,
			IsActive:    goal.IsActive,
		})

		for _, instID := range sortedKeys(goal.LinkedInstitutions) {
			instNode := InstitutionNodeID(instID)
			if g.HasNode(instNode) {
				percent := goal.LinkedInstitutions[instID]
				allocation := percent
				g.AddEdge(instNode, goalNode, &EdgeAttrs{
					Weight:        float64(percent),
					HasAllocation: true,
					Allocation:    &allocation,
				})
			}
		}
	}

	// Inactive goals: pre-sum linked transaction amounts per institution so
	// several transactions to one institution become a single edge
	txnByID := transactionIndex(transactions)
	for i := range goals {
		goal := &goals[i]
		if goal.IsActive || len(goal.LinkedTransactions) == 0 {
			continue
		}
		goalNode := GoalNodeID(goal.GoalID)

		instOrder := []string{}
		instAmounts := make(map[string]float64)
		for _, txnID := range goal.LinkedTransactions {
			txn, ok := txnByID[txnID]
			if !ok {
				continue
			}
			if _, seen := instAmounts[txn.InstitutionID]; !seen {
				instOrder = append(instOrder, txn.InstitutionID)
			}
			instAmounts[txn.InstitutionID] += txn.Amount
		}

		for _, instID := range instOrder {
			instNode := InstitutionNodeID(instID)
			// Allocation edges from linked_institutions take precedence
			if g.HasNode(instNode) && !g.HasEdge(instNode, goalNode) {
				g.AddEdge(instNode, goalNode, &EdgeAttrs{
					Weight:        instAmounts[instID],
					HasAllocation: true,
					Allocation:    nil,
				})
			}
		}
	}

	// Aggregated tag edges: goal-linked transactions hang off the goal,
	// all others off their institution
	if len(transactions) > 0 {
		txnToGoal := make(map[string]string)
		for i := range goals {
			goal := &goals[i]
			for _, txnID := range goal.LinkedTransactions {
				txnToGoal[txnID] = GoalNodeID(goal.GoalID)
			}
		}

		type sourceTag struct{ source, tag string }
		flowOrder := []sourceTag{}
		tagFlows := make(map[sourceTag]float64)

		for i := range transactions {
			txn := &transactions[i]
			source := ""
			if goalNode, linked := txnToGoal[txn.TransactionID]; linked && g.HasNode(goalNode) {
				source = goalNode
			} else {
				source = InstitutionNodeID(txn.InstitutionID)
				if !g.HasNode(source) {
					continue
				}
			}
			for _, tag := range txn.Tags {
				if tag == GoalCompletionTag {
					continue
				}
				key := sourceTag{source: source, tag: tag}
				if _, seen := tagFlows[key]; !seen {
					flowOrder = append(flowOrder, key)
				}
				tagFlows[key] += txn.Amount
			}
		}

		for _, key := range flowOrder {
			tagNode := TagNodeID(key.tag)
			if !g.HasNode(tagNode) {
				g.AddNode(tagNode, &TagAttrs{Name: key.tag})
			}
			total := tagFlows[key]
			if existing := g.EdgeAttrsOf(key.source, tagNode); existing != nil {
				existing.Weight += total
			} else {
				g.AddEdge(key.source, tagNode, &EdgeAttrs{
					Weight:   total,
					FlowType: FlowTypeSpending,
				})
			}
		}
	}

	return g
}

// BuildTagNetwork builds the undirected tag co-occurrence graph. Tags are
// bare node IDs; edges count how many transactions carry both tags, pairs
// taken over the lexically sorted tag list. Every tag accumulates the full
// transaction amount, with no split across tags.
func BuildTagNetwork(transactions []records.Transaction) *Graph {
	g := NewUndirected()

	type tagPair struct{ a, b string }
	pairOrder := []tagPair{}
	pairCounts := make(map[tagPair]int)
	tagOrder := []string{}
	tagAmounts := make(map[string]float64)

	for i := range transactions {
		txn := &transactions[i]

		for _, tag := range txn.Tags {
			if !g.HasNode(tag) {
				g.AddNode(tag, &TagAttrs{Name: tag})
			}
			if _, seen := tagAmounts[tag]; !seen {
				tagOrder = append(tagOrder, tag)
			}
			tagAmounts[tag] += txn.Amount
		}

		tags := append([]string(nil), txn.Tags...)
		sort.Strings(tags)
		for i, tag1 := range tags {
			for _, tag2 := range tags[i+1:] {
				pair := tagPair{a: tag1, b: tag2}
				if _, seen := pairCounts[pair]; !seen {
					pairOrder = append(pairOrder, pair)
				}
				pairCounts[pair]++
			}
		}
	}

	for _, pair := range pairOrder {
		count := pairCounts[pair]
		occurrences := count
		g.AddEdge(pair.a, pair.b, &EdgeAttrs{
			Weight:        float64(count),
			CoOccurrences: &occurrences,
		})
	}

	for _, tag := range tagOrder {
		if attrs, ok := g.NodeAttrsOf(tag).(*TagAttrs); ok {
			total := tagAmounts[tag]
			attrs.TotalAmount = &total
		}
	}

	return g
}

func transactionIndex(transactions []records.Transaction) map[string]*records.Transaction {
	byID := make(map[string]*records.Transaction, len(transactions))
	for i := range transactions {
		byID[transactions[i].TransactionID] = &transactions[i]
	}
	return byID
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
