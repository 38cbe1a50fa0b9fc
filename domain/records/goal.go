package records

// Goal is a savings target funded by percentage allocations of linked
// institutions. An active goal's linkage lives in LinkedInstitutions; an
// inactive goal only retains the transactions that funded it.
type Goal struct {
	UserID             string         `json:"userId" dynamodbav:"userId"`
	GoalID             string         `json:"goalId" dynamodbav:"goalId"`
	Name               string         `json:"name" dynamodbav:"name"`
	TargetAmount       float64        `json:"targetAmount" dynamodbav:"targetAmount"`
	CreatedAt          int64          `json:"createdAt" dynamodbav:"createdAt"`
	IsCompleted        bool           `json:"isCompleted" dynamodbav:"isCompleted"`
	IsActive           bool           `json:"isActive" dynamodbav:"isActive"`
	Description        string         `json:"description,omitempty" dynamodbav:"description,omitempty"`
	LinkedInstitutions map[string]int `json:"linkedInstitutions,omitempty" dynamodbav:"linkedInstitutions,omitempty"`
	LinkedTransactions []string       `json:"linkedTransactions,omitempty" dynamodbav:"linkedTransactions,omitempty"`
	CompletedAt        *int64         `json:"completedAt,omitempty" dynamodbav:"completedAt,omitempty"`
}

// TotalAllocatedPercent returns the sum of institution allocation percentages
func (g *Goal) TotalAllocatedPercent() int {
	total := 0
	for _, percent := range g.LinkedInstitutions {
		total += percent
	}
	return total
}

// CurrentAmount returns the amount accumulated toward the goal: each linked
// institution contributes its current balance scaled by the allocation
// percent. Unknown institution IDs contribute nothing.
func (g *Goal) CurrentAmount(institutions []Institution) float64 {
	byID := make(map[string]*Institution, len(institutions))
	for i := range institutions {
		byID[institutions[i].InstitutionID] = &institutions[i]
	}

	total := 0.0
	for instID, percent := range g.LinkedInstitutions {
		if inst, ok := byID[instID]; ok {
			total += inst.CurrentBalance * float64(percent) / 100
		}
	}
	return total
}

// ProgressPercent returns progress toward the target, capped at 100.
// A zero target yields 0.
func (g *Goal) ProgressPercent(institutions []Institution) float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	progress := g.CurrentAmount(institutions) / g.TargetAmount * 100
	if progress > 100 {
		return 100
	}
	return progress
}

// RemainingAmount returns the amount still needed, floored at 0
func (g *Goal) RemainingAmount(institutions []Institution) float64 {
	remaining := g.TargetAmount - g.CurrentAmount(institutions)
	if remaining < 0 {
		return 0
	}
	return remaining
}
