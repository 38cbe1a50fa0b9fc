// Package records holds the financial records the analytics pipeline
// operates on: institutions, transactions and goals as stored in DynamoDB.
package records

// Institution is a financial account held by a user
type Institution struct {
	UserID           string   `json:"userId" dynamodbav:"userId"`
	InstitutionID    string   `json:"institutionId" dynamodbav:"institutionId"`
	InstitutionName  string   `json:"institutionName" dynamodbav:"institutionName"`
	StartingBalance  float64  `json:"startingBalance" dynamodbav:"startingBalance"`
	CurrentBalance   float64  `json:"currentBalance" dynamodbav:"currentBalance"`
	CreatedAt        int64    `json:"createdAt" dynamodbav:"createdAt"`
	AllocatedPercent *int     `json:"allocatedPercent,omitempty" dynamodbav:"allocatedPercent,omitempty"`
	LinkedGoals      []string `json:"linkedGoals,omitempty" dynamodbav:"linkedGoals,omitempty"`
}

// BalanceChange returns the change from the starting balance
func (i *Institution) BalanceChange() float64 {
	return i.CurrentBalance - i.StartingBalance
}

// GrowthRate returns the percentage growth since the starting balance.
// A zero starting balance yields 0.
func (i *Institution) GrowthRate() float64 {
	if i.StartingBalance == 0 {
		return 0
	}
	return i.BalanceChange() / i.StartingBalance * 100
}
