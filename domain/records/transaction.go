package records

// Transaction types
const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeWithdrawal = "WITHDRAWAL"
)

// Transaction is a single deposit or withdrawal against an institution
type Transaction struct {
	InstitutionID   string   `json:"institutionId" dynamodbav:"institutionId"`
	CreatedAt       int64    `json:"createdAt" dynamodbav:"createdAt"`
	TransactionID   string   `json:"transactionId" dynamodbav:"transactionId"`
	UserID          string   `json:"userId" dynamodbav:"userId"`
	Type            string   `json:"type" dynamodbav:"type"`
	Amount          float64  `json:"amount" dynamodbav:"amount"`
	TransactionDate int64    `json:"transactionDate" dynamodbav:"transactionDate"`
	Tags            []string `json:"tags,omitempty" dynamodbav:"tags,omitempty"`
	Description     string   `json:"description,omitempty" dynamodbav:"description,omitempty"`
}

// IsDeposit reports whether the transaction is a deposit
func (t *Transaction) IsDeposit() bool {
	return t.Type == TransactionTypeDeposit
}

// IsWithdrawal reports whether the transaction is a withdrawal
func (t *Transaction) IsWithdrawal() bool {
	return t.Type == TransactionTypeWithdrawal
}

// SignedAmount returns the amount, negative for withdrawals
func (t *Transaction) SignedAmount() float64 {
	if t.IsDeposit() {
		return t.Amount
	}
	return -t.Amount
}
