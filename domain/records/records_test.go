package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstitutionGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		starting float64
		current  float64
		expected float64
	}{
		{"growth", 1000, 1500, 50},
		{"decline", 1000, 750, -25},
		{"zero starting balance", 0, 500, 0},
		{"unchanged", 200, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := Institution{StartingBalance: tt.starting, CurrentBalance: tt.current}
			assert.InDelta(t, tt.expected, inst.GrowthRate(), 0.0001)
			assert.InDelta(t, tt.current-tt.starting, inst.BalanceChange(), 0.0001)
		})
	}
}

func TestTransactionSignedAmount(t *testing.T) {
	deposit := Transaction{Type: TransactionTypeDeposit, Amount: 100}
	withdrawal := Transaction{Type: TransactionTypeWithdrawal, Amount: 40}

	assert.True(t, deposit.IsDeposit())
	assert.False(t, deposit.IsWithdrawal())
	assert.Equal(t, 100.0, deposit.SignedAmount())

	assert.True(t, withdrawal.IsWithdrawal())
	assert.Equal(t, -40.0, withdrawal.SignedAmount())
}

func TestGoalCurrentAmount(t *testing.T) {
	institutions := []Institution{
		{InstitutionID: "inst-1", CurrentBalance: 1000},
		{InstitutionID: "inst-2", CurrentBalance: 500},
	}

	goal := Goal{
		TargetAmount: 600,
		LinkedInstitutions: map[string]int{
			"inst-1":  50,
			"inst-2":  20,
			"unknown": 80,
		},
	}

	// 1000*0.5 + 500*0.2, unknown institution ignored
	assert.InDelta(t, 600.0, goal.CurrentAmount(institutions), 0.0001)
	assert.Equal(t, 150, goal.TotalAllocatedPercent())
}

func TestGoalProgress(t *testing.T) {
	institutions := []Institution{{InstitutionID: "inst-1", CurrentBalance: 1000}}

	t.Run("capped at 100", func(t *testing.T) {
		goal := Goal{TargetAmount: 100, LinkedInstitutions: map[string]int{"inst-1": 50}}
		assert.Equal(t, 100.0, goal.ProgressPercent(institutions))
		assert.Equal(t, 0.0, goal.RemainingAmount(institutions))
	})

	t.Run("partial progress", func(t *testing.T) {
		goal := Goal{TargetAmount: 1000, LinkedInstitutions: map[string]int{"inst-1": 25}}
		assert.InDelta(t, 25.0, goal.ProgressPercent(institutions), 0.0001)
		assert.InDelta(t, 750.0, goal.RemainingAmount(institutions), 0.0001)
	})

	t.Run("zero target", func(t *testing.T) {
		goal := Goal{TargetAmount: 0, LinkedInstitutions: map[string]int{"inst-1": 25}}
		assert.Equal(t, 0.0, goal.ProgressPercent(institutions))
	})
}
