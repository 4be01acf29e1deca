package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_CompileAndMatch(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rule, err := engine.Compile("large_amount", "amount >= 10000.0")
	require.NoError(t, err)

	matched, err := rule.Matches(PaymentAttributes{Amount: 15000})
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = rule.Matches(PaymentAttributes{Amount: 500})
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestEngine_Compile_InvalidExpression(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	_, err = engine.Compile("broken", "amount >=")
	require.Error(t, err)
}

func TestEngine_Compile_NonBoolean(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	_, err = engine.Compile("not_bool", "amount + 1.0")
	require.Error(t, err)
}

func TestPolicy_RequiresApproval(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	policy, err := DefaultPolicy(engine, 10000)
	require.NoError(t, err)

	t.Run("small_cash_payment_skips_approval", func(t *testing.T) {
		needs, _, err := policy.RequiresApproval(PaymentAttributes{
			Amount: 500, Cash: 500,
		})
		require.NoError(t, err)
		assert.False(t, needs)
	})

	t.Run("large_payment_needs_approval", func(t *testing.T) {
		needs, rule, err := policy.RequiresApproval(PaymentAttributes{
			Amount: 25000, Bank: 25000,
		})
		require.NoError(t, err)
		assert.True(t, needs)
		assert.Equal(t, "large_amount", rule)
	})

	t.Run("any_cheque_needs_approval", func(t *testing.T) {
		needs, rule, err := policy.RequiresApproval(PaymentAttributes{
			Amount: 100, Cheque: 100,
		})
		require.NoError(t, err)
		assert.True(t, needs)
		assert.Equal(t, "cheque_payment", rule)
	})
}

func TestPolicy_CustomRule(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rule, err := engine.Compile("backdated_upi", "backdated && upi > 0.0")
	require.NoError(t, err)
	policy := Policy{Rules: []Rule{rule}}

	needs, _, err := policy.RequiresApproval(PaymentAttributes{
		Amount: 50, UPI: 50, Backdated: true,
	})
	require.NoError(t, err)
	assert.True(t, needs)

	needs, _, err = policy.RequiresApproval(PaymentAttributes{
		Amount: 50, UPI: 50, Backdated: false,
	})
	require.NoError(t, err)
	assert.False(t, needs)
}
