package policy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
)

func TestNewAvailabilityEnforcer_EmptyAndNilRules(t *testing.T) {
	e, err := NewAvailabilityEnforcer(nil)
	require.NoError(t, err)
	assert.Empty(t, e.rules)

	allowed, err := e.Allows(paymentmethod.In3, Facts{})
	require.NoError(t, err)
	assert.True(t, allowed, "gateways without rules are allowed")
}

func TestNewAvailabilityEnforcer_CompilationError(t *testing.T) {
	rules := []AvailabilityRule{
		{ID: "rule1", Gateway: paymentmethod.In3, Expression: "amount > 100"},
		{ID: "rule2", Gateway: paymentmethod.In3, Expression: "billingCountry =="},
	}
	_, err := NewAvailabilityEnforcer(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile rule ID 'rule2'")
	assert.Contains(t, err.Error(), "Unexpected end of expression")
}

func TestNewAvailabilityEnforcer_EmptyExpression(t *testing.T) {
	_, err := NewAvailabilityEnforcer([]AvailabilityRule{{ID: "empty_expr_rule", Gateway: paymentmethod.Visa}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "availability rule ID 'empty_expr_rule' has an empty expression")
}

func TestAvailabilityEnforcer_DefaultRules(t *testing.T) {
	e, err := NewAvailabilityEnforcer(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name    string
		gateway paymentmethod.Gateway
		facts   Facts
		want    bool
	}{
		{"In3Allowed", paymentmethod.In3, Facts{Amount: decimal.NewFromInt(250), Currency: "eur", BillingCountry: "nl"}, true},
		{"In3TooSmall", paymentmethod.In3, Facts{Amount: decimal.RequireFromString("99.99"), Currency: "EUR", BillingCountry: "NL"}, false},
		{"In3TooLarge", paymentmethod.In3, Facts{Amount: decimal.NewFromInt(3001), Currency: "EUR", BillingCountry: "NL"}, false},
		{"In3WrongCountry", paymentmethod.In3, Facts{Amount: decimal.NewFromInt(250), Currency: "EUR", BillingCountry: "DE"}, false},
		{"AfterpayBelgium", paymentmethod.Afterpay, Facts{Amount: decimal.NewFromInt(10), Currency: "EUR", BillingCountry: "BE"}, true},
		{"AfterpayFrance", paymentmethod.Afterpay, Facts{Amount: decimal.NewFromInt(10), Currency: "EUR", BillingCountry: "FR"}, false},
		{"DirectDebitGuest", paymentmethod.DirectDebit, Facts{Guest: true}, false},
		{"DirectDebitCustomer", paymentmethod.DirectDebit, Facts{}, true},
		{"VisaUnrestricted", paymentmethod.Visa, Facts{Currency: "USD"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Allows(tt.gateway, tt.facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailabilityEnforcer_EvaluationErrors(t *testing.T) {
	t.Run("ParameterNotFound", func(t *testing.T) {
		e, err := NewAvailabilityEnforcer([]AvailabilityRule{
			{ID: "missing_param_rule", Gateway: paymentmethod.Visa, Expression: "undefinedParam > 10"},
		})
		require.NoError(t, err)
		_, err = e.Allows(paymentmethod.Visa, Facts{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No parameter 'undefinedParam' found.")
	})

	t.Run("NotBoolean", func(t *testing.T) {
		e, err := NewAvailabilityEnforcer([]AvailabilityRule{
			{ID: "amount_only", Gateway: paymentmethod.Visa, Expression: "amount + 1"},
		})
		require.NoError(t, err)
		_, err = e.Allows(paymentmethod.Visa, Facts{Amount: decimal.NewFromInt(1)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "did not evaluate to a boolean")
	})
}
