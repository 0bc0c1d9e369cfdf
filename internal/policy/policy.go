// Package policy decides whether a payment method may be offered for a checkout,
// using per-gateway govaluate expressions over the checkout facts.
package policy

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"

	"github.com/yourorg/multisafepay-gateway/internal/paymentmethod"
)

// AvailabilityRule restricts one gateway. All rules of a gateway must hold.
type AvailabilityRule struct {
	ID         string
	Gateway    paymentmethod.Gateway
	Expression string // e.g., "billingCountry == 'NL' && amount >= 100"
}

// Facts are the checkout values rules can refer to: amount, currency,
// billingCountry and guest.
type Facts struct {
	Amount         decimal.Decimal
	Currency       string
	BillingCountry string
	Guest          bool
}

func (f Facts) parameters() map[string]interface{} {
	return map[string]interface{}{
		"amount":         f.Amount.InexactFloat64(),
		"currency":       strings.ToUpper(f.Currency),
		"billingCountry": strings.ToUpper(f.BillingCountry),
		"guest":          f.Guest,
	}
}

type compiledRule struct {
	AvailabilityRule
	expression *govaluate.EvaluableExpression
}

// AvailabilityEnforcer evaluates availability rules.
type AvailabilityEnforcer struct {
	rules map[paymentmethod.Gateway][]compiledRule
}

// NewAvailabilityEnforcer compiles the rules.
func NewAvailabilityEnforcer(rules []AvailabilityRule) (*AvailabilityEnforcer, error) {
	e := &AvailabilityEnforcer{rules: make(map[paymentmethod.Gateway][]compiledRule)}
	for _, rule := range rules {
		if strings.TrimSpace(rule.Expression) == "" {
			return nil, fmt.Errorf("availability rule ID '%s' has an empty expression", rule.ID)
		}
		expr, err := govaluate.NewEvaluableExpression(rule.Expression)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule ID '%s' (expression: '%s'): %w", rule.ID, rule.Expression, err)
		}
		e.rules[rule.Gateway] = append(e.rules[rule.Gateway], compiledRule{AvailabilityRule: rule, expression: expr})
	}
	return e, nil
}

// Allows reports whether the gateway may be offered. Gateways without rules are
// always allowed.
func (e *AvailabilityEnforcer) Allows(gateway paymentmethod.Gateway, facts Facts) (bool, error) {
	rules := e.rules[gateway]
	if len(rules) == 0 {
		return true, nil
	}
	params := facts.parameters()
	for _, rule := range rules {
		result, err := rule.expression.Evaluate(params)
		if err != nil {
			return false, fmt.Errorf("error evaluating rule ID '%s': %w", rule.ID, err)
		}
		allowed, ok := result.(bool)
		if !ok {
			return false, fmt.Errorf("rule ID '%s' did not evaluate to a boolean (got %T)", rule.ID, result)
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

// DefaultRules are the availability limits MultiSafepay publishes for its
// pay-later and financing methods.
func DefaultRules() []AvailabilityRule {
	return []AvailabilityRule{
		{ID: "in3_market", Gateway: paymentmethod.In3, Expression: "billingCountry == 'NL' && currency == 'EUR'"},
		{ID: "in3_amount", Gateway: paymentmethod.In3, Expression: "amount >= 100 && amount <= 3000"},
		{ID: "afterpay_market", Gateway: paymentmethod.Afterpay, Expression: "billingCountry IN ('NL', 'BE', 'DE', 'AT') && currency == 'EUR'"},
		{ID: "payafterdelivery_market", Gateway: paymentmethod.PayAfterDelivery, Expression: "billingCountry == 'NL' && currency == 'EUR'"},
		{ID: "santander_amount", Gateway: paymentmethod.Santander, Expression: "billingCountry == 'NL' && amount >= 250 && amount <= 8000"},
		{ID: "klarna_market", Gateway: paymentmethod.Klarna, Expression: "currency == 'EUR' && billingCountry IN ('NL', 'DE', 'AT')"},
		{ID: "directdebit_registered", Gateway: paymentmethod.DirectDebit, Expression: "!guest"},
	}
}
