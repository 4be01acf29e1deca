// Package approval decides whether a supplier payment must pass through
// the pending_approval workflow state before it can be approved.
//
// Hospitals configure rules as CEL expressions over payment attributes,
// e.g. `amount >= 10000.0 || cheque > 0.0`. A payment that matches any
// rule requires approval.
package approval

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"rxledger/internal/core/apperror"
)

// PaymentAttributes is the rule evaluation input.
type PaymentAttributes struct {
	Amount     float64
	Cash       float64
	Cheque     float64
	Bank       float64
	UPI        float64
	SupplierID string
	BranchID   string
	Backdated  bool
}

// Rule is one compiled approval rule.
type Rule struct {
	Name       string
	Expression string

	program cel.Program
}

// Engine compiles and evaluates approval rules.
type Engine struct {
	env *cel.Env
}

// NewEngine creates a CEL environment with the payment attribute schema.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("cash", cel.DoubleType),
		cel.Variable("cheque", cel.DoubleType),
		cel.Variable("bank", cel.DoubleType),
		cel.Variable("upi", cel.DoubleType),
		cel.Variable("supplier_id", cel.StringType),
		cel.Variable("branch_id", cel.StringType),
		cel.Variable("backdated", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Engine{env: env}, nil
}

// Compile validates and compiles one rule expression.
// A rule must evaluate to bool.
func (e *Engine) Compile(name, expression string) (Rule, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return Rule{}, apperror.NewValidation("invalid approval rule expression").
			WithDetail("rule", name).
			WithDetail("error", issues.Err().Error())
	}

	if ast.OutputType() != cel.BoolType {
		return Rule{}, apperror.NewValidation("approval rule must evaluate to a boolean").
			WithDetail("rule", name).
			WithDetail("output_type", ast.OutputType().String())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return Rule{}, fmt.Errorf("build CEL program: %w", err)
	}

	return Rule{
		Name:       name,
		Expression: expression,
		program:    program,
	}, nil
}

// Matches evaluates the rule against a payment.
func (r Rule) Matches(attrs PaymentAttributes) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"amount":      attrs.Amount,
		"cash":        attrs.Cash,
		"cheque":      attrs.Cheque,
		"bank":        attrs.Bank,
		"upi":         attrs.UPI,
		"supplier_id": attrs.SupplierID,
		"branch_id":   attrs.BranchID,
		"backdated":   attrs.Backdated,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule %q: %w", r.Name, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q returned non-boolean", r.Name)
	}
	return matched, nil
}

// Policy is the ordered rule set of one hospital.
type Policy struct {
	Rules []Rule
}

// RequiresApproval reports whether any rule matches the payment.
// The first matching rule name is returned for the audit trail.
func (p Policy) RequiresApproval(attrs PaymentAttributes) (bool, string, error) {
	for _, rule := range p.Rules {
		matched, err := rule.Matches(attrs)
		if err != nil {
			return false, "", err
		}
		if matched {
			return true, rule.Name, nil
		}
	}
	return false, "", nil
}

// DefaultPolicy requires approval for payments at or above the threshold
// and for any cheque payment.
func DefaultPolicy(engine *Engine, threshold float64) (Policy, error) {
	amountRule, err := engine.Compile("large_amount", fmt.Sprintf("amount >= %f", threshold))
	if err != nil {
		return Policy{}, err
	}
	chequeRule, err := engine.Compile("cheque_payment", "cheque > 0.0")
	if err != nil {
		return Policy{}, err
	}
	return Policy{Rules: []Rule{amountRule, chequeRule}}, nil
}
