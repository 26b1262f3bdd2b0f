// Package policy classifies end-of-day till deviations.
//
// When a session is closed with an operator-counted total, the difference
// against the expected drawer total is classified as normal, warning or
// critical. The thresholds are CEL expressions so each salon can tune them
// without a rebuild.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"

	"salonpos/internal/core/types"
)

// DeviationClass is the outcome of a till count check.
type DeviationClass string

const (
	DeviationNormal   DeviationClass = "normal"
	DeviationWarning  DeviationClass = "warning"
	DeviationCritical DeviationClass = "critical"
)

// Default threshold expressions. Amounts are in drawer currency units.
const (
	DefaultWarningExpr  = "deviation_abs > 5.0 || deviation_pct > 1.0"
	DefaultCriticalExpr = "deviation_abs > 50.0 || deviation_pct > 5.0"
)

// DeviationClassifier evaluates till deviations against compiled CEL rules.
// Critical is checked first; a deviation matching both rules is critical.
type DeviationClassifier struct {
	warning  cel.Program
	critical cel.Program
}

// NewDeviationClassifier compiles the warning and critical expressions.
// Each expression must evaluate to bool over the variables:
// deviation, deviation_abs, deviation_pct, expected, counted.
func NewDeviationClassifier(warningExpr, criticalExpr string) (*DeviationClassifier, error) {
	env, err := cel.NewEnv(
		cel.Variable("deviation", cel.DoubleType),
		cel.Variable("deviation_abs", cel.DoubleType),
		cel.Variable("deviation_pct", cel.DoubleType),
		cel.Variable("expected", cel.DoubleType),
		cel.Variable("counted", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL env: %w", err)
	}

	warning, err := compileBool(env, warningExpr)
	if err != nil {
		return nil, fmt.Errorf("warning rule: %w", err)
	}
	critical, err := compileBool(env, criticalExpr)
	if err != nil {
		return nil, fmt.Errorf("critical rule: %w", err)
	}

	return &DeviationClassifier{warning: warning, critical: critical}, nil
}

func compileBool(env *cel.Env, expr string) (cel.Program, error) {
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	return env.Program(ast)
}

// Classify returns the class for a counted total against the expected total.
func (c *DeviationClassifier) Classify(expected, counted types.Money) (DeviationClass, error) {
	deviation := counted.Sub(expected)

	pct := decimal.Zero
	if !expected.IsZero() {
		pct = deviation.Abs().Div(expected.Abs()).Mul(decimal.NewFromInt(100))
	}

	vars := map[string]any{
		"deviation":     deviation.InexactFloat64(),
		"deviation_abs": deviation.Abs().InexactFloat64(),
		"deviation_pct": pct.InexactFloat64(),
		"expected":      expected.InexactFloat64(),
		"counted":       counted.InexactFloat64(),
	}

	match, err := c.eval(c.critical, vars)
	if err != nil {
		return "", err
	}
	if match {
		return DeviationCritical, nil
	}

	match, err = c.eval(c.warning, vars)
	if err != nil {
		return "", err
	}
	if match {
		return DeviationWarning, nil
	}

	return DeviationNormal, nil
}

func (c *DeviationClassifier) eval(prg cel.Program, vars map[string]any) (bool, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %T, want bool", out.Value())
	}
	return b, nil
}
