package tool

import (
	"context"
	"errors"
	"math"
	"testing"

	contractx "github.com/finsightai/finsight/agent/contract"
)

func TestCalculatorPERatio(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	out, err := calc.Invoke(context.Background(), map[string]any{
		"formula": "pe_ratio",
		"price":   150.0,
		"eps":     8.0,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	result, ok := out.(FormulaOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if result.Result != 18.75 {
		t.Fatalf("pe_ratio = %v, want 18.75", result.Result)
	}
	if result.Inputs["price"] != 150 || result.Inputs["eps"] != 8 {
		t.Fatalf("unexpected inputs: %v", result.Inputs)
	}
}

func TestCalculatorZeroDenominator(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	_, err := calc.Invoke(context.Background(), map[string]any{
		"formula": "pe_ratio",
		"price":   150.0,
		"eps":     0.0,
	})
	if err == nil {
		t.Fatal("expected error for zero eps")
	}

	var te *contractx.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected ToolError, got %T", err)
	}
	if te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("kind = %s, want %s", te.Kind, contractx.ToolErrInvalidArgument)
	}
}

func TestCalculatorROE(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	out, err := calc.Invoke(context.Background(), map[string]any{
		"formula":    "roe",
		"net_income": 25.0,
		"equity":     200.0,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	result := out.(FormulaOutput)
	if result.Result != 12.5 {
		t.Fatalf("roe = %v, want 12.5", result.Result)
	}
	if result.Unit != "%" {
		t.Fatalf("unit = %q, want %%", result.Unit)
	}
}

func TestCalculatorPercentageChange(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	out, err := calc.Invoke(context.Background(), map[string]any{
		"formula":   "percentage_change",
		"old_value": 100.0,
		"new_value": 125.0,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result := out.(FormulaOutput); result.Result != 25 {
		t.Fatalf("percentage_change = %v, want 25", result.Result)
	}
}

func TestCalculatorUnknownFormula(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	_, err := calc.Invoke(context.Background(), map[string]any{"formula": "sharpe"})
	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestCalculatorMissingArguments(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	_, err := calc.Invoke(context.Background(), map[string]any{})
	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestCalculatorStringNumbers(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	out, err := calc.Invoke(context.Background(), map[string]any{
		"formula": "pe_ratio",
		"price":   "150",
		"eps":     "8",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if result := out.(FormulaOutput); result.Result != 18.75 {
		t.Fatalf("pe_ratio = %v, want 18.75", result.Result)
	}
}

func TestCalculatorNonFiniteArgument(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	_, err := calc.Invoke(context.Background(), map[string]any{
		"formula": "pe_ratio",
		"price":   math.Inf(1),
		"eps":     8.0,
	})
	var te *contractx.ToolError
	if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
		t.Fatalf("expected invalid_argument ToolError, got %v", err)
	}
}

func TestCalculatorExpression(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	cases := []struct {
		expression string
		want       float64
	}{
		{"2 + 3 * 4", 14},
		{"(150 - 120) / 120 * 100", 25},
		{"2 ^ 10", 1024},
		{"10 % 3", 1},
		{"-5 + 8", 3},
	}

	for _, tc := range cases {
		out, err := calc.Invoke(context.Background(), map[string]any{"expression": tc.expression})
		if err != nil {
			t.Fatalf("Invoke(%q) error = %v", tc.expression, err)
		}
		result := out.(ExpressionOutput)
		if result.Result != tc.want {
			t.Fatalf("eval(%q) = %v, want %v", tc.expression, result.Result, tc.want)
		}
	}
}

func TestCalculatorExpressionRejectsInvalid(t *testing.T) {
	t.Parallel()

	calc := NewCalculator()
	for _, expression := range []string{
		"1 / 0",
		"2 +",
		"import os",
		"(1 + 2",
	} {
		_, err := calc.Invoke(context.Background(), map[string]any{"expression": expression})
		var te *contractx.ToolError
		if !errors.As(err, &te) || te.Kind != contractx.ToolErrInvalidArgument {
			t.Fatalf("eval(%q): expected invalid_argument ToolError, got %v", expression, err)
		}
	}
}
