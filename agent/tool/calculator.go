package tool

import (
	"context"
	"math"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/finsightai/finsight/agent/contract"
)

// Calculator evaluates a fixed set of named financial formulas from explicit
// numeric arguments, or a free-form arithmetic expression. Out-of-domain
// inputs (zero denominators, non-finite values) fail with invalid_argument
// instead of propagating an arithmetic fault.
type Calculator struct{}

var _ Tool = (*Calculator)(nil)

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) ID() string { return ToolCalculator }

func (c *Calculator) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolCalculator,
		Desc: "Calculate a named financial ratio (pe_ratio, roe, current_ratio, debt_to_equity, profit_margin, percentage_change) or evaluate an arithmetic expression.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"formula":    {Type: schema.String, Desc: "Named formula to compute", Required: false},
			"expression": {Type: schema.String, Desc: "Arithmetic expression to evaluate", Required: false},
		}),
	}
}

// FormulaOutput is the result of one named formula computation.
type FormulaOutput struct {
	Formula string             `json:"formula"`
	Inputs  map[string]float64 `json:"inputs"`
	Result  float64            `json:"result"`
	Unit    string             `json:"unit,omitempty"`
}

// ExpressionOutput is the result of a free-form expression evaluation.
type ExpressionOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

func (c *Calculator) Invoke(ctx context.Context, args map[string]any) (any, error) {
	if formula := stringArg(args, "formula"); formula != "" {
		return evaluateFormula(formula, args)
	}
	if expression := stringArg(args, "expression"); expression != "" {
		return evaluateExpressionArg(expression)
	}
	return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "either formula or expression is required")
}

func evaluateFormula(formula string, args map[string]any) (any, error) {
	switch strings.ToLower(formula) {
	case "pe_ratio":
		return ratioFormula("pe_ratio", args, "price", "eps", "")
	case "roe":
		return percentFormula("roe", args, "net_income", "equity")
	case "current_ratio":
		return ratioFormula("current_ratio", args, "current_assets", "current_liabilities", "")
	case "debt_to_equity":
		return ratioFormula("debt_to_equity", args, "total_debt", "equity", "")
	case "profit_margin":
		return percentFormula("profit_margin", args, "net_income", "revenue")
	case "percentage_change":
		return percentageChange(args)
	default:
		return nil, contractx.NewToolError(contractx.ToolErrInvalidArgument, "unsupported formula %q", formula)
	}
}

func ratioFormula(name string, args map[string]any, numKey, denKey, unit string) (FormulaOutput, error) {
	numerator, err := floatArg(args, numKey)
	if err != nil {
		return FormulaOutput{}, err
	}
	denominator, err := floatArg(args, denKey)
	if err != nil {
		return FormulaOutput{}, err
	}
	if denominator == 0 {
		return FormulaOutput{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%s must be non-zero", denKey)
	}

	return FormulaOutput{
		Formula: name,
		Inputs:  map[string]float64{numKey: numerator, denKey: denominator},
		Result:  numerator / denominator,
		Unit:    unit,
	}, nil
}

func percentFormula(name string, args map[string]any, numKey, denKey string) (FormulaOutput, error) {
	out, err := ratioFormula(name, args, numKey, denKey, "%")
	if err != nil {
		return FormulaOutput{}, err
	}
	out.Result *= 100
	return out, nil
}

func percentageChange(args map[string]any) (FormulaOutput, error) {
	oldValue, err := floatArg(args, "old_value")
	if err != nil {
		return FormulaOutput{}, err
	}
	newValue, err := floatArg(args, "new_value")
	if err != nil {
		return FormulaOutput{}, err
	}
	if oldValue == 0 {
		return FormulaOutput{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "old_value must be non-zero")
	}

	return FormulaOutput{
		Formula: "percentage_change",
		Inputs:  map[string]float64{"old_value": oldValue, "new_value": newValue},
		Result:  (newValue - oldValue) / oldValue * 100,
		Unit:    "%",
	}, nil
}

func evaluateExpressionArg(expression string) (ExpressionOutput, error) {
	expression = strings.TrimSpace(expression)
	if err := validateExpression(expression); err != nil {
		return ExpressionOutput{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%v", err)
	}

	result, err := evaluateExpression(expression)
	if err != nil {
		return ExpressionOutput{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "%v", err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return ExpressionOutput{}, contractx.NewToolError(contractx.ToolErrInvalidArgument, "expression result is not finite")
	}

	return ExpressionOutput{Expression: expression, Result: result}, nil
}
