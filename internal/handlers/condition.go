package handlers

import (
	"context"
	"strconv"

	"github.com/eleven-am/cascade/internal/domain"
	"github.com/eleven-am/cascade/internal/ports"
)

// Condition compares a context variable against a threshold and selects the
// "success" or "failure" output handle. Only edges guarded by the selected
// handle fire.
type Condition struct{}

const (
	HandleSuccess = "success"
	HandleFailure = "failure"
)

func (h *Condition) Type() domain.NodeType {
	return domain.NodeTypeCondition
}

func (h *Condition) Execute(ctx context.Context, req *ports.HandlerRequest) (*ports.HandlerOutcome, error) {
	cfg := req.Node.Config

	variable := stringField(cfg, "variable")
	operator := stringField(cfg, "operator")
	threshold, hasThreshold := floatField(cfg, "threshold")
	if variable == "" || operator == "" || !hasThreshold {
		return nil, domain.NewConfigurationError("condition requires variable, operator, and threshold", map[string]interface{}{"node_id": req.Node.ID})
	}

	value, ok := lookupNumber(req.Context, variable)
	if !ok {
		return nil, domain.NewConfigurationError("condition variable is missing or not numeric", map[string]interface{}{"variable": variable})
	}

	var pass bool
	switch operator {
	case ">":
		pass = value > threshold
	case ">=":
		pass = value >= threshold
	case "<":
		pass = value < threshold
	case "<=":
		pass = value <= threshold
	case "==":
		pass = value == threshold
	case "!=":
		pass = value != threshold
	default:
		return nil, domain.NewUnsupportedError("unsupported condition operator", map[string]interface{}{"operator": operator})
	}

	handle := HandleFailure
	if pass {
		handle = HandleSuccess
	}

	return &ports.HandlerOutcome{
		ContextUpdate: map[string]interface{}{
			req.Node.ID: map[string]interface{}{"passed": pass},
		},
		Result: domain.NodeResult{Status: domain.NodeResultSuccess, Data: pass},
		Handle: handle,
	}, nil
}

// lookupNumber digs the variable out of the context, descending one level
// into nested maps via dotted names (e.g. "queryResult.record_count").
func lookupNumber(context map[string]interface{}, name string) (float64, bool) {
	var value interface{} = context[name]

	if value == nil {
		for i := 0; i < len(name); i++ {
			if name[i] == '.' {
				if outer, ok := context[name[:i]].(map[string]interface{}); ok {
					value = outer[name[i+1:]]
				}
				break
			}
		}
	}

	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
