package generator

import (
	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

// Rule operators understood by applyRule.
const (
	operatorHasValue = "has_value"
	operatorMissing  = "missing"
)

// applyRules runs the catalog business rules of b.kind over raw, lowest
// priority first.
func (b *base) applyRules(raw map[string]any) error {
	rules, err := b.catalog.RulesFor(b.kind)
	if err != nil {
		return err
	}
	for _, r := range rules {
		applyRule(r, raw)
	}
	return nil
}

// applyRule handles the two rule shapes found in the catalog:
//   - field mapping: condition.field_patterns + action.target_field copies the
//     first supplied alias into the target unless the target is already set.
//   - conditional value: condition.field + condition.operator sets
//     action.field to action.value.
func applyRule(r catalog.BusinessRule, raw map[string]any) {
	if target := r.Action.TargetField; target != "" && len(r.Condition.FieldPatterns) > 0 {
		if !order.IsBlank(raw[target]) {
			return
		}
		for _, alias := range r.Condition.FieldPatterns {
			if v, ok := raw[alias]; ok && !order.IsBlank(v) {
				raw[target] = v
				return
			}
		}
		return
	}

	if r.Condition.Field == "" || r.Action.Field == "" {
		return
	}
	present := !order.IsBlank(raw[r.Condition.Field])
	switch r.Condition.Operator {
	case operatorHasValue:
		if present {
			raw[r.Action.Field] = r.Action.Value
		}
	case operatorMissing:
		if !present {
			raw[r.Action.Field] = r.Action.Value
		}
	}
}
