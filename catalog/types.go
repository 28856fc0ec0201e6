package catalog

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/Laisky/transport-order-mcp/order"
)

// FieldDef describes one input field a caller may supply.
type FieldDef struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description" json:"description"`
	Example     string  `yaml:"example" json:"example,omitempty"`
	Default     *string `yaml:"default" json:"default,omitempty"`
	Required    bool    `yaml:"required" json:"required,omitempty"`
}

// HasDefault reports whether the generator fills the field when it is absent.
func (f FieldDef) HasDefault() bool { return f.Default != nil }

// Prompt is the message shown when a required field is missing.
func (f FieldDef) Prompt() string {
	return fmt.Sprintf("Please provide %s (%s) - Example: %s", f.Description, f.Name, f.Example)
}

// Suggestion is the hint shown for an optional field the caller left out.
func (f FieldDef) Suggestion() string {
	return fmt.Sprintf("Optional: %s (%s) - Example: %s", f.Description, f.Name, f.Example)
}

// ParameterLevels splits complex road qualifiers between order and transport level.
type ParameterLevels struct {
	Order     []string `yaml:"order" json:"order,omitempty"`
	Transport []string `yaml:"transport" json:"transport,omitempty"`
}

// TransportParameters holds the transport level definitions of one type.
type TransportParameters struct {
	Description        string          `yaml:"description" json:"description"`
	SupportsPricing    bool            `yaml:"supports_pricing" json:"supports_pricing"`
	SupportsOrderItems bool            `yaml:"supports_order_items" json:"supports_order_items"`
	SupportsVehicle    bool            `yaml:"supports_vehicle" json:"supports_vehicle"`
	RequiredFields     []FieldDef      `yaml:"required_fields" json:"required_fields"`
	OptionalFields     []FieldDef      `yaml:"optional_fields" json:"optional_fields"`
	OceanParameters    []FieldDef      `yaml:"ocean_parameters" json:"ocean_parameters,omitempty"`
	ParameterLevels    ParameterLevels `yaml:"parameter_levels" json:"parameter_levels,omitzero"`
}

// Field looks up a required or optional field by name.
func (p *TransportParameters) Field(name string) (FieldDef, bool) {
	for _, list := range [][]FieldDef{p.RequiredFields, p.OptionalFields, p.OceanParameters} {
		for _, f := range list {
			if f.Name == name {
				return f, true
			}
		}
	}
	return FieldDef{}, false
}

// LevelOf returns "order" or "transport" for a complex road qualifier, or ""
// when the qualifier is not listed.
func (p *TransportParameters) LevelOf(qualifier string) string {
	switch {
	case slices.Contains(p.ParameterLevels.Order, qualifier):
		return "order"
	case slices.Contains(p.ParameterLevels.Transport, qualifier):
		return "transport"
	default:
		return ""
	}
}

// OrderParameters holds the order_details level definitions of one type.
type OrderParameters struct {
	RequiredFields []FieldDef `yaml:"required_fields" json:"required_fields,omitempty"`
	OptionalFields []FieldDef `yaml:"optional_fields" json:"optional_fields"`
}

// ItemParameters holds the order item definitions of one type.
type ItemParameters struct {
	RequiredFields        []FieldDef `yaml:"required_fields" json:"required_fields"`
	OptionalFields        []FieldDef `yaml:"optional_fields" json:"optional_fields"`
	RecommendedQuantities []string   `yaml:"recommended_quantities" json:"recommended_quantities,omitempty"`
	RecommendedParameters []FieldDef `yaml:"recommended_parameters" json:"recommended_parameters,omitempty"`
	KnownParameters       []FieldDef `yaml:"known_parameters" json:"known_parameters,omitempty"`
}

// StopIDs are the ids forced onto generated stops.
type StopIDs struct {
	Loading   string `yaml:"loading" json:"loading"`
	Unloading string `yaml:"unloading" json:"unloading"`
}

// FixedParameters are values the generator sets regardless of input.
type FixedParameters struct {
	Values     map[string]string `yaml:"values" json:"values,omitempty"`
	Parameters map[string]string `yaml:"parameters" json:"parameters,omitempty"`
	StopIDs    StopIDs           `yaml:"stop_ids" json:"stop_ids,omitzero"`
	Units      map[string]string `yaml:"units" json:"units,omitempty"`
}

// RuleCondition selects the inputs a BusinessRule applies to.
type RuleCondition struct {
	FieldPatterns []string `yaml:"field_patterns" json:"field_patterns,omitempty"`
	Field         string   `yaml:"field" json:"field,omitempty"`
	Operator      string   `yaml:"operator" json:"operator,omitempty"`
}

// RuleAction is what a BusinessRule changes.
type RuleAction struct {
	TargetField string `yaml:"target_field" json:"target_field,omitempty"`
	Field       string `yaml:"field" json:"field,omitempty"`
	Value       string `yaml:"value" json:"value,omitempty"`
}

// BusinessRule is an input transformation applied before generation.
type BusinessRule struct {
	ID          string        `yaml:"id" json:"id"`
	Description string        `yaml:"description" json:"description"`
	Priority    int           `yaml:"priority" json:"priority"`
	AppliesTo   []string      `yaml:"applies_to" json:"applies_to"`
	Condition   RuleCondition `yaml:"condition" json:"condition"`
	Action      RuleAction    `yaml:"action" json:"action"`
}

// Applies reports whether the rule is enabled for t.
func (r BusinessRule) Applies(t order.TransportType) bool {
	return slices.Contains(r.AppliesTo, string(t))
}

// FieldRule is a structural constraint on one transport_order child.
type FieldRule struct {
	Path          string   `yaml:"path" json:"path"`
	Type          string   `yaml:"type" json:"type"`
	MinLength     *int     `yaml:"min_length" json:"min_length,omitempty"`
	MaxLength     *int     `yaml:"max_length" json:"max_length,omitempty"`
	Pattern       string   `yaml:"pattern" json:"pattern,omitempty"`
	Message       string   `yaml:"message" json:"message,omitempty"`
	AllowedValues []string `yaml:"allowed_values" json:"allowed_values,omitempty"`

	re *regexp.Regexp
}

// Matches reports whether s satisfies the rule pattern. Rules without a
// pattern match everything.
func (r FieldRule) Matches(s string) bool {
	if r.re == nil {
		return true
	}
	return r.re.MatchString(s)
}

// ParameterRestrictions limit the qualifiers a document may carry.
type ParameterRestrictions struct {
	ForbiddenQualifiers      []string          `yaml:"forbidden_qualifiers" json:"forbidden_qualifiers,omitempty"`
	MandatoryFixedParameters map[string]string `yaml:"mandatory_fixed_parameters" json:"mandatory_fixed_parameters,omitempty"`
}

// OrderItemRules are the soft checks run on order items.
type OrderItemRules struct {
	RequiredFields        []string `yaml:"required_fields" json:"required_fields"`
	RecommendedQuantities []string `yaml:"recommended_quantities" json:"recommended_quantities,omitempty"`
	RecommendedParameters []string `yaml:"recommended_parameters" json:"recommended_parameters,omitempty"`
}

// PricingRules constrain the prices block.
type PricingRules struct {
	ReferencePositive bool `yaml:"reference_positive" json:"reference_positive"`
}

// WeightRules constrain the weight block.
type WeightRules struct {
	NonNegative bool `yaml:"non_negative" json:"non_negative"`
}

// TypeRules are the business rules of one transport type.
type TypeRules struct {
	RequiredElements        []string              `yaml:"required_elements" json:"required_elements"`
	MinimumStops            int                   `yaml:"minimum_stops" json:"minimum_stops"`
	MaximumStops            int                   `yaml:"maximum_stops" json:"maximum_stops"`
	RecommendedMaximumStops int                   `yaml:"recommended_maximum_stops" json:"recommended_maximum_stops,omitempty"`
	AllowsOrderItems        bool                  `yaml:"allows_order_items" json:"allows_order_items"`
	FixedValues             map[string]string     `yaml:"fixed_values" json:"fixed_values,omitempty"`
	RequiredParameters      []string              `yaml:"required_parameters" json:"required_parameters,omitempty"`
	ParameterRestrictions   ParameterRestrictions `yaml:"parameter_restrictions" json:"parameter_restrictions,omitzero"`
	CarrierCreditorPattern  string                `yaml:"carrier_creditor_pattern" json:"carrier_creditor_pattern,omitempty"`
	CarrierCreditorMessage  string                `yaml:"carrier_creditor_message" json:"carrier_creditor_message,omitempty"`
	OrderItemRules          *OrderItemRules       `yaml:"order_item_rules" json:"order_item_rules,omitempty"`
	Pricing                 PricingRules          `yaml:"pricing" json:"pricing,omitzero"`
	Weight                  WeightRules           `yaml:"weight" json:"weight,omitzero"`
	StopIDs                 []string              `yaml:"stop_ids" json:"stop_ids,omitempty"`

	creditorRe *regexp.Regexp
}

// CreditorMatches reports whether s satisfies the carrier creditor pattern.
func (r *TypeRules) CreditorMatches(s string) bool {
	if r.creditorRe == nil {
		return true
	}
	return r.creditorRe.MatchString(s)
}

// Forbids reports whether the qualifier is forbidden for this type.
func (r *TypeRules) Forbids(qualifier string) bool {
	return slices.Contains(r.ParameterRestrictions.ForbiddenQualifiers, qualifier)
}

type transportFile struct {
	Types         map[string]TransportParameters `yaml:"types"`
	BusinessRules []BusinessRule                 `yaml:"business_rules"`
}

type orderFile struct {
	Types map[string]OrderParameters `yaml:"types"`
}

type itemFile struct {
	Types map[string]ItemParameters `yaml:"types"`
}

type fixedFile struct {
	Types map[string]FixedParameters `yaml:"types"`
}

type fieldRulesFile struct {
	Fields []FieldRule `yaml:"fields"`
}

type businessRulesFile struct {
	Types map[string]TypeRules `yaml:"types"`
}
