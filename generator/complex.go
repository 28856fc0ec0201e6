package generator

import (
	"fmt"
	"slices"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

type complexRoad struct {
	*base
}

// NewComplexRoad returns the generator for complex road freight.
func NewComplexRoad(c *catalog.Catalog) Generator {
	g := &complexRoad{}
	g.base = &base{kind: order.ComplexRoad, catalog: c, hooks: g}
	return g
}

func (g *complexRoad) prepare(map[string]any) error { return nil }

func (g *complexRoad) check(in *order.Input, chk *InputCheck) {
	rules, err := g.catalog.TypeRules(g.kind)
	if err != nil {
		chk.errorf(err.Error())
		return
	}

	switch n := len(in.Stops); {
	case n == 0:
	case n < rules.MinimumStops:
		chk.errorf(fmt.Sprintf("Complex road freight requires at least %d stops", rules.MinimumStops))
	case rules.MaximumStops > 0 && n > rules.MaximumStops:
		chk.errorf(fmt.Sprintf("Complex road freight supports maximum %d stops", rules.MaximumStops))
	}

	carrier := in.CarrierCreditorNumber.String()
	if carrier != "" && !rules.CreditorMatches(carrier) {
		chk.errorf(orDefault(rules.CarrierCreditorMessage, "Carrier creditor number has an invalid format"))
	}

	for _, p := range in.Parameters {
		if rules.Forbids(p.Qualifier.String()) {
			chk.errorf(fmt.Sprintf("Ocean parameter '%s' not allowed in complex road freight", p.Qualifier))
		}
	}
	if p, ok := in.Parameter(order.QualifierPreassignedCCN); ok && p.Value.String() != carrier {
		chk.warn("Carrier creditor number inconsistency between transport and order levels")
	}

	if in.WeightValue != nil && in.WeightValue.Float64() < 0 {
		chk.errorf("Weight value cannot be negative")
	}
	if in.VolumeValue != nil && in.VolumeValue.Float64() < 0 {
		chk.errorf("Volume value cannot be negative")
	}

	if rules.OrderItemRules == nil {
		return
	}
	for i, it := range in.OrderItems {
		if len(it.Quantities) == 0 {
			chk.warn(fmt.Sprintf("Order item %d: No quantities specified", i+1))
		}
		for _, want := range rules.OrderItemRules.RecommendedQuantities {
			if len(it.Quantities) > 0 && !slices.ContainsFunc(it.Quantities, func(q order.Quantity) bool {
				return q.Qualifier.String() == want
			}) {
				chk.warn(fmt.Sprintf("Order item %d: Recommended quantity '%s' is missing", i+1, want))
			}
		}
		for _, want := range rules.OrderItemRules.RecommendedParameters {
			if _, ok := it.Parameter(want); !ok {
				chk.warn(fmt.Sprintf("Order item %d: Recommended parameter '%s' is missing", i+1, want))
			}
		}
	}
}

func (g *complexRoad) fill(in *order.Input, doc *Document, chk *InputCheck) error {
	params, err := g.catalog.TransportParameters(g.kind)
	if err != nil {
		return err
	}

	doc.Weight = measureOrDefault(in.WeightValue, g.defaultValue("weight_value"))
	doc.Volume = measureOrDefault(in.VolumeValue, g.defaultValue("volume_value"))
	doc.Order.Incoterms = in.Incoterms.String()
	doc.Order.Items = itemViews(in.OrderItems)

	for _, p := range parameterViews(in.Parameters) {
		switch params.LevelOf(p.Qualifier) {
		case "order":
			doc.Order.Parameters = append(doc.Order.Parameters, p)
		case "transport":
			doc.Parameters = append(doc.Parameters, p)
		default:
			chk.warn(fmt.Sprintf("Parameter '%s' has no known level, placed at transport level", p.Qualifier))
			doc.Parameters = append(doc.Parameters, p)
		}
	}
	return nil
}

func measureOrDefault(d *order.Decimal, def string) *Measure {
	if d != nil {
		return measure(d, "")
	}
	if def == "" {
		return nil
	}
	return &Measure{Value: def}
}

func (g *complexRoad) metadata(_ *order.Input, doc *Document) map[string]any {
	return map[string]any{
		"has_order_items":  len(doc.Order.Items) > 0,
		"order_item_count": len(doc.Order.Items),
		"stop_count":       len(doc.Stops),
		"parameter_count":  len(doc.Order.Parameters) + len(doc.Parameters),
	}
}

func (g *complexRoad) example() map[string]any {
	return map[string]any{
		"number":                  "0081310198",
		"status":                  "D",
		"scheduling_unit":         "BCO",
		"carrier_creditor_number": "0000203512",
		"weight_value":            0.0,
		"volume_value":            0.0,
		"incoterms":               "DAP",
		"loading_stop_ids":        []any{"BCOT"},
		"unloading_stop_ids":      []any{"0000017649"},
		"stops": []any{
			map[string]any{
				"id":    "BCOT",
				"index": 0,
				"location": map[string]any{
					"company_name": "Bayport CO Truck Terminal",
					"street":       "5761 Underwood, BCO",
					"zip":          "77507",
					"city":         "Pasadena",
					"state":        "TX",
					"country":      "US",
				},
				"date_time_period": map[string]any{
					"start": "2025-09-25T00:00:00Z",
					"end":   "2025-09-26T23:59:00Z",
				},
			},
			map[string]any{
				"id":    "0000017649",
				"index": 1,
				"location": map[string]any{
					"company_name": "THE SHERWIN WILLIAMS COMPANY",
					"street":       "701 SOUTH SHILOH RD DOCK 42",
					"zip":          "75042",
					"city":         "GARLAND",
					"state":        "TX",
					"country":      "US",
					"comment":      "C/O VALSPAR PACKAGING",
				},
				"date_time_period": map[string]any{
					"start": "2025-09-26T09:00:00Z",
					"end":   "2025-09-26T09:00:00Z",
				},
			},
		},
		"order_items": []any{
			map[string]any{
				"number":            "000010",
				"short_description": "GLYCOL ETHER EB",
				"material_number":   "0205LB",
				"quantities": []any{
					map[string]any{"qualifier": "weight", "value": 45000.0, "unit": "LBR"},
					map[string]any{"qualifier": "custom.unit.of.measurement", "value": 0.0},
				},
				"parameters": []any{
					map[string]any{"qualifier": "technicalDeviation", "shipper_visibility": "YES"},
					map[string]any{"qualifier": "material", "value": "0205LB", "shipper_visibility": "YES"},
					map[string]any{"qualifier": "plantCode", "value": "US61", "shipper_visibility": "YES"},
					map[string]any{"qualifier": "customerMaterial", "value": "0421598"},
					map[string]any{"qualifier": "unitOfMeasurement", "value": "LBR", "shipper_visibility": "YES"},
				},
			},
		},
		"parameters": []any{
			map[string]any{"qualifier": "custom.preassignedCarrierCreditorNumber", "value": "0000203512"},
			map[string]any{"qualifier": "transportMode", "value": "RO", "shipper_visibility": "YES"},
			map[string]any{"qualifier": "transport.salesorderNumber", "value": "0001076772", "shipper_visibility": "YES"},
		},
	}
}
