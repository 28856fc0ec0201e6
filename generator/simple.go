package generator

import (
	"fmt"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

type simpleRoad struct {
	*base
}

// NewSimpleRoad returns the generator for simple road freight.
func NewSimpleRoad(c *catalog.Catalog) Generator {
	g := &simpleRoad{}
	g.base = &base{kind: order.SimpleRoad, catalog: c, hooks: g}
	return g
}

func (g *simpleRoad) prepare(map[string]any) error { return nil }

func (g *simpleRoad) check(in *order.Input, chk *InputCheck) {
	rules, err := g.catalog.TypeRules(g.kind)
	if err != nil {
		chk.errorf(err.Error())
		return
	}

	switch n := len(in.Stops); {
	case n == 0:
		// reported as a missing field
	case n < rules.MinimumStops:
		chk.errorf("Simple road freight requires at least 2 stops (loading and unloading)")
	case rules.MaximumStops > 0 && n > rules.MaximumStops:
		chk.errorf(fmt.Sprintf("Simple road freight allows at most %d stops, got %d", rules.MaximumStops, n))
	case rules.RecommendedMaximumStops > 0 && n > rules.RecommendedMaximumStops:
		chk.warn(fmt.Sprintf("More than %d stops is unusual for simple road freight", rules.RecommendedMaximumStops))
	}

	for _, p := range in.Parameters {
		if rules.Forbids(p.Qualifier.String()) {
			chk.errorf(fmt.Sprintf("Ocean parameter '%s' not allowed in simple road freight", p.Qualifier))
		}
	}
	for _, q := range []string{order.QualifierSCAC, order.QualifierBillOfLading, order.QualifierContainer, order.QualifierBooking} {
		if in.Has(q) {
			chk.errorf(fmt.Sprintf("Ocean parameter '%s' not allowed in simple road freight", q))
		}
	}

	if rules.Pricing.ReferencePositive && in.PriceReference != nil && in.PriceReference.Float64() <= 0 {
		chk.errorf("Price reference must be positive")
	}
	if rules.Weight.NonNegative && in.WeightValue != nil && in.WeightValue.Float64() < 0 {
		chk.errorf("Weight value cannot be negative")
	}
	if in.DistanceValue != nil && in.DistanceValue.Float64() < 0 {
		chk.errorf("Distance value cannot be negative")
	}
	if len(in.OrderItems) > 0 && !rules.AllowsOrderItems {
		chk.warn("order_items are ignored in simple road freight, use complex_road instead")
	}
}

func (g *simpleRoad) fill(in *order.Input, doc *Document, _ *InputCheck) error {
	fixed, err := g.catalog.FixedParameters(g.kind)
	if err != nil {
		return err
	}
	unit := func(name, def string) string {
		return orDefault(fixed.Units[name], def)
	}

	doc.Vehicle = in.Vehicle.String()
	if in.PriceReference != nil {
		doc.Prices = &Prices{
			Reference: in.PriceReference.String(),
			Currency:  orDefault(in.PriceCurrency.String(), g.defaultValue("price_currency")),
			Mode:      orDefault(in.PriceMode.String(), g.defaultValue("price_mode")),
		}
	}
	doc.Weight = measure(in.WeightValue, unit("weight", "kg"))
	doc.Distance = measure(in.DistanceValue, unit("distance", "km"))
	doc.Parameters = parameterViews(in.Parameters)
	return nil
}

func (g *simpleRoad) metadata(_ *order.Input, doc *Document) map[string]any {
	return map[string]any{
		"has_pricing":     doc.Prices != nil,
		"has_vehicle":     doc.Vehicle != "",
		"stop_count":      len(doc.Stops),
		"parameter_count": len(doc.Parameters),
	}
}

func (g *simpleRoad) example() map[string]any {
	return map[string]any{
		"number":             "1404338",
		"status":             "N",
		"scheduling_unit":    "Wörth",
		"vehicle":            "MEGA:Stehend",
		"price_reference":    845.0,
		"price_currency":     "EUR",
		"weight_value":       23106,
		"distance_value":     1153,
		"comment":            "rolls in mm : 2800",
		"loading_stop_ids":   []any{"1"},
		"unloading_stop_ids": []any{"2"},
		"stops": []any{
			map[string]any{
				"id":    "1",
				"index": 0,
				"location": map[string]any{
					"company_name": "Papierfabrik Palm (PM 6)",
					"street":       "Am Oberwald 2",
					"zip":          "76744",
					"city":         "Wörth",
					"country":      "DE",
				},
				"date_time_period": map[string]any{
					"start":    "2025-09-25T00:00:00+02:00",
					"end":      "2025-09-25T23:59:00+02:00",
					"timezone": "Europe/Berlin",
				},
			},
			map[string]any{
				"id":    "2",
				"index": 1,
				"location": map[string]any{
					"company_name": "WOK Sp. z o.o.",
					"street":       "Podgórna 104",
					"zip":          "87300",
					"city":         "Brodnica",
					"country":      "PL",
					"comment":      "ZF: 12:00",
				},
				"date_time_period": map[string]any{
					"start":    "2025-09-29T00:00:00+02:00",
					"end":      "2025-09-29T00:00:00+02:00",
					"timezone": "Europe/Berlin",
				},
			},
		},
		"parameters": []any{
			map[string]any{
				"qualifier": "custom.important.info",
				"value":     `<span style="color: #ff0000; font-size: 10pt;"></span>`,
			},
		},
	}
}
