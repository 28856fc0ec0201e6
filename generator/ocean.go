package generator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

// oceanQualifiers are rendered in this order after the fixed parameters.
var oceanQualifiers = []string{
	order.QualifierSCAC,
	order.QualifierBillOfLading,
	order.QualifierContainer,
	order.QualifierBooking,
}

type oceanVisibility struct {
	*base
}

// NewOceanVisibility returns the generator for ocean visibility orders.
func NewOceanVisibility(c *catalog.Catalog) Generator {
	g := &oceanVisibility{}
	g.base = &base{kind: order.OceanVisibility, catalog: c, hooks: g}
	return g
}

// prepare forces the fixed values and builds the two stops from the
// departure/arrival fields when the caller did not send exactly two stops.
func (g *oceanVisibility) prepare(raw map[string]any) error {
	fixed, err := g.catalog.FixedParameters(g.kind)
	if err != nil {
		return err
	}
	for k, v := range fixed.Values {
		raw[k] = v
	}

	stops, _ := raw["stops"].([]any)
	_, hasDeparture := raw["departure_location"]
	_, hasArrival := raw["arrival_location"]
	if len(stops) != 2 && hasDeparture && hasArrival {
		raw["stops"] = []any{
			map[string]any{
				"location":         raw["departure_location"],
				"date_time_period": raw["departure_date"],
			},
			map[string]any{
				"location":         raw["arrival_location"],
				"date_time_period": raw["arrival_date"],
			},
		}
	}

	// stop ids are fixed, so caller supplied references are dropped
	delete(raw, "loading_stop_ids")
	delete(raw, "unloading_stop_ids")
	if list, ok := raw["stops"].([]any); ok {
		rebuilt := make([]any, 0, len(list))
		for i, s := range list {
			m, ok := s.(map[string]any)
			if !ok {
				rebuilt = append(rebuilt, s)
				continue
			}
			m = maps.Clone(m)
			m["id"] = g.stopID(fixed, i)
			m["index"] = i
			rebuilt = append(rebuilt, m)
		}
		raw["stops"] = rebuilt
	}
	return nil
}

func (g *oceanVisibility) stopID(fixed *catalog.FixedParameters, i int) string {
	switch i {
	case 0:
		return orDefault(fixed.StopIDs.Loading, "Departure")
	case 1:
		return orDefault(fixed.StopIDs.Unloading, "Arrival")
	default:
		return fmt.Sprintf("stop_%d", i+1)
	}
}

func (g *oceanVisibility) check(in *order.Input, chk *InputCheck) {
	rules, err := g.catalog.TypeRules(g.kind)
	if err != nil {
		chk.errorf(err.Error())
		return
	}

	switch n := len(in.Stops); {
	case n == 0:
		chk.errorf("Ocean visibility requires either 2 stops OR departure_location and arrival_location data")
	case n != rules.MinimumStops:
		chk.errorf("Ocean visibility requires exactly 2 stops (Departure and Arrival)")
	}

	for _, q := range rules.RequiredParameters {
		if strings.TrimSpace(in.OceanValue(q)) == "" {
			chk.errorf(fmt.Sprintf("Required ocean parameter '%s' is missing", q))
		}
	}
	if scac := in.OceanValue(order.QualifierSCAC); scac != "" && !order.IsSCAC(scac) {
		chk.errorf(fmt.Sprintf("SCAC code must be 2 to 4 uppercase letters or digits, got %q", scac))
	}

	for _, field := range []string{"vehicle", "prices", "price_reference", "order_items"} {
		if in.Has(field) {
			chk.warn(fmt.Sprintf("'%s' is not used in ocean visibility transport orders", field))
		}
	}
	for _, p := range in.Parameters {
		q := p.Qualifier.String()
		if !strings.HasPrefix(q, "ocean.") && q != order.QualifierOceanProduct {
			chk.warn(fmt.Sprintf("Parameter '%s' is not typically used in ocean visibility orders", q))
		}
	}
}

func (g *oceanVisibility) fill(in *order.Input, doc *Document, _ *InputCheck) error {
	fixed, err := g.catalog.FixedParameters(g.kind)
	if err != nil {
		return err
	}

	doc.Order.LoadingStopIDs = []string{g.stopID(fixed, 0)}
	doc.Order.UnloadingStopIDs = []string{g.stopID(fixed, 1)}

	for _, q := range slices.Sorted(maps.Keys(fixed.Parameters)) {
		doc.Parameters = append(doc.Parameters, ParameterView{Qualifier: q, Value: fixed.Parameters[q]})
	}
	seen := map[string]bool{}
	for _, p := range doc.Parameters {
		seen[p.Qualifier] = true
	}
	for _, q := range oceanQualifiers {
		v := in.OceanValue(q)
		if v == "" {
			continue
		}
		doc.Parameters = append(doc.Parameters, ParameterView{Qualifier: q, Value: v})
		seen[q] = true
	}
	for _, p := range in.Parameters {
		q := p.Qualifier.String()
		if !strings.HasPrefix(q, "ocean.") || seen[q] {
			continue
		}
		doc.Parameters = append(doc.Parameters, parameterView(p))
		seen[q] = true
	}
	return nil
}

func (g *oceanVisibility) metadata(in *order.Input, doc *Document) map[string]any {
	return map[string]any{
		"scac_code":        in.OceanValue(order.QualifierSCAC),
		"bl_number":        in.OceanValue(order.QualifierBillOfLading),
		"container_number": in.OceanValue(order.QualifierContainer),
		"booking_number":   in.OceanValue(order.QualifierBooking),
		"stop_count":       len(doc.Stops),
	}
}

func (g *oceanVisibility) example() map[string]any {
	return map[string]any{
		"number":             "4500831479-20",
		"ocean.scac.no":      "MAEU",
		"ocean.bl.no":        "MAEU258327258",
		"ocean.container.no": "MMAU1291440",
		"ocean.booking.no":   "",
		"departure_location": map[string]any{
			"company_name": "Camimex Joint Stock Company",
			"street":       "Cao Thang Street",
			"zip":          "",
			"city":         "Ca Mau City",
			"country":      "VN",
		},
		"arrival_location": map[string]any{
			"company_name": "Factory Bremerhaven DE",
			"street":       "Am Lunedeich",
			"zip":          "27572",
			"city":         "Bremerhaven",
			"country":      "DE",
		},
		"departure_date": map[string]any{
			"start": "2025-07-13T00:00:00+02:00",
			"end":   "2025-07-13T00:00:00+02:00",
		},
		"arrival_date": map[string]any{
			"start": "2025-10-11T00:00:00+02:00",
			"end":   "2025-10-11T00:00:00+02:00",
		},
	}
}
