package validation

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

// oceanSchedulingUnit marks a document as an ocean visibility order.
const oceanSchedulingUnit = "Ocean Visibility"

// oceanRequiredParameters must be present on any ocean visibility document.
var oceanRequiredParameters = []string{
	order.QualifierOceanProduct,
	order.QualifierSCAC,
	order.QualifierBillOfLading,
	order.QualifierContainer,
}

// checkTypeRules applies the business rules of t.
func checkTypeRules(to *etree.Element, t order.TransportType, rules *catalog.TypeRules, p *Pass) {
	for _, name := range rules.RequiredElements {
		if slices.Contains(structuralElements, name) {
			continue
		}
		if to.SelectElement(name) == nil {
			p.errorf("%s: Required element '%s' is missing", t, name)
		}
	}

	stops := to.FindElements("stops/stop")
	n := len(stops)
	switch {
	case n < rules.MinimumStops:
		p.errorf("%s: Minimum %d stops required, found %d", t, rules.MinimumStops, n)
	case rules.MaximumStops > 0 && n > rules.MaximumStops:
		p.errorf("%s: Maximum %d stops allowed, found %d", t, rules.MaximumStops, n)
	case rules.RecommendedMaximumStops > 0 && n > rules.RecommendedMaximumStops:
		p.warnf("%s: %d stops exceeds the recommended maximum of %d", t, n, rules.RecommendedMaximumStops)
	}

	for _, name := range slices.Sorted(maps.Keys(rules.FixedValues)) {
		want := rules.FixedValues[name]
		el := to.SelectElement(name)
		switch {
		case el == nil:
			p.errorf("%s: Missing required field '%s'", t, name)
		case text(el) != want:
			p.errorf("%s: Field '%s' must be '%s', found '%s'", t, name, want, text(el))
		}
	}

	for i, want := range rules.StopIDs {
		if i >= n {
			break
		}
		if got := childText(stops[i], "id"); got != want {
			p.warnf("%s: Stop %d id should be '%s', found '%s'", t, i+1, want, got)
		}
	}

	checkParameterRules(to, t, rules, p)
	checkCarrier(to, rules, p)
	checkAmounts(to, rules, p)
	checkOrderItems(to, t, rules, p)
}

func checkParameterRules(to *etree.Element, t order.TransportType, rules *catalog.TypeRules, p *Pass) {
	for _, param := range to.FindElements(".//parameter") {
		if q := param.SelectAttrValue("qualifier", ""); rules.Forbids(q) {
			p.errorf("%s: Forbidden parameter '%s' is not allowed", t, q)
		}
	}

	transportParams := transportParameters(to)
	if len(rules.RequiredParameters) > 0 && to.SelectElement("parameters") == nil {
		p.errorf("Required parameters section is missing")
	} else {
		for _, q := range rules.RequiredParameters {
			if _, ok := transportParams[q]; !ok {
				p.errorf("Required parameter '%s' is missing", q)
			}
		}
	}

	for _, q := range slices.Sorted(maps.Keys(rules.ParameterRestrictions.MandatoryFixedParameters)) {
		want := rules.ParameterRestrictions.MandatoryFixedParameters[q]
		if got, ok := transportParams[q]; ok && got != want {
			p.errorf("Parameter '%s' must have value '%s'", q, want)
		}
	}
}

func checkCarrier(to *etree.Element, rules *catalog.TypeRules, p *Pass) {
	carrier := childText(to, "carrier_creditor_number")
	if rules.CarrierCreditorPattern == "" || carrier == "" {
		return
	}
	if !rules.CreditorMatches(carrier) {
		if rules.CarrierCreditorMessage != "" {
			p.errorf("%s", rules.CarrierCreditorMessage)
		} else {
			p.errorf("Carrier creditor number '%s' has an invalid format", carrier)
		}
	}
}

func checkAmounts(to *etree.Element, rules *catalog.TypeRules, p *Pass) {
	if rules.Pricing.ReferencePositive {
		if v, ok := number(to, "prices/reference"); ok && v <= 0 {
			p.errorf("Price reference must be positive")
		}
	}
	if rules.Weight.NonNegative {
		if v, ok := number(to, "weight/value"); ok && v < 0 {
			p.errorf("Weight value cannot be negative")
		}
	}
}

func checkOrderItems(to *etree.Element, t order.TransportType, rules *catalog.TypeRules, p *Pass) {
	items := to.FindElements("orders/order_details/order_items/order_item")
	if len(items) == 0 {
		return
	}
	if !rules.AllowsOrderItems {
		p.warnf("%s: order_items are not expected for this transport type", t)
		return
	}
	if rules.OrderItemRules == nil {
		return
	}

	for i, item := range items {
		n := i + 1
		for _, name := range rules.OrderItemRules.RequiredFields {
			if childText(item, name) == "" {
				p.errorf("Order item %d: Missing required field '%s'", n, name)
			}
		}

		var quantities []string
		for _, q := range item.FindElements("quantities/quantity") {
			if v := childText(q, "qualifier"); v != "" {
				quantities = append(quantities, v)
			}
		}
		if len(quantities) == 0 {
			p.warnf("Order item %d: No quantities specified", n)
		} else {
			for _, want := range rules.OrderItemRules.RecommendedQuantities {
				if !slices.Contains(quantities, want) {
					p.warnf("Order item %d: Recommended quantity '%s' is missing", n, want)
				}
			}
		}

		for _, want := range rules.OrderItemRules.RecommendedParameters {
			if item.FindElement("parameters/parameter[@qualifier='"+want+"']") == nil {
				p.warnf("Order item %d: Recommended parameter '%s' is missing", n, want)
			}
		}
	}
}

// checkOceanCompleteness runs on every document whose scheduling unit marks
// it as an ocean visibility order, whatever type it was validated as.
func checkOceanCompleteness(to *etree.Element, p *Pass) {
	if childText(to, "scheduling_unit") != oceanSchedulingUnit {
		return
	}
	if to.SelectElement("parameters") == nil {
		p.errorf("Required parameters section is missing")
		return
	}

	params := transportParameters(to)
	for _, q := range oceanRequiredParameters {
		if _, ok := params[q]; !ok {
			p.errorf("Required parameter '%s' is missing", q)
		}
	}
	if v, ok := params[order.QualifierOceanProduct]; ok && v != "true" {
		p.errorf("Parameter '%s' must have value '%s'", order.QualifierOceanProduct, "true")
	}
}

// checkCrossField compares values that live in different parts of the document.
func checkCrossField(to *etree.Element, p *Pass) {
	if carrier := childText(to, "carrier_creditor_number"); carrier != "" {
		for _, param := range to.FindElements(".//parameter[@qualifier='" + order.QualifierPreassignedCCN + "']") {
			if v := childText(param, "value"); v != carrier {
				p.warnf("Carrier creditor number inconsistency between transport and order levels")
			}
		}
	}

	stops := to.FindElements("stops/stop")
	var previous time.Time
	outOfSequence := false
	for i, stop := range stops {
		start, okStart := order.ParseDateTime(pathText(stop, "date_time_period/start"))
		end, okEnd := order.ParseDateTime(pathText(stop, "date_time_period/end"))
		if okStart && okEnd && end.Before(start) {
			p.errorf("Stop %d: end date is before start date", i+1)
		}
		if !okStart {
			continue
		}
		if !previous.IsZero() && start.Before(previous) {
			outOfSequence = true
		}
		previous = start
	}
	if outOfSequence {
		p.warnf("Stop dates may not be in logical sequence - verify pickup and delivery order")
	}

	var indices []int
	for _, stop := range stops {
		v := childText(stop, "index")
		if v == "" {
			continue
		}
		idx, err := strconv.Atoi(v)
		if err != nil {
			p.errorf("Stop index must be a number")
			continue
		}
		indices = append(indices, idx)
	}
	if len(indices) == 0 {
		return
	}
	slices.Sort(indices)
	if indices[0] != 0 {
		p.errorf("Stop indices should start from 0")
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			p.errorf("Stop indices should be sequential")
			break
		}
	}
}

// transportParameters maps the qualifiers of the transport level parameters
// to their values.
func transportParameters(to *etree.Element) map[string]string {
	out := map[string]string{}
	for _, param := range to.FindElements("parameters/parameter") {
		if q := param.SelectAttrValue("qualifier", ""); q != "" {
			out[q] = childText(param, "value")
		}
	}
	return out
}

func number(to *etree.Element, path string) (float64, bool) {
	el := to.FindElement(path)
	if el == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(text(el), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// detectType guesses the transport type of a document.
func detectType(to *etree.Element) order.TransportType {
	if childText(to, "scheduling_unit") == oceanSchedulingUnit ||
		to.FindElement("parameters/parameter[@qualifier='"+order.QualifierOceanProduct+"']") != nil {
		return order.OceanVisibility
	}
	if to.FindElement("orders/order_details/order_items") != nil {
		return order.ComplexRoad
	}
	simpleOnly := to.SelectElement("vehicle") != nil || to.SelectElement("prices") != nil
	if !simpleOnly && order.IsCarrierCreditorNumber(childText(to, "carrier_creditor_number")) {
		return order.ComplexRoad
	}
	return order.SimpleRoad
}

func pathText(el *etree.Element, path string) string {
	found := el.FindElement(path)
	if found == nil {
		return ""
	}
	return text(found)
}
