package validation

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/order"
)

// Namespace is the XML namespace transport order documents must declare.
const Namespace = "http://xch.transporeon.com/soap/"

// structuralElements must be present on every transport_order.
var structuralElements = []string{"number", "status", "scheduling_unit", "orders", "stops"}

// textElements must carry text as well.
var textElements = []string{"number", "status", "scheduling_unit"}

// parse reads the document and locates transport_order. A nil element means
// the structural pass already recorded why nothing else can be checked.
func parse(xml string, p *Pass) *etree.Element {
	if strings.TrimSpace(xml) == "" {
		p.errorf("XML content is empty")
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		p.errorf("XML parsing error: %s", err.Error())
		return nil
	}
	root := doc.Root()
	if root == nil {
		p.errorf("XML parsing error: document has no root element")
		return nil
	}

	if root.Tag != "transport_orders" {
		p.errorf("Root element must be 'transport_orders'")
	}
	switch ns := root.NamespaceURI(); ns {
	case Namespace:
	case "":
		p.warnf("Root element declares no namespace, expected %s", Namespace)
	default:
		p.errorf("Missing or incorrect namespace: expected %s, found %s", Namespace, ns)
	}

	to := root.SelectElement("transport_order")
	if to == nil {
		to = root.FindElement(".//transport_order")
	}
	if to == nil {
		p.errorf("No transport_order element found")
	}
	return to
}

// checkStructure verifies the elements every transport order carries.
func checkStructure(to *etree.Element, p *Pass) {
	for _, name := range structuralElements {
		if to.SelectElement(name) == nil {
			p.errorf("Required element '%s' is missing", name)
		}
	}
	for _, name := range textElements {
		if el := to.SelectElement(name); el != nil && text(el) == "" {
			p.errorf("Required element '%s' is empty", name)
		}
	}

	if orders := to.SelectElement("orders"); orders != nil {
		details := orders.SelectElement("order_details")
		if details == nil {
			p.errorf("orders element must contain order_details")
		} else {
			checkOrderDetails(details, p)
		}
	}

	if stops := to.SelectElement("stops"); stops != nil {
		list := stops.SelectElements("stop")
		if len(list) == 0 {
			p.errorf("stops element must contain at least one stop")
		}
		checkStops(list, p)
	}
}

func checkOrderDetails(details *etree.Element, p *Pass) {
	for _, name := range []string{"number", "loading_stop_ids", "unloading_stop_ids"} {
		if details.SelectElement(name) == nil {
			p.errorf("order_details missing required element: %s", name)
		}
	}
	for _, name := range []string{"loading_stop_ids", "unloading_stop_ids"} {
		if ids := details.SelectElement(name); ids != nil && len(stopRefs(ids)) == 0 {
			p.errorf("%s must contain at least one id", name)
		}
	}
}

func checkStops(stops []*etree.Element, p *Pass) {
	seen := map[string]bool{}
	for i, stop := range stops {
		n := i + 1

		id := childText(stop, "id")
		switch {
		case id == "":
			p.errorf("Stop %d: missing or empty id element", n)
		case seen[id]:
			p.errorf("Duplicate stop ID: %s", id)
		default:
			seen[id] = true
		}

		if stop.SelectElement("index") == nil {
			p.errorf("Stop %d: missing index element", n)
		}

		if loc := stop.SelectElement("location"); loc == nil {
			p.errorf("Stop %d: missing location element", n)
		} else {
			for _, name := range []string{"company_name", "city", "country"} {
				if childText(loc, name) == "" {
					p.errorf("Stop %d: location missing required element: %s", n, name)
				}
			}
			if country := childText(loc, "country"); country != "" && !order.IsCountryCode(country) {
				p.errorf("Stop %d: country code must be 2 uppercase letters", n)
			}
		}

		period := stop.SelectElement("date_time_period")
		if period == nil {
			p.errorf("Stop %d: missing date_time_period element", n)
			continue
		}
		for _, name := range []string{"start", "end"} {
			v := childText(period, name)
			switch {
			case v == "":
				p.errorf("Stop %d: date_time_period missing %s element", n, name)
			case !order.IsISODateTime(v):
				p.errorf("Stop %d: invalid %s date format", n, name)
			}
		}
	}
}

// checkFieldRules applies the structural field rules to transport_order.
func checkFieldRules(to *etree.Element, rules []catalog.FieldRule, p *Pass) {
	for _, r := range rules {
		el := to.FindElement(r.Path)
		if el == nil {
			continue
		}
		v := text(el)
		if v == "" {
			continue
		}

		if r.Type == "number" {
			if f, err := strconv.ParseFloat(v, 64); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				p.errorf("Field '%s' must be a number: %s", r.Path, v)
				continue
			}
		}
		n := utf8.RuneCountInString(v)
		if r.MinLength != nil && n < *r.MinLength {
			p.errorf("Field '%s' is too short (minimum %d characters)", r.Path, *r.MinLength)
		}
		if r.MaxLength != nil && n > *r.MaxLength {
			p.errorf("Field '%s' is too long (maximum %d characters)", r.Path, *r.MaxLength)
		}
		if !r.Matches(v) {
			if r.Message != "" {
				p.errorf("%s", r.Message)
			} else {
				p.errorf("Field '%s' format is invalid", r.Path)
			}
		}
		if len(r.AllowedValues) > 0 && !slices.Contains(r.AllowedValues, v) {
			p.errorf("Field '%s' must be one of: %s", r.Path, strings.Join(r.AllowedValues, ", "))
		}
	}
}

// checkParameterFormats validates the values of well known qualifiers.
func checkParameterFormats(to *etree.Element, p *Pass) {
	for _, param := range to.FindElements(".//parameter[@qualifier='" + order.QualifierSCAC + "']") {
		if v := childText(param, "value"); v != "" && !order.IsSCAC(v) {
			p.errorf("Invalid SCAC code format: %s", v)
		}
	}
}

// checkStopReferences requires loading and unloading ids to name existing stops.
func checkStopReferences(to *etree.Element, p *Pass) {
	known := map[string]bool{}
	for _, id := range stopIDs(to) {
		known[id] = true
	}

	details := to.FindElement("orders/order_details")
	if details == nil {
		return
	}
	for _, ref := range []struct {
		element, label string
	}{
		{"loading_stop_ids", "Loading"},
		{"unloading_stop_ids", "Unloading"},
	} {
		ids := details.SelectElement(ref.element)
		if ids == nil {
			continue
		}
		for _, id := range stopRefs(ids) {
			if !known[id] {
				p.errorf("%s stop ID '%s' does not reference an existing stop", ref.label, id)
			}
		}
	}
}

// stopIDs returns the non-empty ids of every stop in document order.
func stopIDs(to *etree.Element) []string {
	var ids []string
	for _, stop := range to.FindElements("stops/stop") {
		if id := childText(stop, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// stopRefs returns the ids listed under a loading or unloading element.
// Both <id> and the long <loading_stop_id> form are accepted.
func stopRefs(list *etree.Element) []string {
	var refs []string
	for _, child := range list.ChildElements() {
		if child.Tag != "id" && !strings.HasSuffix(child.Tag, "_stop_id") {
			continue
		}
		if v := text(child); v != "" {
			refs = append(refs, v)
		}
	}
	return refs
}

func text(el *etree.Element) string {
	return strings.TrimSpace(el.Text())
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return text(child)
}
