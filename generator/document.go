package generator

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"

	"github.com/Laisky/errors/v2"
	"github.com/beevik/etree"

	"github.com/Laisky/transport-order-mcp/order"
)

// Namespace is the XML namespace of transport order documents.
const Namespace = "http://xch.transporeon.com/soap/"

// Document is the data a transport order template is rendered from.
type Document struct {
	Namespace             string
	Number                string
	Status                string
	SchedulingUnit        string
	CarrierCreditorNumber string
	Vehicle               string
	Prices                *Prices
	Weight                *Measure
	Volume                *Measure
	Distance              *Measure
	Comment               string
	Order                 OrderDetails
	Stops                 []StopView
	Parameters            []ParameterView
}

// Prices is the freight price block.
type Prices struct {
	Reference string
	Currency  string
	Mode      string
}

// Measure is a value with an optional unit attribute.
type Measure struct {
	Value string
	Unit  string
}

// OrderDetails is the single order_details block of a transport order.
type OrderDetails struct {
	Number           string
	LoadingStopIDs   []string
	UnloadingStopIDs []string
	Incoterms        string
	Items            []ItemView
	Parameters       []ParameterView
}

// ItemView is one order_item.
type ItemView struct {
	Number           string
	ShortDescription string
	MaterialNumber   string
	Quantities       []QuantityView
	Parameters       []ParameterView
}

// QuantityView is one quantity of an order item.
type QuantityView struct {
	Qualifier string
	Value     string
	Unit      string
}

// StopView is one stop with its address and time window.
type StopView struct {
	ID       string
	Index    int
	Location LocationView
	Start    string
	End      string
	Timezone string
}

// LocationView is a stop address.
type LocationView struct {
	CompanyName string
	Street      string
	Zip         string
	City        string
	State       string
	Country     string
	Comment     string
}

// ParameterView is a qualifier/value pair.
type ParameterView struct {
	Qualifier         string
	Value             string
	ShipperVisibility string
	ExportToCarrier   string
}

func newDocument(in *order.Input) *Document {
	return &Document{
		Namespace:             Namespace,
		Number:                in.Number.String(),
		Status:                in.Status.String(),
		SchedulingUnit:        in.SchedulingUnit.String(),
		CarrierCreditorNumber: in.CarrierCreditorNumber.String(),
		Comment:               in.Comment.String(),
		Order: OrderDetails{
			Number: orDefault(in.OrderNumber.String(), in.Number.String()),
		},
	}
}

func stopViews(stops []order.Stop) []StopView {
	out := make([]StopView, 0, len(stops))
	for i, s := range stops {
		out = append(out, StopView{
			ID:       stopID(s, i),
			Index:    stopIndex(s, i),
			Location: locationView(s.Location),
			Start:    s.DateTimePeriod.Start.String(),
			End:      s.DateTimePeriod.End.String(),
			Timezone: s.DateTimePeriod.Timezone.String(),
		})
	}
	return out
}

// stopID returns the caller supplied id or stop_N counting from one.
func stopID(s order.Stop, i int) string {
	if s.ID != "" {
		return s.ID.String()
	}
	return "stop_" + strconv.Itoa(i+1)
}

func stopIndex(s order.Stop, i int) int {
	if s.Index != nil {
		return int(*s.Index)
	}
	return i
}

func locationView(l order.Location) LocationView {
	return LocationView{
		CompanyName: l.CompanyName.String(),
		Street:      l.Street.String(),
		Zip:         l.Zip.String(),
		City:        l.City.String(),
		State:       l.State.String(),
		Country:     l.Country.String(),
		Comment:     l.Comment.String(),
	}
}

func parameterView(p order.Parameter) ParameterView {
	return ParameterView{
		Qualifier:         p.Qualifier.String(),
		Value:             p.Value.String(),
		ShipperVisibility: p.ShipperVisibility.String(),
		ExportToCarrier:   p.ExportToCarrier.String(),
	}
}

func parameterViews(params []order.Parameter) []ParameterView {
	out := make([]ParameterView, 0, len(params))
	for _, p := range params {
		if p.Qualifier == "" {
			continue
		}
		out = append(out, parameterView(p))
	}
	return out
}

func itemViews(items []order.OrderItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		view := ItemView{
			Number:           it.Number.String(),
			ShortDescription: it.ShortDescription.String(),
			MaterialNumber:   it.MaterialNumber.String(),
			Parameters:       parameterViews(it.Parameters),
		}
		for _, q := range it.Quantities {
			qv := QuantityView{Qualifier: q.Qualifier.String(), Unit: q.Unit.String()}
			if q.Value != nil {
				qv.Value = q.Value.String()
			}
			view.Quantities = append(view.Quantities, qv)
		}
		out = append(out, view)
	}
	return out
}

func textList(in []order.Text) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t != "" {
			out = append(out, t.String())
		}
	}
	return out
}

func measure(d *order.Decimal, unit string) *Measure {
	if d == nil {
		return nil
	}
	return &Measure{Value: d.String(), Unit: unit}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// render executes tmpl and passes the output through an XML DOM so that
// the result is well formed and consistently indented.
func render(tmpl *template.Template, doc *Document) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", errors.Wrap(err, "render template")
	}

	xmlDoc := etree.NewDocument()
	if err := xmlDoc.ReadFromBytes(buf.Bytes()); err != nil {
		return "", errors.Wrap(err, "rendered document is not well formed XML")
	}
	if xmlDoc.Root() == nil {
		return "", errors.New("rendered document has no root element")
	}

	xmlDoc.Indent(2)
	out, err := xmlDoc.WriteToString()
	if err != nil {
		return "", errors.Wrap(err, "serialize document")
	}
	return out, nil
}

func describeStops(stops []StopView) string {
	if len(stops) == 0 {
		return "none"
	}
	return fmt.Sprintf("%s -> %s", stops[0].Location.City, stops[len(stops)-1].Location.City)
}
