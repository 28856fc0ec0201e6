// Package order models the structured input a caller supplies to build a transport order.
package order

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
)

// TransportType names one of the supported document templates.
type TransportType string

const (
	SimpleRoad      TransportType = "simple_road"
	ComplexRoad     TransportType = "complex_road"
	OceanVisibility TransportType = "ocean_visibility"
)

// AllTypes lists the transport types in their canonical order.
var AllTypes = []TransportType{SimpleRoad, ComplexRoad, OceanVisibility}

// ParseTransportType reports whether s names a supported transport type.
func ParseTransportType(s string) (TransportType, bool) {
	t := TransportType(strings.TrimSpace(strings.ToLower(s)))
	for _, known := range AllTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// TypeNames returns AllTypes as strings.
func TypeNames() []string {
	names := make([]string, 0, len(AllTypes))
	for _, t := range AllTypes {
		names = append(names, string(t))
	}
	return names
}

// Text is a trimmed string that also accepts JSON numbers and booleans,
// since order numbers and ids frequently arrive unquoted.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case data[0] == '{' || data[0] == '[':
		return errors.Errorf("expected a text value, got %s", jsonKind(data))
	default:
		*t = Text(data)
	}
	return nil
}

// String returns t as a plain string.
func (t Text) String() string { return string(t) }

// Decimal is a float that also accepts numeric strings.
type Decimal float64

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: jsonKind(data), Type: reflect.TypeFor[Decimal]()}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		// the decoder fills in the field name of type errors
		return &json.UnmarshalTypeError{Value: "non-finite number " + raw, Type: reflect.TypeFor[Decimal]()}
	}
	*d = Decimal(v)
	return nil
}

// Float64 returns d as float64.
func (d Decimal) Float64() float64 { return float64(d) }

// String formats d without a trailing zero fraction.
func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// Integer is an int that also accepts numeric strings.
type Integer int

// UnmarshalJSON implements json.Unmarshaler.
func (i *Integer) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return errors.Errorf("expected an integer, got %s", jsonKind(data))
	}
	*i = Integer(v)
	return nil
}

func jsonKind(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	case '"':
		return "a string " + string(data)
	case 't', 'f':
		return "a boolean"
	default:
		return string(data)
	}
}

// Location is a stop address.
type Location struct {
	CompanyName Text `json:"company_name" validate:"notblank"`
	Street      Text `json:"street"`
	Zip         Text `json:"zip"`
	City        Text `json:"city" validate:"notblank"`
	State       Text `json:"state"`
	Country     Text `json:"country" validate:"notblank,country_code"`
	Comment     Text `json:"comment"`
}

// DateTimePeriod is a loading or delivery window.
type DateTimePeriod struct {
	Start    Text `json:"start" validate:"notblank,iso_datetime"`
	End      Text `json:"end" validate:"notblank,iso_datetime"`
	Timezone Text `json:"timezone"`
}

// Stop is a pickup or delivery point.
type Stop struct {
	ID             Text           `json:"id"`
	Index          *Integer       `json:"index"`
	Location       Location       `json:"location"`
	DateTimePeriod DateTimePeriod `json:"date_time_period"`
}

// Parameter is a qualifier/value pair attached to a transport, order or order item.
type Parameter struct {
	Qualifier         Text `json:"qualifier"`
	Value             Text `json:"value"`
	ShipperVisibility Text `json:"shipper_visibility"`
	ExportToCarrier   Text `json:"export_to_carrier"`
}

// Quantity is an amount on an order item.
type Quantity struct {
	Qualifier Text     `json:"qualifier" validate:"notblank"`
	Value     *Decimal `json:"value"`
	Unit      Text     `json:"unit"`
}

// OrderItem is a line of a complex road order.
type OrderItem struct {
	Number           Text        `json:"number" validate:"notblank"`
	ShortDescription Text        `json:"short_description" validate:"notblank"`
	MaterialNumber   Text        `json:"material_number" validate:"notblank"`
	Quantities       []Quantity  `json:"quantities" validate:"dive"`
	Parameters       []Parameter `json:"parameters"`
}

// Parameter returns the first item parameter with the given qualifier.
func (it OrderItem) Parameter(qualifier string) (Parameter, bool) {
	return findParameter(it.Parameters, qualifier)
}

// Ocean parameter qualifiers.
const (
	QualifierOceanProduct   = "visibility.ocean.product"
	QualifierSCAC           = "ocean.scac.no"
	QualifierBillOfLading   = "ocean.bl.no"
	QualifierContainer      = "ocean.container.no"
	QualifierBooking        = "ocean.booking.no"
	QualifierPreassignedCCN = "custom.preassignedCarrierCreditorNumber"
)

// Input is the decoded order_data of a generate request.
type Input struct {
	Number                Text     `json:"number"`
	Status                Text     `json:"status"`
	SchedulingUnit        Text     `json:"scheduling_unit"`
	CarrierCreditorNumber Text     `json:"carrier_creditor_number"`
	Vehicle               Text     `json:"vehicle"`
	PriceReference        *Decimal `json:"price_reference"`
	PriceCurrency         Text     `json:"price_currency"`
	PriceMode             Text     `json:"price_mode"`
	WeightValue           *Decimal `json:"weight_value"`
	VolumeValue           *Decimal `json:"volume_value"`
	DistanceValue         *Decimal `json:"distance_value"`
	Comment               Text     `json:"comment"`
	Incoterms             Text     `json:"incoterms"`

	OrderNumber      Text   `json:"order_number"`
	LoadingStopIDs   []Text `json:"loading_stop_ids"`
	UnloadingStopIDs []Text `json:"unloading_stop_ids"`

	Stops      []Stop      `json:"stops" validate:"dive"`
	Parameters []Parameter `json:"parameters"`
	OrderItems []OrderItem `json:"order_items" validate:"dive"`

	SCAC              Text            `json:"ocean.scac.no"`
	BillOfLading      Text            `json:"ocean.bl.no"`
	ContainerNumber   Text            `json:"ocean.container.no"`
	BookingNumber     Text            `json:"ocean.booking.no"`
	// The departure/arrival fields are turned into stops before validation.
	DepartureLocation *Location       `json:"departure_location" validate:"-"`
	ArrivalLocation   *Location       `json:"arrival_location" validate:"-"`
	DepartureDate     *DateTimePeriod `json:"departure_date" validate:"-"`
	ArrivalDate       *DateTimePeriod `json:"arrival_date" validate:"-"`

	// Raw is the payload as supplied, used for presence checks.
	Raw map[string]any `json:"-"`
}

// Has reports whether the caller supplied a non-blank value for key.
func (in *Input) Has(key string) bool {
	if in == nil || in.Raw == nil {
		return false
	}
	return !IsBlank(in.Raw[key])
}

// Parameter returns the first transport parameter with the given qualifier.
func (in *Input) Parameter(qualifier string) (Parameter, bool) {
	return findParameter(in.Parameters, qualifier)
}

// OceanValue returns an ocean parameter, read from the top level key first and
// from the parameters list second.
func (in *Input) OceanValue(qualifier string) string {
	var top Text
	switch qualifier {
	case QualifierSCAC:
		top = in.SCAC
	case QualifierBillOfLading:
		top = in.BillOfLading
	case QualifierContainer:
		top = in.ContainerNumber
	case QualifierBooking:
		top = in.BookingNumber
	}
	if top != "" {
		return top.String()
	}
	if p, ok := in.Parameter(qualifier); ok {
		return p.Value.String()
	}
	return ""
}

// IsBlank reports whether a decoded JSON value carries no information.
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

func findParameter(params []Parameter, qualifier string) (Parameter, bool) {
	for _, p := range params {
		if p.Qualifier.String() == qualifier {
			return p, true
		}
	}
	return Parameter{}, false
}
