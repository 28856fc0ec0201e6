package validation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/generator"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

func newTestValidator(t *testing.T) (*Validator, *catalog.Catalog) {
	t.Helper()
	c, err := catalog.New()
	require.NoError(t, err)
	return New(c), c
}

func example(t *testing.T, c *catalog.Catalog, tt order.TransportType) string {
	t.Helper()
	xml, err := c.Example(tt)
	require.NoError(t, err)
	return xml
}

func TestExamplesAreValid(t *testing.T) {
	v, c := newTestValidator(t)

	for _, tt := range order.AllTypes {
		t.Run(string(tt), func(t *testing.T) {
			r := v.Validate(context.Background(), example(t, c, tt), tt)
			require.True(t, r.Valid, "errors: %v", r.Errors)
			assert.True(t, r.Success)
			assert.Empty(t, r.ErrorType)
			assert.Empty(t, r.Errors)
			assert.Empty(t, r.Warnings)
			assert.False(t, r.TypeDetected)
		})
	}
}

func TestGeneratedDocumentsAreValid(t *testing.T) {
	v, c := newTestValidator(t)
	f := generator.NewFactory(c)

	for _, tt := range order.AllTypes {
		t.Run(string(tt), func(t *testing.T) {
			g, err := f.Get(string(tt))
			require.NoError(t, err)
			res := g.Generate(context.Background(), g.ExampleInput())
			require.True(t, res.Success, res.Errors)

			r := v.Validate(context.Background(), res.XML, tt)
			assert.True(t, r.Valid, "errors: %v", r.Errors)
			t.Logf("✓ generated %s document passes validation", tt)
		})
	}
}

func TestTypeDetection(t *testing.T) {
	v, c := newTestValidator(t)

	for _, tt := range order.AllTypes {
		r := v.Validate(context.Background(), example(t, c, tt), "")
		assert.True(t, r.TypeDetected)
		assert.Equal(t, tt, r.TransportType)
		assert.True(t, r.Valid, "%s: %v", tt, r.Errors)
	}
}

func TestStructuralErrors(t *testing.T) {
	v, c := newTestValidator(t)
	simple := example(t, c, order.SimpleRoad)

	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"empty", "  ", "XML content is empty"},
		{"malformed", "<transport_orders version=1></transport_orders>", "XML parsing error"},
		{"wrong root", `<orders xmlns="http://xch.transporeon.com/soap/"><transport_order/></orders>`, "Root element must be 'transport_orders'"},
		{"wrong namespace", strings.Replace(simple, Namespace, "urn:other", 1), "Missing or incorrect namespace"},
		{"no transport order", `<transport_orders xmlns="http://xch.transporeon.com/soap/"/>`, "No transport_order element found"},
		{"missing status", strings.Replace(simple, "<status>N</status>", "", 1), "Required element 'status' is missing"},
		{"empty number", strings.Replace(simple, "<number>1404338</number>\n    <status>", "<number></number>\n    <status>", 1), "Required element 'number' is empty"},
		{"duplicate stop id", strings.Replace(simple, "<id>2</id>\n        <index>1</index>", "<id>1</id>\n        <index>1</index>", 1), "Duplicate stop ID: 1"},
		{"bad country", strings.Replace(simple, "<country>PL</country>", "<country>Poland</country>", 1), "Stop 2: country code must be 2 uppercase letters"},
		{"bad date", strings.Replace(simple, "2025-09-29T00:00:00+02:00", "29.09.2025", 1), "Stop 2: invalid start date format"},
		{"unknown status", strings.Replace(simple, "<status>N</status>", "<status>X</status>", 1), "Field 'status' must be one of: N, NTO, D"},
		{"bad currency", strings.Replace(simple, "<currency>EUR</currency>", "<currency>euro</currency>", 1), "currency must be a 3-letter ISO 4217 code"},
		{"non numeric weight", strings.Replace(simple, "<value>23106</value>", "<value>heavy</value>", 1), "Field 'weight/value' must be a number: heavy"},
		{"non finite price", strings.Replace(simple, "<reference>845</reference>", "<reference>NaN</reference>", 1), "Field 'prices/reference' must be a number: NaN"},
		{"dangling reference", strings.Replace(simple, "<unloading_stop_ids>\n          <id>2</id>", "<unloading_stop_ids>\n          <id>9</id>", 1), "Unloading stop ID '9' does not reference an existing stop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(context.Background(), tt.xml, order.SimpleRoad)
			require.False(t, r.Valid)
			assert.False(t, r.Success)
			assert.False(t, r.Structural.Valid)
			assert.Equal(t, model.ErrorTypeStructural, r.ErrorType)
			assert.True(t, hasPrefix(r.Errors, tt.want), "want %q in %v", tt.want, r.Errors)
		})
	}
}

func TestMissingNamespaceIsTolerated(t *testing.T) {
	v, c := newTestValidator(t)
	xml := strings.Replace(example(t, c, order.SimpleRoad), ` xmlns="`+Namespace+`"`, "", 1)

	r := v.Validate(context.Background(), xml, order.SimpleRoad)
	assert.True(t, r.Valid, r.Errors)
	assert.Contains(t, r.Warnings, "Root element declares no namespace, expected "+Namespace)
}

func TestBusinessErrors(t *testing.T) {
	v, c := newTestValidator(t)
	simple := example(t, c, order.SimpleRoad)
	complexXML := example(t, c, order.ComplexRoad)
	ocean := example(t, c, order.OceanVisibility)

	tests := []struct {
		name string
		xml  string
		tt   order.TransportType
		want string
	}{
		{"ocean fixed value", strings.Replace(ocean, "<status>NTO</status>", "<status>N</status>", 1), order.OceanVisibility,
			"ocean_visibility: Field 'status' must be 'NTO', found 'N'"},
		{"ocean missing container", strings.Replace(ocean, `<parameter qualifier="ocean.container.no">`, `<parameter qualifier="ocean.other">`, 1), order.OceanVisibility,
			"Required parameter 'ocean.container.no' is missing"},
		{"ocean product flag", strings.Replace(ocean, "<value>true</value>", "<value>false</value>", 1), order.OceanVisibility,
			"Parameter 'visibility.ocean.product' must have value 'true'"},
		{"complex carrier format", strings.Replace(complexXML, "<carrier_creditor_number>0000203512</carrier_creditor_number>", "<carrier_creditor_number>203512</carrier_creditor_number>", 1), order.ComplexRoad,
			"Carrier creditor number must be 10 digits"},
		{"complex item field", strings.Replace(complexXML, "<material_number>0205LB</material_number>", "<material_number></material_number>", 1), order.ComplexRoad,
			"Order item 1: Missing required field 'material_number'"},
		{"simple forbidden parameter", strings.Replace(simple, `qualifier="custom.important.info"`, `qualifier="ocean.bl.no"`, 1), order.SimpleRoad,
			"simple_road: Forbidden parameter 'ocean.bl.no' is not allowed"},
		{"simple price", strings.Replace(simple, "<reference>845</reference>", "<reference>0</reference>", 1), order.SimpleRoad,
			"Price reference must be positive"},
		{"complex validated as ocean", complexXML, order.OceanVisibility,
			"ocean_visibility: Field 'scheduling_unit' must be 'Ocean Visibility', found 'BCO'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(context.Background(), tt.xml, tt.tt)
			require.False(t, r.Valid)
			assert.True(t, r.Structural.Valid, r.Structural.Errors)
			assert.False(t, r.Business.Valid)
			assert.Equal(t, model.ErrorTypeBusinessRule, r.ErrorType)
			assert.Contains(t, r.Errors, tt.want)
		})
	}
}

func TestBusinessWarnings(t *testing.T) {
	v, c := newTestValidator(t)
	complexXML := example(t, c, order.ComplexRoad)

	xml := strings.Replace(complexXML, `<parameter qualifier="plantCode" shipperVisibility="YES">`, `<parameter qualifier="plant" shipperVisibility="YES">`, 1)
	xml = strings.Replace(xml, "<value>0000203512</value>", "<value>0000000001</value>", 1)

	r := v.Validate(context.Background(), xml, order.ComplexRoad)
	assert.True(t, r.Valid, r.Errors)
	assert.Contains(t, r.Warnings, "Order item 1: Recommended parameter 'plantCode' is missing")
	assert.Contains(t, r.Warnings, "Carrier creditor number inconsistency between transport and order levels")
}

func TestCrossFieldChecks(t *testing.T) {
	v, c := newTestValidator(t)
	simple := example(t, c, order.SimpleRoad)

	t.Run("end before start", func(t *testing.T) {
		xml := strings.Replace(simple, "<end>2025-09-25T23:59:00+02:00</end>", "<end>2025-09-24T23:59:00+02:00</end>", 1)
		r := v.Validate(context.Background(), xml, order.SimpleRoad)
		require.False(t, r.Valid)
		assert.False(t, r.CrossField.Valid)
		assert.Contains(t, r.Errors, "Stop 1: end date is before start date")
		assert.Equal(t, model.ErrorTypeBusinessRule, r.ErrorType)
	})

	t.Run("stops out of sequence", func(t *testing.T) {
		xml := strings.Replace(simple, "<start>2025-09-29T00:00:00+02:00</start>", "<start>2025-09-20T00:00:00+02:00</start>", 1)
		r := v.Validate(context.Background(), xml, order.SimpleRoad)
		assert.True(t, r.Valid, r.Errors)
		assert.Contains(t, r.Warnings, "Stop dates may not be in logical sequence - verify pickup and delivery order")
	})

	t.Run("indices", func(t *testing.T) {
		xml := strings.Replace(simple, "<index>0</index>", "<index>3</index>", 1)
		r := v.Validate(context.Background(), xml, order.SimpleRoad)
		require.False(t, r.Valid)
		assert.Contains(t, r.Errors, "Stop indices should start from 0")
		assert.Contains(t, r.Errors, "Stop indices should be sequential")

		xml = strings.Replace(simple, "<index>0</index>", "<index>first</index>", 1)
		r = v.Validate(context.Background(), xml, order.SimpleRoad)
		assert.Contains(t, r.Errors, "Stop index must be a number")
	})
}

func TestStructuralWinsOverBusiness(t *testing.T) {
	v, c := newTestValidator(t)
	xml := strings.Replace(example(t, c, order.SimpleRoad), "<status>N</status>", "<status>X</status>", 1)
	xml = strings.Replace(xml, "<reference>845</reference>", "<reference>-1</reference>", 1)

	r := v.Validate(context.Background(), xml, order.SimpleRoad)
	require.False(t, r.Valid)
	assert.False(t, r.Structural.Valid)
	assert.False(t, r.Business.Valid)
	assert.Equal(t, model.ErrorTypeStructural, r.ErrorType)
	assert.Len(t, r.Errors, 2)
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func generate(t *testing.T, c *catalog.Catalog, tt order.TransportType, mutate func(map[string]any)) *generator.Result {
	t.Helper()
	g, err := generator.NewFactory(c).Get(string(tt))
	require.NoError(t, err)
	in := g.ExampleInput()
	mutate(in)
	return g.Generate(context.Background(), in)
}

func TestGenerationAppliesValidationRules(t *testing.T) {
	v, c := newTestValidator(t)

	tests := []struct {
		name      string
		tt        order.TransportType
		mutate    func(map[string]any)
		wantError string
	}{
		{
			name:      "currency",
			tt:        order.SimpleRoad,
			mutate:    func(in map[string]any) { in["price_currency"] = "eur" },
			wantError: "currency must be a 3-letter ISO 4217 code",
		},
		{
			name:      "incoterms",
			tt:        order.ComplexRoad,
			mutate:    func(in map[string]any) { in["incoterms"] = "dap" },
			wantError: "incoterms must be a 3-letter code such as DAP",
		},
		{
			name: "stop indices",
			tt:   order.SimpleRoad,
			mutate: func(in map[string]any) {
				in["stops"].([]any)[0].(map[string]any)["index"] = 5
				in["stops"].([]any)[1].(map[string]any)["index"] = 6
			},
			wantError: "Stop indices should start from 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := generate(t, c, tc.tt, tc.mutate)
			require.False(t, res.Success, "generated %s", res.XML)
			assert.Equal(t, model.ErrorTypeBusinessRule, res.ErrorType)
			assert.Empty(t, res.XML)
			assert.Contains(t, strings.Join(res.Errors, "\n"), tc.wantError)
		})
	}

	res := generate(t, c, order.SimpleRoad, func(in map[string]any) { in["comment"] = "line\x0bfeed" })
	require.True(t, res.Success, res.Errors)
	r := v.Validate(context.Background(), res.XML, order.SimpleRoad)
	assert.True(t, r.Valid, "errors: %v", r.Errors)
	t.Logf("✓ generation rejects what validation rejects")
}

func TestSimpleRoadStopCountWarning(t *testing.T) {
	v, c := newTestValidator(t)
	simple := example(t, c, order.SimpleRoad)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(simple))
	stops := doc.FindElement("//transport_order/stops")
	require.NotNil(t, stops)
	existing := stops.SelectElements("stop")
	require.Len(t, existing, 2)

	last := existing[1]
	stops.RemoveChild(last)
	for i := 1; i <= 9; i++ {
		via := existing[0].Copy()
		via.SelectElement("id").SetText(fmt.Sprintf("via_%d", i))
		via.SelectElement("index").SetText(strconv.Itoa(i))
		stops.AddChild(via)
	}
	last.SelectElement("index").SetText("10")
	stops.AddChild(last)

	xml, err := doc.WriteToString()
	require.NoError(t, err)

	r := v.Validate(context.Background(), xml, order.SimpleRoad)
	require.True(t, r.Valid, "errors: %v", r.Errors)
	assert.True(t, r.Success)
	assert.Contains(t, r.Warnings, "simple_road: 11 stops exceeds the recommended maximum of 10")
}
