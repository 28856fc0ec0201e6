package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

func newTestService(t *testing.T, opts ...catalog.Option) *Service {
	t.Helper()
	c, err := catalog.New(opts...)
	require.NoError(t, err)
	return New(c)
}

func exampleJSON(t *testing.T, s *Service, tt order.TransportType) string {
	t.Helper()
	res := s.Example(context.Background(), string(tt))
	require.True(t, res.Success)
	body, err := json.Marshal(res.ExampleInput)
	require.NoError(t, err)
	return string(body)
}

func TestGenerate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	t.Run("round trip through validation", func(t *testing.T) {
		for _, tt := range order.AllTypes {
			res := s.Generate(ctx, string(tt), exampleJSON(t, s, tt))
			require.True(t, res.Success, "%s: %v", tt, res.Errors)
			assert.NotEmpty(t, res.XML)

			report := s.Validate(ctx, res.XML, string(tt))
			assert.True(t, report.Valid, "%s: %v", tt, report.Errors)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		res := s.Generate(ctx, "air_freight", "{}")
		assert.False(t, res.Success)
		assert.Equal(t, model.ErrorTypeInvalidTransportType, res.ErrorType)
		assert.Contains(t, res.ErrorMessage, "simple_road, complex_road, ocean_visibility")
		assert.Equal(t, []string{}, res.Warnings)
		assert.Equal(t, []string{}, res.MissingRequired)
	})

	t.Run("invalid json", func(t *testing.T) {
		for _, body := range []string{"", "{", "[1,2]", `{"number": "1"} trailing`} {
			res := s.Generate(ctx, "simple_road", body)
			assert.False(t, res.Success, body)
			assert.Equal(t, model.ErrorTypeInvalidJSON, res.ErrorType, body)
		}
	})

	t.Run("long numeric order number is kept", func(t *testing.T) {
		res := s.Generate(ctx, "complex_road", `{
			"number": 81310198123456789,
			"scheduling_unit": "BCO",
			"carrier_creditor_number": "0000203512",
			"stops": [
				{"location": {"company_name": "A", "city": "B", "country": "US"},
				 "date_time_period": {"start": "2025-09-25T00:00:00Z", "end": "2025-09-25T00:00:00Z"}},
				{"location": {"company_name": "C", "city": "D", "country": "US"},
				 "date_time_period": {"start": "2025-09-26T00:00:00Z", "end": "2025-09-26T00:00:00Z"}}
			]
		}`)
		require.True(t, res.Success, res.Errors)
		assert.Equal(t, "81310198123456789", res.OrderNumber)
		assert.Contains(t, res.XML, "<id>stop_1</id>")
	})

	t.Run("envelope serialises flat", func(t *testing.T) {
		res := s.Generate(ctx, "simple_road", `{"number": "1"}`)
		body, err := json.Marshal(res)
		require.NoError(t, err)

		var flat map[string]any
		require.NoError(t, json.Unmarshal(body, &flat))
		assert.Equal(t, false, flat["success"])
		assert.Equal(t, "missing_field", flat["error_type"])
		assert.NotEmpty(t, flat["missing_required"])
		assert.Contains(t, flat, "errors")
		assert.Contains(t, flat, "warnings")
		assert.NotContains(t, flat, "xml_content")
	})
}

func TestValidate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	xml := s.Example(ctx, "ocean_visibility").ExampleXML

	r := s.Validate(ctx, xml, "")
	assert.True(t, r.Valid)
	assert.True(t, r.TypeDetected)
	assert.Equal(t, order.OceanVisibility, r.TransportType)

	r = s.Validate(ctx, xml, "rail")
	assert.False(t, r.Success)
	assert.Equal(t, model.ErrorTypeInvalidTransportType, r.ErrorType)

	r = s.Validate(ctx, "<broken", "simple_road")
	assert.False(t, r.Success)
	assert.Equal(t, model.ErrorTypeStructural, r.ErrorType)
}

func TestTypeInfo(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := s.TypeInfo(ctx, "complex_road")
	require.True(t, res.Success)
	require.NotNil(t, res.Info)
	assert.Equal(t, order.ComplexRoad, res.TransportType)
	assert.True(t, res.SupportsOrderItems)
	assert.NotEmpty(t, res.ExampleInput)

	res = s.TypeInfo(ctx, "unknown")
	assert.False(t, res.Success)
	assert.Equal(t, model.ErrorTypeInvalidTransportType, res.ErrorType)
	assert.Equal(t, order.TypeNames(), res.AvailableTypes)
}

func TestListTypes(t *testing.T) {
	s := newTestService(t)

	res := s.ListTypes(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, order.TypeNames(), res.TransportTypes)
	for _, name := range res.TransportTypes {
		assert.NotEmpty(t, res.Descriptions[name], name)
	}
}

func TestExample(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	res := s.Example(ctx, "simple_road")
	require.True(t, res.Success)
	assert.Contains(t, res.ExampleXML, "<number>1404338</number>")
	assert.Equal(t, "1404338", res.ExampleInput["number"])

	res = s.Example(ctx, "boat")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.AvailableTypes)
}

func TestParameterRequirements(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	complexRes := s.ParameterRequirements(ctx, "complex_road")
	require.True(t, complexRes.Success, complexRes.Errors)
	assert.NotNil(t, complexRes.ItemParameters)
	assert.NotEmpty(t, complexRes.TransportParameters.ParameterLevels.Order)
	assert.Len(t, complexRes.BusinessRules, 1)
	assert.Equal(t, 20, complexRes.ValidationRules.MaximumStops)

	simpleRes := s.ParameterRequirements(ctx, "simple_road")
	require.True(t, simpleRes.Success, simpleRes.Errors)
	assert.Nil(t, simpleRes.ItemParameters)
	assert.Len(t, simpleRes.BusinessRules, 2)

	oceanRes := s.ParameterRequirements(ctx, "ocean_visibility")
	require.True(t, oceanRes.Success, oceanRes.Errors)
	assert.Equal(t, "true", oceanRes.FixedParameters.Parameters[order.QualifierOceanProduct])
	assert.Empty(t, oceanRes.BusinessRules)
}

func TestReloadCatalogPicksUpOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "examples"), 0o755))
	s := newTestService(t, catalog.WithDir(dir))
	ctx := context.Background()

	before := s.Example(ctx, "simple_road").ExampleXML
	require.NoError(t, os.WriteFile(filepath.Join(dir, "examples", "simple_road.xml"), []byte("<custom/>"), 0o644))
	assert.Equal(t, before, s.Example(ctx, "simple_road").ExampleXML)

	res := s.ReloadCatalog(ctx)
	require.True(t, res.Success)
	assert.Contains(t, res.Templates, "simple_road")
	assert.Equal(t, "<custom/>", s.Example(ctx, "simple_road").ExampleXML)
}
