// Package service implements the transport order operations shared by the
// MCP tools, the REST API and the command line.
//
// Every operation returns a result embedding model.Envelope. Failures are
// reported in the envelope; internal errors are converted at this boundary.
package service

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/Laisky/zap"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/metrics"
	"github.com/Laisky/transport-order-mcp/common/tracing"
	"github.com/Laisky/transport-order-mcp/generator"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
	"github.com/Laisky/transport-order-mcp/validation"
)

// Service wires the catalog, the generators and the validator together.
type Service struct {
	catalog   *catalog.Catalog
	factory   *generator.Factory
	validator *validation.Validator
}

// New returns a Service backed by c.
func New(c *catalog.Catalog) *Service {
	return &Service{
		catalog:   c,
		factory:   generator.NewFactory(c),
		validator: validation.New(c),
	}
}

// Catalog returns the definitions the service reads from.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// TypeNames returns the supported transport types.
func (s *Service) TypeNames() []string { return s.factory.TypeNames() }

// Generate builds the XML of a transport order from a JSON object.
func (s *Service) Generate(ctx context.Context, transportType, orderJSON string) *generator.Result {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "service.generate",
		attribute.String("toxml.transport_type", transportType))

	res := s.generate(ctx, transportType, orderJSON)
	res.Normalize()

	tracing.EndSpan(span, res.Errors, nil)
	metrics.GlobalRecorder.RecordGeneration(start, transportType, res.Success, string(res.ErrorType))
	if !res.Success {
		metrics.GlobalRecorder.RecordError(string(res.ErrorType), "generate")
	}
	return res
}

func (s *Service) generate(ctx context.Context, transportType, orderJSON string) *generator.Result {
	g, err := s.factory.Get(transportType)
	if err != nil {
		return &generator.Result{
			Envelope:      model.Failed(model.ErrorTypeInvalidTransportType, err.Error()),
			TransportType: order.TransportType(transportType),
		}
	}

	raw, err := order.ParseJSON(orderJSON)
	if err != nil {
		logger.FromContext(ctx).Named("service").Debug("reject order data",
			zap.String("transport_type", transportType), zap.Error(err))
		return &generator.Result{
			Envelope:      model.Failed(model.ErrorTypeInvalidJSON, err.Error()),
			TransportType: g.Type(),
		}
	}
	return g.Generate(ctx, raw)
}

// Validate checks a transport order document. An empty transportType is
// detected from the document.
func (s *Service) Validate(ctx context.Context, xml, transportType string) *validation.Report {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "service.validate",
		attribute.String("toxml.transport_type", transportType),
		attribute.Int("toxml.xml_bytes", len(xml)))

	var r *validation.Report
	if transportType == "" {
		r = s.validator.Validate(ctx, xml, "")
	} else if g, err := s.factory.Get(transportType); err != nil {
		r = &validation.Report{
			Envelope:      model.Failed(model.ErrorTypeInvalidTransportType, err.Error()),
			TransportType: order.TransportType(transportType),
		}
	} else {
		r = s.validator.Validate(ctx, xml, g.Type())
	}
	r.Normalize()

	tracing.EndSpan(span, r.Errors, nil)
	metrics.GlobalRecorder.RecordValidation(start, string(r.TransportType), r.Valid, len(r.Errors), len(r.Warnings))
	if !r.Success {
		metrics.GlobalRecorder.RecordError(string(r.ErrorType), "validate")
	}
	return r
}

// TypeInfo describes a transport type and includes its example input.
func (s *Service) TypeInfo(ctx context.Context, transportType string) *TypeInfoResult {
	ctx, span := tracing.StartSpan(ctx, "service.type_info",
		attribute.String("toxml.transport_type", transportType))

	res := &TypeInfoResult{Envelope: model.Succeeded()}
	g, err := s.factory.Get(transportType)
	if err != nil {
		res.Envelope = s.fail(ctx, err)
		res.AvailableTypes = s.factory.TypeNames()
	} else if info, err := g.Info(); err != nil {
		res.Envelope = s.fail(ctx, err)
	} else {
		res.Info = info
		res.ExampleInput = g.ExampleInput()
	}

	tracing.EndSpan(span, res.Errors, nil)
	return res
}

// ListTypes returns every supported transport type with its description.
func (s *Service) ListTypes(ctx context.Context) *TypesResult {
	ctx, span := tracing.StartSpan(ctx, "service.list_types")

	res := &TypesResult{
		Envelope:       model.Succeeded(),
		TransportTypes: s.factory.TypeNames(),
		Descriptions:   map[string]string{},
	}
	for _, t := range s.factory.Types() {
		params, err := s.catalog.TransportParameters(t)
		if err != nil {
			res.Envelope = s.fail(ctx, err)
			break
		}
		res.Descriptions[string(t)] = params.Description
	}
	res.TotalCount = len(res.TransportTypes)

	tracing.EndSpan(span, res.Errors, nil)
	return res
}

// Example returns the example input of a type and the reference XML.
func (s *Service) Example(ctx context.Context, transportType string) *ExampleResult {
	ctx, span := tracing.StartSpan(ctx, "service.example",
		attribute.String("toxml.transport_type", transportType))

	res := &ExampleResult{Envelope: model.Succeeded()}
	g, err := s.factory.Get(transportType)
	if err != nil {
		res.Envelope = s.fail(ctx, err)
		res.AvailableTypes = s.factory.TypeNames()
		tracing.EndSpan(span, res.Errors, nil)
		return res
	}

	res.TransportType = g.Type()
	res.ExampleInput = g.ExampleInput()
	xml, err := s.catalog.Example(g.Type())
	switch {
	case stdErrors.Is(err, catalog.ErrNotFound):
		res.AddWarning("Example XML file not found")
	case err != nil:
		res.Envelope = s.fail(ctx, err)
	default:
		res.ExampleXML = xml
	}

	tracing.EndSpan(span, res.Errors, nil)
	return res
}

// ParameterRequirements lists the field definitions, fixed values and rules
// of a transport type.
func (s *Service) ParameterRequirements(ctx context.Context, transportType string) *RequirementsResult {
	ctx, span := tracing.StartSpan(ctx, "service.parameter_requirements",
		attribute.String("toxml.transport_type", transportType))

	res := &RequirementsResult{Envelope: model.Succeeded()}
	g, err := s.factory.Get(transportType)
	if err != nil {
		res.Envelope = s.fail(ctx, err)
		res.AvailableTypes = s.factory.TypeNames()
		tracing.EndSpan(span, res.Errors, nil)
		return res
	}
	t := g.Type()
	res.TransportType = t

	if err := s.requirements(t, res); err != nil {
		res.Envelope = s.fail(ctx, err)
	}
	tracing.EndSpan(span, res.Errors, nil)
	return res
}

func (s *Service) requirements(t order.TransportType, res *RequirementsResult) (err error) {
	if res.TransportParameters, err = s.catalog.TransportParameters(t); err != nil {
		return err
	}
	if res.OrderParameters, err = s.catalog.OrderParameters(t); err != nil && !stdErrors.Is(err, catalog.ErrNotFound) {
		return err
	}
	if res.ItemParameters, err = s.catalog.ItemParameters(t); err != nil && !stdErrors.Is(err, catalog.ErrNotFound) {
		return err
	}
	if res.FixedParameters, err = s.catalog.FixedParameters(t); err != nil {
		return err
	}
	if res.BusinessRules, err = s.catalog.RulesFor(t); err != nil {
		return err
	}
	if res.ValidationRules, err = s.catalog.TypeRules(t); err != nil {
		return err
	}
	return nil
}

// ReloadCatalog drops every cached definition so the next call reads the
// templates and rules again.
func (s *Service) ReloadCatalog(ctx context.Context) *ReloadResult {
	s.catalog.ClearCache()

	res := &ReloadResult{Envelope: model.Succeeded()}
	templates, err := s.catalog.AvailableTemplates()
	if err != nil {
		res.Envelope = s.fail(ctx, err)
	}
	res.Templates = templates
	if res.Templates == nil {
		res.Templates = []string{}
	}
	return res
}

// fail converts an error into an envelope. Unknown transport types become
// invalid_transport_type, anything else is a system error.
func (s *Service) fail(ctx context.Context, err error) model.Envelope {
	var unknown *generator.UnknownTypeError
	if stdErrors.As(err, &unknown) {
		metrics.GlobalRecorder.RecordError(string(model.ErrorTypeInvalidTransportType), "service")
		return model.Failed(model.ErrorTypeInvalidTransportType, err.Error())
	}

	logger.FromContext(ctx).Named("service").Error("operation failed", zap.Error(err))
	metrics.GlobalRecorder.RecordError(string(model.ErrorTypeSystem), "service")
	return model.Failed(model.ErrorTypeSystem, err.Error())
}
