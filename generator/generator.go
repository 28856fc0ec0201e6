// Package generator turns structured order data into transport order XML.
//
// Every transport type runs the same pipeline: business rules rewrite the raw
// input, the input is decoded and checked, a Document is collected, the type
// template is rendered and the output is normalised through an XML DOM.
// Types differ only in their checks and in how they fill the Document.
package generator

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/common/tracing"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

// Generator builds documents of one transport type.
type Generator interface {
	Type() order.TransportType
	// Info describes the type: its fields, fixed values and capabilities.
	Info() (*Info, error)
	// ExampleInput returns order data that generates a valid document.
	ExampleInput() map[string]any
	// ValidateInput checks decoded input without generating anything.
	ValidateInput(in *order.Input) *InputCheck
	// Generate runs the whole pipeline. Problems are reported in the Result.
	Generate(ctx context.Context, raw map[string]any) *Result
}

// Result is the outcome of a generation.
type Result struct {
	model.Envelope
	XML               string              `json:"xml_content,omitempty"`
	TransportType     order.TransportType `json:"transport_type"`
	OrderNumber       string              `json:"order_number,omitempty"`
	SuggestedOptional []string            `json:"suggested_optional,omitempty"`
	Metadata          map[string]any      `json:"metadata,omitempty"`
}

// Info describes a transport type.
type Info struct {
	TransportType      order.TransportType `json:"transport_type"`
	Description        string              `json:"description"`
	RequiredFields     []catalog.FieldDef  `json:"required_fields"`
	OptionalFields     []catalog.FieldDef  `json:"optional_fields"`
	OceanParameters    []catalog.FieldDef  `json:"ocean_parameters,omitempty"`
	FixedValues        map[string]string   `json:"fixed_values,omitempty"`
	SupportsPricing    bool                `json:"supports_pricing"`
	SupportsOrderItems bool                `json:"supports_order_items"`
	SupportsVehicle    bool                `json:"supports_vehicle"`
	TemplateSource     string              `json:"template_source"`
}

// InputCheck collects the problems found in order data.
type InputCheck struct {
	Errors      []string
	Warnings    []string
	Missing     []string
	Suggestions []string
}

// Valid reports whether generation may proceed.
func (c *InputCheck) Valid() bool {
	return len(c.Errors) == 0 && len(c.Missing) == 0
}

func (c *InputCheck) errorf(msg string) {
	if !slices.Contains(c.Errors, msg) {
		c.Errors = append(c.Errors, msg)
	}
}

func (c *InputCheck) warn(msg string) {
	if !slices.Contains(c.Warnings, msg) {
		c.Warnings = append(c.Warnings, msg)
	}
}

// typeHooks is what a transport type adds to the shared pipeline.
type typeHooks interface {
	// prepare adjusts the raw input before it is decoded.
	prepare(raw map[string]any) error
	// check adds type specific problems.
	check(in *order.Input, chk *InputCheck)
	// fill completes the document and may add warnings.
	fill(in *order.Input, doc *Document, chk *InputCheck) error
	// metadata describes the generated document.
	metadata(in *order.Input, doc *Document) map[string]any
	example() map[string]any
}

// base is the pipeline shared by every transport type.
type base struct {
	kind    order.TransportType
	catalog *catalog.Catalog
	hooks   typeHooks
}

func (b *base) Type() order.TransportType { return b.kind }

func (b *base) ExampleInput() map[string]any { return b.hooks.example() }

// Info implements Generator.
func (b *base) Info() (*Info, error) {
	params, err := b.catalog.TransportParameters(b.kind)
	if err != nil {
		return nil, err
	}
	fixed, err := b.catalog.FixedParameters(b.kind)
	if err != nil {
		return nil, err
	}

	return &Info{
		TransportType:      b.kind,
		Description:        params.Description,
		RequiredFields:     params.RequiredFields,
		OptionalFields:     params.OptionalFields,
		OceanParameters:    params.OceanParameters,
		FixedValues:        fixed.Values,
		SupportsPricing:    params.SupportsPricing,
		SupportsOrderItems: params.SupportsOrderItems,
		SupportsVehicle:    params.SupportsVehicle,
		TemplateSource:     b.catalog.TemplateSource(b.kind),
	}, nil
}

// ValidateInput implements Generator.
func (b *base) ValidateInput(in *order.Input) *InputCheck {
	chk := &InputCheck{}

	params, err := b.catalog.TransportParameters(b.kind)
	if err != nil {
		chk.errorf(err.Error())
		return chk
	}
	for _, f := range params.RequiredFields {
		if f.HasDefault() || in.Has(f.Name) {
			continue
		}
		chk.Missing = append(chk.Missing, f.Prompt())
	}
	for _, f := range params.OptionalFields {
		if !in.Has(f.Name) {
			chk.Suggestions = append(chk.Suggestions, f.Suggestion())
		}
	}

	for _, msg := range order.ValidateStruct(in) {
		chk.errorf(msg)
	}
	b.checkStopReferences(in, chk)
	b.checkFieldRules(in, chk)
	checkStopIndices(in, chk)
	b.hooks.check(in, chk)
	return chk
}

// defaultValue returns the catalog default of a transport field, or "".
func (b *base) defaultValue(name string) string {
	params, err := b.catalog.TransportParameters(b.kind)
	if err != nil {
		return ""
	}
	if f, ok := params.Field(name); ok && f.HasDefault() {
		return *f.Default
	}
	return ""
}

// ruleInputs maps the paths of the structural field rules to the input
// fields rendered at those paths.
var ruleInputs = map[string]struct {
	name  string
	value func(*order.Input) order.Text
}{
	"number":                         {"number", func(in *order.Input) order.Text { return in.Number }},
	"status":                         {"status", func(in *order.Input) order.Text { return in.Status }},
	"scheduling_unit":                {"scheduling_unit", func(in *order.Input) order.Text { return in.SchedulingUnit }},
	"carrier_creditor_number":        {"carrier_creditor_number", func(in *order.Input) order.Text { return in.CarrierCreditorNumber }},
	"vehicle":                        {"vehicle", func(in *order.Input) order.Text { return in.Vehicle }},
	"prices/currency":                {"price_currency", func(in *order.Input) order.Text { return in.PriceCurrency }},
	"orders/order_details/number":    {"order_number", func(in *order.Input) order.Text { return in.OrderNumber }},
	"orders/order_details/incoterms": {"incoterms", func(in *order.Input) order.Text { return in.Incoterms }},
}

// checkFieldRules applies the structural field rules to the supplied input
// fields, so that generated documents pass the same rules on validation.
func (b *base) checkFieldRules(in *order.Input, chk *InputCheck) {
	rules, err := b.catalog.FieldRules()
	if err != nil {
		chk.errorf(err.Error())
		return
	}
	for _, r := range rules {
		field, ok := ruleInputs[r.Path]
		if !ok || !in.Has(field.name) {
			continue
		}
		v := strings.TrimSpace(field.value(in).String())
		if v == "" {
			continue
		}

		n := utf8.RuneCountInString(v)
		if r.MinLength != nil && n < *r.MinLength {
			chk.errorf(fmt.Sprintf("%s is too short (minimum %d characters)", field.name, *r.MinLength))
		}
		if r.MaxLength != nil && n > *r.MaxLength {
			chk.errorf(fmt.Sprintf("%s is too long (maximum %d characters)", field.name, *r.MaxLength))
		}
		if !r.Matches(v) {
			msg := r.Message
			if msg == "" {
				msg = "format is invalid"
			}
			chk.errorf(fmt.Sprintf("%s: %s, got %q", field.name, msg, v))
		}
		if len(r.AllowedValues) > 0 && !slices.Contains(r.AllowedValues, v) {
			chk.errorf(fmt.Sprintf("%s must be one of %s, got %q", field.name, strings.Join(r.AllowedValues, ", "), v))
		}
	}
}

// checkStopIndices requires caller supplied stop indices to be 0-based and
// sequential once stops without an index take their position.
func checkStopIndices(in *order.Input, chk *InputCheck) {
	supplied := false
	indices := make([]int, 0, len(in.Stops))
	for i, s := range in.Stops {
		if s.Index != nil {
			supplied = true
		}
		indices = append(indices, stopIndex(s, i))
	}
	if !supplied {
		return
	}

	slices.Sort(indices)
	if indices[0] != 0 {
		chk.errorf("Stop indices should start from 0")
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			chk.errorf("Stop indices should be sequential")
			break
		}
	}
}

// checkStopReferences requires unique stop ids and loading/unloading ids
// that point at existing stops.
func (b *base) checkStopReferences(in *order.Input, chk *InputCheck) {
	known := map[string]bool{}
	for i, s := range in.Stops {
		id := stopID(s, i)
		if known[id] {
			chk.errorf("Stop id '" + id + "' is used by more than one stop")
		}
		known[id] = true
	}
	if len(in.Stops) == 0 {
		return
	}

	for _, ref := range []struct {
		field string
		ids   []order.Text
	}{
		{"loading_stop_ids", in.LoadingStopIDs},
		{"unloading_stop_ids", in.UnloadingStopIDs},
	} {
		for _, id := range textList(ref.ids) {
			if !known[id] {
				chk.errorf(ref.field + " references unknown stop '" + id + "'")
			}
		}
	}
}

// Generate implements Generator.
func (b *base) Generate(ctx context.Context, raw map[string]any) *Result {
	start := time.Now()
	lg := logger.FromContext(ctx).Named("generator")
	typeField := zap.String("transport_type", string(b.kind))

	res := &Result{
		Envelope:      model.Succeeded(),
		TransportType: b.kind,
	}
	fail := func(errType model.ErrorType, err error) *Result {
		res.Envelope = model.Failed(errType, err.Error())
		lg.Debug("generation failed", typeField, zap.String("error_type", string(errType)), zap.Error(err))
		return res
	}

	raw = maps.Clone(raw)
	if raw == nil {
		raw = map[string]any{}
	}
	if err := b.applyRules(raw); err != nil {
		return fail(model.ErrorTypeSystem, err)
	}
	if err := b.hooks.prepare(raw); err != nil {
		return fail(model.ErrorTypeGeneration, err)
	}

	in, err := order.Decode(raw)
	if err != nil {
		return fail(model.ErrorTypeInvalidJSON, err)
	}

	chk := b.ValidateInput(in)
	for _, w := range chk.Warnings {
		res.AddWarning(w)
	}
	if !chk.Valid() {
		res.Success = false
		res.ErrorType = model.Classify(false, len(chk.Missing) > 0, len(chk.Errors) > 0)
		res.ErrorMessage = "order data is incomplete or violates transport rules"
		for _, e := range chk.Errors {
			res.AddError(e)
		}
		for _, m := range chk.Missing {
			res.AddMissing(m)
		}
		res.SuggestedOptional = chk.Suggestions
		lg.Debug("order data rejected", typeField,
			zap.Int("errors", len(chk.Errors)),
			zap.Int("missing", len(chk.Missing)))
		return res
	}

	doc := newDocument(in)
	doc.Status = orDefault(doc.Status, b.defaultValue("status"))
	doc.Stops = stopViews(in.Stops)
	doc.Order.LoadingStopIDs = textList(in.LoadingStopIDs)
	doc.Order.UnloadingStopIDs = textList(in.UnloadingStopIDs)
	if len(doc.Stops) > 0 {
		if len(doc.Order.LoadingStopIDs) == 0 {
			doc.Order.LoadingStopIDs = []string{doc.Stops[0].ID}
		}
		if len(doc.Order.UnloadingStopIDs) == 0 {
			doc.Order.UnloadingStopIDs = []string{doc.Stops[len(doc.Stops)-1].ID}
		}
	}

	if err := b.hooks.fill(in, doc, chk); err != nil {
		return fail(model.ErrorTypeGeneration, err)
	}
	for _, w := range chk.Warnings {
		res.AddWarning(w)
	}

	tmpl, err := b.catalog.Template(b.kind)
	if err != nil {
		return fail(model.ErrorTypeSystem, err)
	}
	xml, err := render(tmpl, doc)
	if err != nil {
		return fail(model.ErrorTypeGeneration, errors.Wrapf(err, "generate %s", b.kind))
	}

	res.XML = xml
	res.OrderNumber = doc.Number
	res.Metadata = b.hooks.metadata(in, doc)
	res.Metadata["generation_id"] = tracing.NewOperationID(ctx)
	res.Metadata["generated_at"] = time.Now().UTC().Format(time.RFC3339)

	lg.Info("transport order generated", typeField,
		zap.String("number", doc.Number),
		zap.String("route", describeStops(doc.Stops)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("took", time.Since(start)))
	return res
}
