// Package validation checks transport order XML in two passes.
//
// The structural pass verifies that the document is well formed and carries
// the elements every transport order needs. The business pass applies the
// rules of the transport type, and a cross field pass compares values that
// live in different parts of the document. Problems are reported in a
// Report, never as a Go error.
package validation

import (
	"context"
	"time"

	"github.com/Laisky/zap"

	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/common/logger"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

// Validator validates documents against the rules held by a catalog.
type Validator struct {
	catalog *catalog.Catalog
}

// New returns a Validator reading its rules from c.
func New(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate checks xml as a document of type t. An empty t is detected from
// the document itself.
func (v *Validator) Validate(ctx context.Context, xml string, t order.TransportType) *Report {
	start := time.Now()
	lg := logger.FromContext(ctx).Named("validation")

	r := &Report{
		TransportType: t,
		Structural:    newPass(),
		Business:      newPass(),
		CrossField:    newPass(),
	}

	fieldRules, err := v.catalog.FieldRules()
	if err != nil {
		return v.systemError(ctx, r, err)
	}

	to := parse(xml, &r.Structural)
	if to == nil {
		r.finish()
		lg.Debug("document rejected before validation", zap.Strings("errors", r.Errors))
		return r
	}

	if r.TransportType == "" {
		r.TransportType = detectType(to)
		r.TypeDetected = true
	}
	typeRules, err := v.catalog.TypeRules(r.TransportType)
	if err != nil {
		return v.systemError(ctx, r, err)
	}

	checkStructure(to, &r.Structural)
	checkFieldRules(to, fieldRules, &r.Structural)
	checkParameterFormats(to, &r.Structural)
	checkStopReferences(to, &r.Structural)

	checkTypeRules(to, r.TransportType, typeRules, &r.Business)
	checkOceanCompleteness(to, &r.Business)

	checkCrossField(to, &r.CrossField)

	r.finish()
	lg.Debug("document validated",
		zap.String("transport_type", string(r.TransportType)),
		zap.Bool("detected", r.TypeDetected),
		zap.Bool("valid", r.Valid),
		zap.Int("errors", len(r.Errors)),
		zap.Int("warnings", len(r.Warnings)),
		zap.Duration("took", time.Since(start)))
	return r
}

func (v *Validator) systemError(ctx context.Context, r *Report, err error) *Report {
	logger.FromContext(ctx).Named("validation").Error("load validation rules", zap.Error(err))
	r.Envelope = model.Failed(model.ErrorTypeSystem, "load validation rules: "+err.Error())
	return r
}
