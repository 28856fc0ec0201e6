package validation

import (
	"fmt"
	"slices"

	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

// Pass is the outcome of one validation pass.
type Pass struct {
	Valid    bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func newPass() Pass {
	return Pass{Valid: true, Errors: []string{}, Warnings: []string{}}
}

func (p *Pass) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.Valid = false
	if !slices.Contains(p.Errors, msg) {
		p.Errors = append(p.Errors, msg)
	}
}

func (p *Pass) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !slices.Contains(p.Warnings, msg) {
		p.Warnings = append(p.Warnings, msg)
	}
}

// Report is the result of validating one document.
//
// Success is false when any pass found an error. ErrorType is
// structural_error when the structural pass failed and business_rule_error
// when only the business or cross field passes did.
type Report struct {
	model.Envelope
	Valid         bool                `json:"is_valid"`
	TransportType order.TransportType `json:"transport_type,omitempty"`
	TypeDetected  bool                `json:"type_detected,omitempty"`
	Structural    Pass                `json:"structural_validation"`
	Business      Pass                `json:"business_validation"`
	CrossField    Pass                `json:"cross_field_validation"`
}

// finish merges the passes into the envelope.
func (r *Report) finish() {
	r.Envelope = model.Succeeded()
	for _, p := range []Pass{r.Structural, r.Business, r.CrossField} {
		for _, e := range p.Errors {
			r.AddError(e)
		}
		for _, w := range p.Warnings {
			r.AddWarning(w)
		}
	}

	r.Valid = r.Structural.Valid && r.Business.Valid && r.CrossField.Valid
	if r.Valid {
		return
	}
	r.Success = false
	r.ErrorType = model.Classify(!r.Structural.Valid, false, !r.Business.Valid || !r.CrossField.Valid)
	r.ErrorMessage = fmt.Sprintf("document has %d validation error(s)", len(r.Errors))
}
