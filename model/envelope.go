// Package model holds the result types shared by every transport order operation.
package model

import (
	"slices"
)

// ErrorType categorises why an operation did not succeed.
type ErrorType string

const (
	ErrorTypeNone                 ErrorType = ""
	ErrorTypeInvalidTransportType ErrorType = "invalid_transport_type"
	ErrorTypeInvalidJSON          ErrorType = "invalid_json"
	ErrorTypeMissingField         ErrorType = "missing_field"
	ErrorTypeBusinessRule         ErrorType = "business_rule_error"
	ErrorTypeStructural           ErrorType = "structural_error"
	ErrorTypeGeneration           ErrorType = "generation_error"
	ErrorTypeSystem               ErrorType = "system_error"
)

// Envelope is embedded in every operation result. Problems are reported as
// data: a failed operation still returns a value, never a Go error.
type Envelope struct {
	Success         bool      `json:"success"`
	ErrorType       ErrorType `json:"error_type,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	Errors          []string  `json:"errors"`
	Warnings        []string  `json:"warnings"`
	MissingRequired []string  `json:"missing_required"`
}

// Succeeded returns a successful envelope with empty problem lists.
func Succeeded() Envelope {
	return Envelope{
		Success:         true,
		Errors:          []string{},
		Warnings:        []string{},
		MissingRequired: []string{},
	}
}

// Failed returns an envelope for an operation that could not run at all.
func Failed(errType ErrorType, msg string) Envelope {
	e := Succeeded()
	e.Success = false
	e.ErrorType = errType
	e.ErrorMessage = msg
	if msg != "" {
		e.Errors = append(e.Errors, msg)
	}
	return e
}

// IsSuccess reports whether the operation succeeded.
func (e *Envelope) IsSuccess() bool {
	return e.Success
}

// AddError records an error once.
func (e *Envelope) AddError(msg string) {
	if !slices.Contains(e.Errors, msg) {
		e.Errors = append(e.Errors, msg)
	}
}

// AddWarning records a warning once.
func (e *Envelope) AddWarning(msg string) {
	if !slices.Contains(e.Warnings, msg) {
		e.Warnings = append(e.Warnings, msg)
	}
}

// AddMissing records a missing required field prompt once.
func (e *Envelope) AddMissing(msg string) {
	if !slices.Contains(e.MissingRequired, msg) {
		e.MissingRequired = append(e.MissingRequired, msg)
	}
}

// Normalize replaces nil lists with empty ones so that JSON output always
// carries arrays.
func (e *Envelope) Normalize() {
	if e.Errors == nil {
		e.Errors = []string{}
	}
	if e.Warnings == nil {
		e.Warnings = []string{}
	}
	if e.MissingRequired == nil {
		e.MissingRequired = []string{}
	}
}

// Classify picks the error type when several kinds of problems were found:
// structural problems win over missing fields, which win over business rules.
func Classify(structural, missing, business bool) ErrorType {
	switch {
	case structural:
		return ErrorTypeStructural
	case missing:
		return ErrorTypeMissingField
	case business:
		return ErrorTypeBusinessRule
	default:
		return ErrorTypeNone
	}
}
