package service

import (
	"github.com/Laisky/transport-order-mcp/catalog"
	"github.com/Laisky/transport-order-mcp/generator"
	"github.com/Laisky/transport-order-mcp/model"
	"github.com/Laisky/transport-order-mcp/order"
)

// TypeInfoResult describes one transport type.
type TypeInfoResult struct {
	model.Envelope
	*generator.Info
	ExampleInput   map[string]any `json:"example_input,omitempty"`
	AvailableTypes []string       `json:"available_types,omitempty"`
}

// TypesResult lists the supported transport types.
type TypesResult struct {
	model.Envelope
	TransportTypes []string          `json:"transport_types"`
	Descriptions   map[string]string `json:"descriptions"`
	TotalCount     int               `json:"total_count"`
}

// ExampleResult carries example input and the XML it corresponds to.
type ExampleResult struct {
	model.Envelope
	TransportType  order.TransportType `json:"transport_type,omitempty"`
	ExampleInput   map[string]any      `json:"example_input,omitempty"`
	ExampleXML     string              `json:"example_xml,omitempty"`
	AvailableTypes []string            `json:"available_types,omitempty"`
}

// RequirementsResult lists every definition and rule that applies to a type.
type RequirementsResult struct {
	model.Envelope
	TransportType       order.TransportType          `json:"transport_type,omitempty"`
	TransportParameters *catalog.TransportParameters `json:"transport_parameters,omitempty"`
	OrderParameters     *catalog.OrderParameters     `json:"order_parameters,omitempty"`
	ItemParameters      *catalog.ItemParameters      `json:"item_parameters,omitempty"`
	FixedParameters     *catalog.FixedParameters     `json:"fixed_parameters,omitempty"`
	BusinessRules       []catalog.BusinessRule       `json:"business_rules,omitempty"`
	ValidationRules     *catalog.TypeRules           `json:"validation_rules,omitempty"`
	AvailableTypes      []string                     `json:"available_types,omitempty"`
}

// ReloadResult reports a catalog cache reset.
type ReloadResult struct {
	model.Envelope
	Templates []string `json:"templates"`
}
