// Package ctxkey lists the keys stored on gin contexts.
package ctxkey

const (
	// KeyRequestBody caches the raw request body so handlers can read it twice.
	KeyRequestBody = "key_request_body"
	// ClientRequestPayloadLogged marks that the inbound payload was already logged.
	ClientRequestPayloadLogged = "client_request_payload_logged"
	// RequestID is the per request id, echoed in X-Request-Id.
	RequestID = "request_id"
)
