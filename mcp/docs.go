// Package mcp provides the [Model Context Protocol (MCP)] server of the
// transport order toolkit.
//
// The server registers one tool per service operation (generate, validate,
// type info, type list, example and parameter requirements) and answers each
// call with the JSON encoded result, including failures, as text content.
// Usage instructions are rendered from markdown templates embedded under
// docs/templates/instructions. The server can be exposed over stdio or over
// the stateless streamable HTTP handler mounted by the router.
//
// [Model Context Protocol (MCP)]: https://modelcontextprotocol.io/docs/getting-started/intro
package mcp
