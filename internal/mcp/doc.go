// Package mcp implements the Model Context Protocol (MCP) server for serena
// using the mcp-go library.
//
// The package owns the server lifecycle: it constructs the underlying MCP
// server, registers the agent tools, serves the protocol over the streamable
// HTTP transport and coordinates graceful shutdown. The lifecycle is modeled
// as an explicit state machine (see state.go):
//
//	CONSTRUCTED -> TOOLS_REGISTERING -> READY -> SERVING -> SHUTTING_DOWN -> STOPPED
//
// with ERROR reachable from any non-terminal state.
//
// # Liveness vs readiness
//
// GET /health answers as soon as the listener is up, in every state except
// ERROR and STOPPED. Tool registration happens after the listener is bound,
// so an orchestrator's liveness probe never fails just because registration
// is slow. The MCP transport itself, mounted at the root catch-all with
// endpoint /mcp, rejects requests with 503 until the coordinator is READY.
//
// # Tools
//
// Tools are registered once per coordinator, idempotently, parameterized by
// a compatibility profile: the default profile carries full schemas, the
// strict profile trims optional parameters for schema-restrictive clients.
// Project-scoped tools operate on the project activated through the
// activate_project tool, backed by the resolver in internal/project.
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp
