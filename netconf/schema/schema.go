// Package schema defines the opaque schema-context handle NETCONF
// sessions carry but never interpret: YANG module validation is an
// external collaborator, not something this module implements. A
// Context is produced by get-schema/hello capability negotiation and
// handed to whatever validator the caller wires in.
package schema

// Context is an opaque handle to the set of YANG modules a session's
// peer has advertised, built from its hello capabilities and any
// get-schema retrievals. This module never parses or validates against
// it; it exists so callers can pass a stable reference to a real
// schema/validation library without this package depending on one.
type Context struct {
	// Capabilities lists the advertised netconf:capability and
	// module-defined (http://.../yang-module-name) capability URIs.
	Capabilities []string
	// Modules maps module name to the (name, revision) identity reported
	// in the capability URI or by get-schema, without attempting to
	// parse or fetch schema content.
	Modules map[string]Module
}

// Module identifies one advertised or retrieved YANG module.
type Module struct {
	Name       string
	Revision   string
	Namespace  string
	Identifier string // opaque identifier used with get-schema, when present
}

// New builds a Context from a peer's advertised capability list,
// extracting module identity where present without validating the
// modules themselves.
func New(capabilities []string) *Context {
	return &Context{Capabilities: capabilities, Modules: map[string]Module{}}
}
