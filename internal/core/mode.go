// Package core is the orchestration layer.  It composes a transport, a
// face and the responder into a complete run and provides a builder
// that derives that run from a Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  face  →  poke  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a complete operation of ndnpoke.  It owns its full lifecycle
// from connecting to the forwarder to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
