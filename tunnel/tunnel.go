// Package tunnel defines the Tunnel interface and provides an SSH
// implementation backed by golang.org/x/crypto/ssh, so a forwarder
// socket on a remote host can be used as if it were local.
package tunnel

import (
	"context"
	"net"
)

// Tunnel abstracts an encrypted channel through which stream
// connections can be forwarded.
type Tunnel interface {
	// Connect establishes the tunnel to the gateway.
	Connect(ctx context.Context) error

	// Dial opens a connection to address on the gateway side.  network
	// is "tcp", "tcp4", "tcp6" or "unix".
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close tears down the tunnel and frees resources.
	Close() error

	// IsAlive reports whether the underlying connection is still up.
	IsAlive() bool
}
