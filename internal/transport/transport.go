// Package transport provides abstractions for reaching a forwarder.
// Transports handle how the byte stream is established (a Unix socket,
// TCP, or a channel through an SSH gateway) independent of the NDN
// packets exchanged over it, which is the face's job.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound stream connections.  Implementations include
// a plain Unix/TCP dialer and an SSH-tunnelled dialer that routes
// traffic through an encrypted gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}

// DialFace connects d to the forwarder named by u.
func DialFace(ctx context.Context, d Dialer, u FaceURI) (net.Conn, error) {
	return d.Dial(ctx, u.Network, u.Address)
}
