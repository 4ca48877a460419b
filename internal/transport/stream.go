package transport

import (
	"context"
	"net"
	"time"
)

// StreamDialer establishes plain Unix or TCP connections.
type StreamDialer struct {
	Timeout time.Duration
}

// Dial connects to address over network ("unix", "tcp", "tcp4",
// "tcp6").
func (d *StreamDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}
	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless stream dialers.
func (d *StreamDialer) Close() error { return nil }
