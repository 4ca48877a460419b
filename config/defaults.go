package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, client.conf parsing, and environment variable
// loading.

const (
	// DefaultForwarder is NFD's Unix socket on current installs.
	DefaultForwarder = "unix:///run/nfd/nfd.sock"

	// DefaultCommandPrefix is the management prefix of a local NFD.
	DefaultCommandPrefix = "/localhost/nfd"

	// DefaultCommandTimeout bounds a prefix-registration command.
	DefaultCommandTimeout = 10 * time.Second

	// DefaultIdentity names the key when -k is given without -S.
	DefaultIdentity = "/localhost/operator"

	// DefaultConnectAttempts dials the forwarder once; prefix
	// registration itself is never retried.
	DefaultConnectAttempts = 1

	// DefaultConnTimeout is the forwarder/SSH connection timeout.
	DefaultConnTimeout = 10 * time.Second

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22
)

