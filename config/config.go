// Package config defines the runtime configuration for ndnpoke and
// provides helpers for parsing tunnel specifications and face URIs.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/named-data/ndnd/std/types/optional"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/packet"
	"ndnpoke/internal/security"
	"ndnpoke/internal/transport"
)

// Config holds every tuneable for a single ndnpoke run.
type Config struct {
	// ── Data packet ──────────────────────────────────────────────────
	Name        string // positional: the NDN name to publish
	ForceSend   bool   // -u: put without waiting for an Interest
	FinalBlock  bool   // -F: set FinalBlockId to the last name component
	Freshness   optional.Optional[time.Duration]
	SigningInfo string // -S: ndn-cxx signing-info string
	Digest      bool   // -D: sign with DigestSha256
	KeyPath     string // -k: private key file for key-based signing
	Identity    string // default identity when a key is loaded

	// ── Responder ────────────────────────────────────────────────────
	Timeout optional.Optional[time.Duration] // -w: unset waits forever

	// ── Forwarder ────────────────────────────────────────────────────
	Forwarder       string // face URI
	CommandPrefix   string
	CommandTimeout  time.Duration
	ConnectAttempts int
	ConnTimeout     time.Duration

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// New returns a Config populated with the defaults.
func New() *Config {
	return &Config{
		Identity:        DefaultIdentity,
		Forwarder:       DefaultForwarder,
		CommandPrefix:   DefaultCommandPrefix,
		CommandTimeout:  DefaultCommandTimeout,
		ConnectAttempts: DefaultConnectAttempts,
		ConnTimeout:     DefaultConnTimeout,
		TunnelPort:      DefaultSSHPort,
		Verbose:         1,
	}
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Derived values ───────────────────────────────────────────────────

// ResolvedSigningInfo folds --digest into --signing-info.
func (c *Config) ResolvedSigningInfo() (security.SigningInfo, error) {
	if c.Digest {
		return security.DigestSigning(), nil
	}
	return security.ParseSigningInfo(c.SigningInfo)
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Every failure is a *errors.ConfigError.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ncerr.ConfigError{
			Field:   "name",
			Message: "an NDN name is required",
			Hint:    "ndnpoke [options] /example/data < payload",
		}
	}
	name, err := packet.ParseName(c.Name)
	if err != nil {
		return &ncerr.ConfigError{Field: "name", Value: c.Name, Message: err.Error()}
	}
	if c.FinalBlock && len(name) == 0 {
		return &ncerr.ConfigError{
			Field:   "final",
			Value:   c.Name,
			Message: "the name has no component to use as FinalBlockId",
		}
	}

	if f, ok := c.Freshness.Get(); ok && f < 0 {
		return &ncerr.ConfigError{Field: "freshness", Value: f.Milliseconds(), Message: "must not be negative"}
	}
	if w, ok := c.Timeout.Get(); ok && w < 0 {
		return &ncerr.ConfigError{Field: "timeout", Value: w.Milliseconds(), Message: "must not be negative"}
	}

	if c.Digest && c.SigningInfo != "" {
		return &ncerr.ConfigError{
			Field:   "digest",
			Message: "conflicts with --signing-info",
			Hint:    "--digest is shorthand for -S id:" + security.DigestSha256Identity,
		}
	}
	if _, err := security.ParseSigningInfo(c.SigningInfo); err != nil {
		return &ncerr.ConfigError{Field: "signing-info", Value: c.SigningInfo, Message: err.Error()}
	}
	if _, err := packet.ParseName(c.Identity); err != nil {
		return &ncerr.ConfigError{Field: "identity", Value: c.Identity, Message: err.Error()}
	}

	if _, err := transport.ParseFaceURI(c.Forwarder); err != nil {
		return &ncerr.ConfigError{
			Field:   "forwarder",
			Value:   c.Forwarder,
			Message: err.Error(),
			Hint:    "use unix:///run/nfd/nfd.sock or tcp://host[:port]",
		}
	}
	if _, err := packet.ParseName(c.CommandPrefix); err != nil {
		return &ncerr.ConfigError{Field: "command-prefix", Value: c.CommandPrefix, Message: err.Error()}
	}
	if c.ConnectAttempts < 1 {
		return &ncerr.ConfigError{Field: "connect-attempts", Value: c.ConnectAttempts, Message: "must be at least 1"}
	}

	if c.TunnelEnabled {
		if c.TunnelHost == "" {
			return &ncerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
		}
		if c.TunnelUser == "" {
			return &ncerr.ConfigError{
				Field:   "tunnel",
				Value:   c.TunnelSpec,
				Message: "tunnel user is required",
				Hint:    "use -T user@host[:port]",
			}
		}
	}
	return nil
}
