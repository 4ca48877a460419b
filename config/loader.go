package config

// loader.go - configuration loading from the NDN client configuration
// and environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. NDNPOKE_* environment variables
//   3. NDN_CLIENT_TRANSPORT, then transport= in ~/.ndn, /usr/local/etc/ndn
//      and /etc/ndn client.conf (read by ndnd's engine.GetClientConfig)
//   4. Defaults   (defaults.go)

import (
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/named-data/ndnd/std/engine"
	"github.com/named-data/ndnd/std/types/optional"
)

// Load takes the forwarder from the NDN client configuration and then
// overlays the environment onto cfg.
func Load(cfg *Config) {
	cfg.Forwarder = engine.GetClientConfig().TransportUri
	LoadFromEnv(cfg)
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every ndnpoke env var uses the NDNPOKE_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive); durations are given in
// milliseconds like the matching flags.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("NDNPOKE_FORWARDER"); v != "" {
		cfg.Forwarder = v
	}
	if v := os.Getenv("NDNPOKE_COMMAND_PREFIX"); v != "" {
		cfg.CommandPrefix = v
	}
	if v := envInt("NDNPOKE_CONNECT_ATTEMPTS"); v > 0 {
		cfg.ConnectAttempts = v
	}

	// Data packet
	if v, ok := envMillis("NDNPOKE_FRESHNESS"); ok {
		cfg.Freshness = optional.Some(v)
	}
	if v, ok := envMillis("NDNPOKE_TIMEOUT"); ok {
		cfg.Timeout = optional.Some(v)
	}
	if v := os.Getenv("NDNPOKE_SIGNING_INFO"); v != "" {
		cfg.SigningInfo = v
	}
	if v := os.Getenv("NDNPOKE_KEY"); v != "" {
		cfg.KeyPath = v
	}
	if v := os.Getenv("NDNPOKE_IDENTITY"); v != "" {
		cfg.Identity = v
	}

	// SSH tunnel
	if v := os.Getenv("NDNPOKE_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("NDNPOKE_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("NDNPOKE_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("NDNPOKE_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("NDNPOKE_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("NDNPOKE_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("NDNPOKE_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envMillis reads a non-negative millisecond count.
func envMillis(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, false
	}
	return Millis(n), true
}

// maxMillis is the largest millisecond count a time.Duration holds.
const maxMillis = uint64(math.MaxInt64 / int64(time.Millisecond))

// Millis converts a millisecond count from the command line.  Counts
// beyond what a time.Duration can hold saturate at the maximum.
func Millis(ms uint64) time.Duration {
	if ms > maxMillis {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
