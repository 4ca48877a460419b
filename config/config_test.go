package config

import (
	"testing"

	"ndnpoke/internal/security"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@router.example.net:2222", "admin", "router.example.net", 2222, false},
		{"no port", "ndn@gateway", "ndn", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── Defaults ─────────────────────────────────────────────────────────

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	if cfg.Forwarder != DefaultForwarder {
		t.Errorf("Forwarder = %q", cfg.Forwarder)
	}
	if cfg.CommandPrefix != DefaultCommandPrefix || cfg.CommandTimeout != DefaultCommandTimeout {
		t.Errorf("command = %q %v", cfg.CommandPrefix, cfg.CommandTimeout)
	}
	if cfg.ConnectAttempts != 1 || cfg.TunnelPort != 22 || cfg.Verbose != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Freshness.IsSet() || cfg.Timeout.IsSet() {
		t.Error("freshness and timeout should start unset")
	}
}

// ── ResolvedSigningInfo ──────────────────────────────────────────────

func TestResolvedSigningInfo(t *testing.T) {
	tests := []struct {
		name    string
		digest  bool
		info    string
		want    security.SignerType
		wantErr bool
	}{
		{"default", false, "", security.SignerDefault, false},
		{"digest flag", true, "", security.SignerSha256, false},
		{"identity", false, "id:/alice", security.SignerIdentity, false},
		{"digest identity", false, "id:" + security.DigestSha256Identity, security.SignerSha256, false},
		{"bad scheme", false, "nope:/x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Digest = tt.digest
			cfg.SigningInfo = tt.info
			got, err := cfg.ResolvedSigningInfo()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err == nil && got.Type != tt.want {
				t.Errorf("type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}
