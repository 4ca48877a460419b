package core

import (
	"fmt"

	"ndnpoke/config"
	"ndnpoke/internal/metrics"
	"ndnpoke/internal/packet"
	"ndnpoke/internal/poke"
	"ndnpoke/internal/transport"
	"ndnpoke/tunnel"
	"ndnpoke/util"
)

// Build constructs the Mode for a validated configuration.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	name, err := packet.ParseName(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	info, err := cfg.ResolvedSigningInfo()
	if err != nil {
		return nil, fmt.Errorf("signing info: %w", err)
	}
	identity, err := packet.ParseName(cfg.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	prefix, err := packet.ParseName(cfg.CommandPrefix)
	if err != nil {
		return nil, fmt.Errorf("command prefix: %w", err)
	}
	uri, err := transport.ParseFaceURI(cfg.Forwarder)
	if err != nil {
		return nil, fmt.Errorf("forwarder: %w", err)
	}

	return &PokeMode{
		Options: poke.Options{
			Name:        name,
			ForceSend:   cfg.ForceSend,
			Freshness:   cfg.Freshness,
			FinalBlock:  cfg.FinalBlock,
			SigningInfo: info,
			Timeout:     cfg.Timeout,
		},
		Dialer:          buildDialer(cfg, logger),
		Forwarder:       uri,
		ConnectAttempts: cfg.ConnectAttempts,
		CommandPrefix:   prefix,
		CommandTimeout:  cfg.CommandTimeout,
		Identity:        identity,
		KeyPath:         cfg.KeyPath,
		Logger:          logger,
		Metrics:         metrics.New(),
	}, nil
}

// buildDialer picks a plain stream dialer or, with -T, one that opens
// the forwarder socket on the far side of an SSH gateway.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.ConnTimeout,
		}, logger)
	}
	return &transport.StreamDialer{Timeout: cfg.ConnTimeout}
}
