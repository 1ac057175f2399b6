package cliapp

import (
	"net"

	"github.com/mikempw/failover/core/dnsbackend"
	"github.com/mikempw/failover/core/lease"
	"github.com/mikempw/failover/core/siteconfig"
)

func loadConfig() (siteconfig.T, error) {
	return siteconfig.Load()
}

func buildBackend(cfg siteconfig.T) (dnsbackend.Backend, error) {
	return dnsbackend.New(cfg.DNSProvider, cfg)
}

func selfOwner(cfg siteconfig.T) lease.Owner {
	if cfg.Role == siteconfig.RolePrimary {
		return lease.Primary
	}
	return lease.DR
}

func selfIP(cfg siteconfig.T) net.IP {
	if cfg.Role == siteconfig.RolePrimary {
		return cfg.PrimaryIP
	}
	return cfg.DRIP
}
