// Package dnsbackend abstracts the authoritative DNS system the
// coordinator writes the lease to. Providers register themselves in a
// static compile-time registry, the way the reference daemon's core/hbcfg
// package registers heartbeat drivers by name.
package dnsbackend

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Records is the pair of DNS values the coordinator cares about.
type Records struct {
	A   net.IP // nil if absent
	TXT string // "" if absent
}

// Backend is the capability set every DNS provider adapter implements.
type Backend interface {
	// SetRecords idempotently replaces the A and TXT records at the
	// configured name. Implementations that support atomic multi-record
	// change sets must use them; otherwise A is written before TXT.
	SetRecords(ctx context.Context, ip net.IP, txt string, ttl time.Duration) error
	// GetRecords reads the current A and TXT values.
	GetRecords(ctx context.Context) (Records, error)
}

// Error kinds returned by every adapter, per SPEC_FULL.md §4.3.
var (
	ErrAuth       = errors.New("dnsbackend: authentication or authorization failure")
	ErrNetwork    = errors.New("dnsbackend: transient network or server failure")
	ErrNotFound   = errors.New("dnsbackend: zone or record not found")
	ErrConflict   = errors.New("dnsbackend: concurrent modification conflict")
)

// Factory builds a Backend from a fully-parsed configuration. The
// registry passes cfg as interface{}; each adapter's factory type-asserts
// it to a siteconfig.T value.
type Factory func(cfg interface{}) (Backend, error)

var registry = map[string]Factory{}

// Register adds a named backend factory to the static registry. Called
// from each adapter's init().
func Register(name string, f Factory) {
	registry[name] = f
}

// New resolves a backend by the DNS_PROVIDER name, exactly as
// core/hbcfg.Driver resolves a heartbeat driver by name in the reference
// daemon.
func New(name string, cfg interface{}) (Backend, error) {
	f, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("dnsbackend: unknown provider %q", name)
	}
	return f(cfg)
}

// Registered lists every provider name currently registered, for the
// validate subcommand and for tests.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
