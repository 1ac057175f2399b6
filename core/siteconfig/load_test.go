package siteconfig_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/core/siteconfig"
)

type fakeSecrets map[string]string

func (f fakeSecrets) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func TestLoadWithSecretsResolvesCredentialsFromInjectedSource(t *testing.T) {
	t.Setenv("ROLE", "primary")
	t.Setenv("DNS_PROVIDER", "cloudflare")
	t.Setenv("DNS_ZONE", "example.com")
	t.Setenv("DNS_RECORD", "site.example.com")
	t.Setenv("PRIMARY_IP", "10.0.0.1")
	t.Setenv("DR_IP", "10.0.0.2")
	t.Setenv("HEALTH_MODE", "tcp")
	t.Setenv("HEALTH_HOST", "127.0.0.1")
	t.Setenv("HEALTH_PORT", "9999")
	t.Setenv("WORKER_CONTROLLER", "container")
	t.Setenv("WORKER_CONTAINER_NAME", "worker")
	t.Setenv("DRYRUN_STATEFILE", filepath.Join(t.TempDir(), "state.json"))

	cfg, err := siteconfig.LoadWithSecrets(fakeSecrets{"CLOUDFLARE_API_TOKEN": "injected-token"})
	require.NoError(t, err)
	require.Equal(t, "injected-token", cfg.CloudflareAPIToken)
}

func TestLoadWithSecretsLeavesFieldEmptyOnMiss(t *testing.T) {
	t.Setenv("ROLE", "primary")
	t.Setenv("DNS_PROVIDER", "dryrun")
	t.Setenv("DNS_ZONE", "example.com")
	t.Setenv("DNS_RECORD", "site.example.com")
	t.Setenv("PRIMARY_IP", "10.0.0.1")
	t.Setenv("DR_IP", "10.0.0.2")
	t.Setenv("HEALTH_MODE", "tcp")
	t.Setenv("HEALTH_HOST", "127.0.0.1")
	t.Setenv("HEALTH_PORT", "9999")
	t.Setenv("WORKER_CONTROLLER", "container")
	t.Setenv("WORKER_CONTAINER_NAME", "worker")
	t.Setenv("DRYRUN_STATEFILE", filepath.Join(t.TempDir(), "state.json"))

	cfg, err := siteconfig.LoadWithSecrets(fakeSecrets{})
	require.NoError(t, err)
	require.Equal(t, "", cfg.CloudflareAPIToken)
}
