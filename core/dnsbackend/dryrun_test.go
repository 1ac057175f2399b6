package dnsbackend_test

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikempw/failover/core/dnsbackend"
	"github.com/mikempw/failover/core/siteconfig"
)

func TestDryrunRoundTrip(t *testing.T) {
	statefile := filepath.Join(t.TempDir(), "state.json")
	b, err := dnsbackend.New("dryrun", siteconfig.T{DryrunStatefile: statefile})
	require.NoError(t, err)

	ctx := context.Background()
	err = b.SetRecords(ctx, net.ParseIP("10.0.0.5"), "owner=dr exp=100", 30*time.Second)
	require.NoError(t, err)

	rec, err := b.GetRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", rec.A.String())
	assert.Equal(t, "owner=dr exp=100", rec.TXT)
}

func TestDryrunGetBeforeSetIsEmpty(t *testing.T) {
	statefile := filepath.Join(t.TempDir(), "missing.json")
	b, err := dnsbackend.New("dryrun", siteconfig.T{DryrunStatefile: statefile})
	require.NoError(t, err)

	rec, err := b.GetRecords(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec.A)
	assert.Empty(t, rec.TXT)
}

func TestRegistryKnowsAllAdapters(t *testing.T) {
	names := dnsbackend.Registered()
	for _, want := range []string{"dryrun", "script", "rfc2136", "cloudflare", "route53", "azuredns"} {
		assert.Contains(t, names, want)
	}
}
