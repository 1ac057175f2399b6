package siteconfig_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikempw/failover/core/siteconfig"
)

func valid() siteconfig.T {
	return siteconfig.T{
		Role:           siteconfig.RoleDR,
		DNSProvider:    "dryrun",
		DNSZone:        "example.com",
		DNSRecord:      "otel.example.com",
		PrimaryIP:      net.ParseIP("10.0.0.1"),
		DRIP:           net.ParseIP("10.0.1.1"),
		LeaseTTL:       60 * time.Second,
		UpdateInterval: 10 * time.Second,
		FailThreshold:  3,
		HealthMode:     siteconfig.HealthModeTCP,
		HealthHost:     "10.0.0.1",
		HealthPort:     9090,
		WorkerController:    siteconfig.WorkerContainer,
		WorkerContainerName: "otel-collector",
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, valid().Validate())
}

func TestValidateRejectsUpdateIntervalNotSmallerThanLeaseTTL(t *testing.T) {
	c := valid()
	c.UpdateInterval = c.LeaseTTL
	assert.Error(t, c.Validate())
}

func TestValidateRejectsMismatchedMyIP(t *testing.T) {
	c := valid()
	c.MyIP = net.ParseIP("10.0.0.1") // primary's IP while role is dr
	assert.Error(t, c.Validate())
}

func TestValidateRequiresHealthFieldsForMode(t *testing.T) {
	c := valid()
	c.HealthMode = siteconfig.HealthModeMetrics
	c.HealthURL = ""
	assert.Error(t, c.Validate())
}
