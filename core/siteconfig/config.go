// Package siteconfig loads the daemon's environment-variable configuration
// into a typed, immutable value, the way the reference daemon's config
// package loads its node configuration through viper.
package siteconfig

import (
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikempw/failover/core/secretsource"
)

type Role string

const (
	RolePrimary Role = "primary"
	RoleDR      Role = "dr"
)

type HealthMode string

const (
	HealthModeTCP     HealthMode = "tcp"
	HealthModeMetrics HealthMode = "metrics"
)

type WorkerControllerKind string

const (
	WorkerContainer WorkerControllerKind = "container"
	WorkerK8sScale  WorkerControllerKind = "k8sscale"
)

// T is the fully-parsed site configuration. Nothing under core/ reads the
// environment directly; everything is threaded through this value.
type T struct {
	Role Role

	DNSProvider string
	DNSZone     string
	DNSRecord   string
	DNSTTL      time.Duration

	PrimaryIP net.IP
	DRIP      net.IP

	LeaseTTL       time.Duration
	UpdateInterval time.Duration
	FailThreshold  int
	InitForce      bool

	HealthMode         HealthMode
	HealthHost         string
	HealthPort         int
	HealthTimeout      time.Duration
	HealthURL          string
	HealthMetric       string
	HealthStaleCount   int
	HealthConfirmHost  string
	HealthConfirmPort  int

	DNSServer         string
	MyIP              net.IP
	OtelCheckInterval time.Duration

	WorkerController    WorkerControllerKind
	WorkerContainerName string
	WorkerNamespace     string
	WorkerDeployment    string

	LogLevel  string
	LogFormat string
	LogFile   string

	CloudflareAPIToken string
	CloudflareZoneID   string

	Route53ZoneID string
	AWSRegion     string

	AzureSubscriptionID string
	AzureResourceGroup  string

	DNSTSIGKeyName   string
	DNSTSIGSecret    string
	DNSTSIGAlgorithm string

	ScriptSet string
	ScriptGet string

	DryrunStatefile string
}

// Load binds every key in the SPEC_FULL.md configuration tables to
// viper's automatic-environment resolution and unmarshals into T.
// Credential-shaped values (API tokens, TSIG secrets) are instead
// resolved through secretsource.Env, so a future Vault-backed source can
// be layered in ahead of it without touching the rest of this function.
func Load() (T, error) {
	return LoadWithSecrets(secretsource.Env{})
}

// LoadWithSecrets is Load with the secret-resolution source injected,
// letting tests substitute a fake without touching the process
// environment.
func LoadWithSecrets(secrets secretsource.Source) (T, error) {
	v := viper.New()

	v.SetDefault("dns_ttl", "30s")
	v.SetDefault("lease_ttl", "60s")
	v.SetDefault("update_interval", "10s")
	v.SetDefault("fail_threshold", 3)
	v.SetDefault("init_force", false)
	v.SetDefault("health_mode", string(HealthModeTCP))
	v.SetDefault("health_timeout", "5s")
	v.SetDefault("health_stale_count", 3)
	v.SetDefault("otel_check_interval", "10s")
	v.SetDefault("worker_controller", string(WorkerContainer))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("aws_region", "us-east-1")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves a key once something has asked for it
	// by that exact name, so every recognized key is bound explicitly.
	for _, key := range []string{
		"role", "dns_provider", "dns_zone", "dns_record", "dns_ttl",
		"primary_ip", "dr_ip", "lease_ttl", "update_interval",
		"fail_threshold", "init_force",
		"health_mode", "health_host", "health_port", "health_timeout",
		"health_url", "health_metric", "health_stale_count",
		"health_confirm_host", "health_confirm_port",
		"dns_server", "my_ip", "otel_check_interval",
		"worker_controller", "worker_container_name",
		"worker_namespace", "worker_deployment",
		"log_level", "log_format", "log_file",
		"cloudflare_api_token", "cloudflare_zone_id",
		"route53_zone_id", "aws_region",
		"azure_subscription_id", "azure_resource_group",
		"dns_tsig_key_name", "dns_tsig_secret", "dns_tsig_algorithm",
		"script_set", "script_get", "dryrun_statefile",
	} {
		_ = v.BindEnv(key)
	}

	cfg := T{
		Role:        Role(v.GetString("role")),
		DNSProvider: v.GetString("dns_provider"),
		DNSZone:     v.GetString("dns_zone"),
		DNSRecord:   v.GetString("dns_record"),
		DNSTTL:      v.GetDuration("dns_ttl"),

		LeaseTTL:       v.GetDuration("lease_ttl"),
		UpdateInterval: v.GetDuration("update_interval"),
		FailThreshold:  v.GetInt("fail_threshold"),
		InitForce:      v.GetBool("init_force"),

		HealthMode:        HealthMode(v.GetString("health_mode")),
		HealthHost:        v.GetString("health_host"),
		HealthPort:        v.GetInt("health_port"),
		HealthTimeout:     v.GetDuration("health_timeout"),
		HealthURL:         v.GetString("health_url"),
		HealthMetric:      v.GetString("health_metric"),
		HealthStaleCount:  v.GetInt("health_stale_count"),
		HealthConfirmHost: v.GetString("health_confirm_host"),
		HealthConfirmPort: v.GetInt("health_confirm_port"),

		DNSServer:         v.GetString("dns_server"),
		OtelCheckInterval: v.GetDuration("otel_check_interval"),

		WorkerController:    WorkerControllerKind(v.GetString("worker_controller")),
		WorkerContainerName: v.GetString("worker_container_name"),
		WorkerNamespace:     v.GetString("worker_namespace"),
		WorkerDeployment:    v.GetString("worker_deployment"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogFile:   v.GetString("log_file"),

		CloudflareZoneID: v.GetString("cloudflare_zone_id"),

		Route53ZoneID: v.GetString("route53_zone_id"),
		AWSRegion:     v.GetString("aws_region"),

		AzureSubscriptionID: v.GetString("azure_subscription_id"),
		AzureResourceGroup:  v.GetString("azure_resource_group"),

		DNSTSIGKeyName:   v.GetString("dns_tsig_key_name"),
		DNSTSIGAlgorithm: v.GetString("dns_tsig_algorithm"),

		ScriptSet: v.GetString("script_set"),
		ScriptGet: v.GetString("script_get"),

		DryrunStatefile: v.GetString("dryrun_statefile"),
	}

	if s := v.GetString("primary_ip"); s != "" {
		cfg.PrimaryIP = net.ParseIP(s)
	}
	if s := v.GetString("dr_ip"); s != "" {
		cfg.DRIP = net.ParseIP(s)
	}
	if s := v.GetString("my_ip"); s != "" {
		cfg.MyIP = net.ParseIP(s)
	}

	if secret, ok := secrets.Get("CLOUDFLARE_API_TOKEN"); ok {
		cfg.CloudflareAPIToken = secret
	}
	if secret, ok := secrets.Get("DNS_TSIG_SECRET"); ok {
		cfg.DNSTSIGSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return T{}, err
	}
	return cfg, nil
}

// Validate enforces the cross-field preconditions the ambiguity in
// SPEC_FULL.md's Design Notes resolves explicitly: MY_IP must equal the
// role's own configured site IP.
func (c T) Validate() error {
	switch c.Role {
	case RolePrimary, RoleDR:
	default:
		return fieldErr("ROLE", "must be \"primary\" or \"dr\"")
	}
	if c.DNSProvider == "" {
		return fieldErr("DNS_PROVIDER", "must be set")
	}
	if c.DNSZone == "" {
		return fieldErr("DNS_ZONE", "must be set")
	}
	if c.DNSRecord == "" {
		return fieldErr("DNS_RECORD", "must be set")
	}
	if c.PrimaryIP == nil {
		return fieldErr("PRIMARY_IP", "must be a valid IP address")
	}
	if c.DRIP == nil {
		return fieldErr("DR_IP", "must be a valid IP address")
	}
	if c.LeaseTTL <= 0 {
		return fieldErr("LEASE_TTL", "must be positive")
	}
	if c.UpdateInterval <= 0 {
		return fieldErr("UPDATE_INTERVAL", "must be positive")
	}
	if c.UpdateInterval >= c.LeaseTTL {
		return fieldErr("UPDATE_INTERVAL", "must be smaller than LEASE_TTL or the lease can expire between renewals")
	}
	if c.FailThreshold < 1 {
		return fieldErr("FAIL_THRESHOLD", "must be at least 1")
	}

	switch c.HealthMode {
	case HealthModeTCP:
		if c.HealthHost == "" || c.HealthPort == 0 {
			return fieldErr("HEALTH_HOST/HEALTH_PORT", "required when HEALTH_MODE=tcp")
		}
	case HealthModeMetrics:
		if c.HealthURL == "" || c.HealthMetric == "" {
			return fieldErr("HEALTH_URL/HEALTH_METRIC", "required when HEALTH_MODE=metrics")
		}
	default:
		return fieldErr("HEALTH_MODE", "must be \"tcp\" or \"metrics\"")
	}

	if c.MyIP != nil {
		switch c.Role {
		case RolePrimary:
			if !c.MyIP.Equal(c.PrimaryIP) {
				return fieldErr("MY_IP", "must equal PRIMARY_IP when ROLE=primary")
			}
		case RoleDR:
			if !c.MyIP.Equal(c.DRIP) {
				return fieldErr("MY_IP", "must equal DR_IP when ROLE=dr")
			}
		}
	}

	switch c.WorkerController {
	case WorkerContainer:
		if c.WorkerContainerName == "" {
			return fieldErr("WORKER_CONTAINER_NAME", "required when WORKER_CONTROLLER=container")
		}
	case WorkerK8sScale:
		if c.WorkerNamespace == "" || c.WorkerDeployment == "" {
			return fieldErr("WORKER_NAMESPACE/WORKER_DEPLOYMENT", "required when WORKER_CONTROLLER=k8sscale")
		}
	default:
		return fieldErr("WORKER_CONTROLLER", "must be \"container\" or \"k8sscale\"")
	}

	return nil
}
