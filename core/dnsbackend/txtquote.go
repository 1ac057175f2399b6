package dnsbackend

import "strings"

// quoteTXT and unquoteTXT handle the DNS TXT record wire convention of
// wrapping the value in double quotes, used by the Route53 adapter, whose
// API expects the quoted form.
func quoteTXT(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func unquoteTXT(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.ReplaceAll(s, `\"`, `"`)
}

func dnsFqdn(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}
