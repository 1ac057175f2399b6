package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mikempw/failover/core/status"
)

func TestString(t *testing.T) {
	tests := []struct {
		in       status.T
		expected string
	}{
		{status.Healthy, "HEALTHY"},
		{status.Unhealthy, "UNHEALTHY"},
		{status.Unknown, "UNKNOWN"},
		{status.T(99), "UNKNOWN"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, test.in.String())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		expected status.T
	}{
		{"HEALTHY", status.Healthy},
		{"UNHEALTHY", status.Unhealthy},
		{"garbage", status.Unknown},
		{"", status.Unknown},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, status.Parse(test.in))
	}
}
