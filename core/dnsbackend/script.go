package dnsbackend

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mikempw/failover/core/siteconfig"
	"github.com/mikempw/failover/util/command"
)

func init() {
	Register("script", func(cfg interface{}) (Backend, error) {
		c := cfg.(siteconfig.T)
		if c.ScriptSet == "" || c.ScriptGet == "" {
			return nil, errors.New("dnsbackend/script: SCRIPT_SET and SCRIPT_GET are required")
		}
		return &Script{set: c.ScriptSet, get: c.ScriptGet}, nil
	})
}

// scriptReadTimeout is the hard wall-time limit on the read program, per
// SPEC_FULL.md §4.3's script backend contract.
const scriptReadTimeout = 30 * time.Second

// Script is the escape-hatch backend: two external programs invoked with
// positional arguments and environment variables equivalent to them.
type Script struct {
	set string
	get string
}

type scriptGetOutput struct {
	A   *string `json:"A"`
	TXT *string `json:"TXT"`
}

func (s *Script) SetRecords(ctx context.Context, ip net.IP, txt string, ttl time.Duration) error {
	ipStr := ""
	if ip != nil {
		ipStr = ip.String()
	}
	cmd, err := command.NewFromLine(s.set,
		command.WithVarArgs(ipStr, txt, strconv.Itoa(int(ttl.Seconds()))),
		command.WithEnv(scriptEnv(ipStr, txt, ttl)),
		command.WithTimeout(scriptReadTimeout),
	)
	if err != nil {
		return err
	}
	if _, err := cmd.Run(ctx); err != nil {
		return errors.Wrap(ErrNetwork, err.Error())
	}
	return nil
}

func (s *Script) GetRecords(ctx context.Context) (Records, error) {
	cmd, err := command.NewFromLine(s.get, command.WithTimeout(scriptReadTimeout))
	if err != nil {
		return Records{}, err
	}
	out, err := cmd.Run(ctx)
	if err != nil {
		return Records{}, errors.Wrap(ErrNetwork, err.Error())
	}
	var parsed scriptGetOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Records{}, errors.Wrap(err, "dnsbackend/script: parse read program output")
	}
	var rec Records
	if parsed.A != nil {
		rec.A = net.ParseIP(*parsed.A)
	}
	if parsed.TXT != nil {
		rec.TXT = *parsed.TXT
	}
	return rec, nil
}

func scriptEnv(ip, txt string, ttl time.Duration) []string {
	return append(os.Environ(),
		"DNS_SET_A="+ip,
		"DNS_SET_TXT="+txt,
		"DNS_SET_TTL="+strconv.Itoa(int(ttl.Seconds())),
	)
}
