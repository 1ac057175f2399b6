package dnsbackend

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/mikempw/failover/core/siteconfig"
)

func init() {
	Register("dryrun", func(cfg interface{}) (Backend, error) {
		c := cfg.(siteconfig.T)
		path := c.DryrunStatefile
		if path == "" {
			path = "/tmp/failoverd-dryrun.json"
		}
		return &Dryrun{path: path}, nil
	})
}

// Dryrun persists records to a local JSON file. It has no third-party
// client and exists for local testing and CI, per SPEC_FULL.md §4.3.1.
type Dryrun struct {
	mu   sync.Mutex
	path string
}

type dryrunState struct {
	A   string `json:"a"`
	TXT string `json:"txt"`
}

func (d *Dryrun) SetRecords(_ context.Context, ip net.IP, txt string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := dryrunState{TXT: txt}
	if ip != nil {
		st.A = ip.String()
	}
	b, err := json.Marshal(st)
	if err != nil {
		return errors.Wrap(err, "dryrun: marshal state")
	}
	if err := os.WriteFile(d.path, b, 0o644); err != nil {
		return errors.Wrap(ErrNetwork, err.Error())
	}
	return nil
}

func (d *Dryrun) GetRecords(_ context.Context) (Records, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return Records{}, nil
	}
	if err != nil {
		return Records{}, errors.Wrap(ErrNetwork, err.Error())
	}
	var st dryrunState
	if err := json.Unmarshal(b, &st); err != nil {
		return Records{}, errors.Wrap(err, "dryrun: unmarshal state")
	}
	var rec Records
	if st.A != "" {
		rec.A = net.ParseIP(st.A)
	}
	rec.TXT = st.TXT
	return rec, nil
}
