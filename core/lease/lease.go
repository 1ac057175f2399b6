// Package lease models the DNS-lease TXT record: an owner role plus an
// absolute expiry, and the parse/format pair used to move it in and out
// of the wire text form.
package lease

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Owner identifies which site currently holds the lease.
type Owner string

const (
	Primary Owner = "primary"
	DR      Owner = "dr"
)

// T is the parsed lease. ExpiresAt is an absolute Unix-epoch timestamp,
// per the wire format's loosely-synchronized-clocks assumption.
type T struct {
	Owner     Owner
	ExpiresAt time.Time
}

// ErrMalformed is returned by Parse when the TXT string does not contain
// exactly one owner token and one exp token. Per the coordinator's
// decision procedure, a malformed lease is treated as absent (expired),
// never as an error that blocks progress.
var ErrMalformed = errors.New("lease: malformed TXT record")

// Valid reports whether the lease has not yet expired as of now.
func (t T) Valid(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// Format renders a lease as the TXT record's wire string:
// "owner=<role> exp=<unix_seconds>".
func Format(owner Owner, expiresAt time.Time) string {
	return fmt.Sprintf("owner=%s exp=%d", owner, expiresAt.Unix())
}

// Parse extracts (owner, expires_at) from a TXT record value. Any
// additional whitespace-separated tokens are ignored, per the wire
// semantics in the spec's TXT record definition. A string that does not
// contain exactly one valid owner= token and exactly one valid exp= token
// is ErrMalformed.
func Parse(txt string) (T, error) {
	var owner Owner
	var expUnix int64
	var haveOwner, haveExp bool
	var ownerToks, expToks int

	for _, tok := range strings.Fields(txt) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		switch k {
		case "owner":
			ownerToks++
			switch Owner(v) {
			case Primary, DR:
				owner = Owner(v)
				haveOwner = true
			}
		case "exp":
			expToks++
			n, err := strconv.ParseInt(v, 10, 64)
			if err == nil {
				expUnix = n
				haveExp = true
			}
		}
	}

	if !haveOwner || !haveExp || ownerToks != 1 || expToks != 1 {
		return T{}, ErrMalformed
	}
	return T{Owner: owner, ExpiresAt: time.Unix(expUnix, 0).UTC()}, nil
}
