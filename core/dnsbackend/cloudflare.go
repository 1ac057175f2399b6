package dnsbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/mikempw/failover/core/siteconfig"
)

func init() {
	Register("cloudflare", func(cfg interface{}) (Backend, error) {
		c := cfg.(siteconfig.T)
		if c.CloudflareAPIToken == "" || c.CloudflareZoneID == "" {
			return nil, errors.New("dnsbackend/cloudflare: CLOUDFLARE_API_TOKEN and CLOUDFLARE_ZONE_ID are required")
		}
		return &Cloudflare{
			token:   c.CloudflareAPIToken,
			zoneID:  c.CloudflareZoneID,
			record:  c.DNSRecord,
			client:  &http.Client{Timeout: 10 * time.Second},
			baseURL: cloudflareBaseURL,
		}, nil
	})
}

// Cloudflare talks to the Cloudflare REST API v4 directly over net/http:
// no Cloudflare Go SDK is available anywhere in the reference corpus, so
// this adapter is the documented stdlib-only exception (see DESIGN.md).
type Cloudflare struct {
	token   string
	zoneID  string
	record  string
	client  *http.Client
	baseURL string
}

const cloudflareBaseURL = "https://api.cloudflare.com/client/v4"

type cfDNSRecord struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
}

type cfListResponse struct {
	Success bool          `json:"success"`
	Result  []cfDNSRecord `json:"result"`
}

type cfBatchRequest struct {
	Patches []cfDNSRecord `json:"patches,omitempty"`
	Posts   []cfDNSRecord `json:"posts,omitempty"`
}

type cfBatchResponse struct {
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (b *Cloudflare) do(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, errors.Wrap(err, "dnsbackend/cloudflare: marshal request")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, "dnsbackend/cloudflare: build request")
	}
	req.Header.Set("Authorization", "Bearer "+b.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(ErrNetwork, err.Error())
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "dnsbackend/cloudflare: read response")
	}
	return buf.Bytes(), resp.StatusCode, nil
}

func (b *Cloudflare) lookup(ctx context.Context, rrType string) (*cfDNSRecord, error) {
	path := fmt.Sprintf("/zones/%s/dns_records?type=%s&name=%s", b.zoneID, rrType, b.record)
	raw, status, err := b.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, ErrAuth
	}
	if status >= 500 {
		return nil, ErrNetwork
	}
	var parsed cfListResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, errors.Wrap(err, "dnsbackend/cloudflare: parse list response")
	}
	if len(parsed.Result) == 0 {
		return nil, nil
	}
	return &parsed.Result[0], nil
}

// SetRecords uses the /dns_records/batch endpoint so the A and TXT
// changes apply as one call, per SPEC_FULL.md §4.3.1.
func (b *Cloudflare) SetRecords(ctx context.Context, ip net.IP, txt string, ttl time.Duration) error {
	existingA, err := b.lookup(ctx, "A")
	if err != nil {
		return err
	}
	existingTXT, err := b.lookup(ctx, "TXT")
	if err != nil {
		return err
	}

	batch := cfBatchRequest{}
	aRec := cfDNSRecord{Type: "A", Name: b.record, Content: ip.String(), TTL: int(ttl.Seconds())}
	txtRec := cfDNSRecord{Type: "TXT", Name: b.record, Content: txt, TTL: int(ttl.Seconds())}

	if existingA != nil {
		aRec.ID = existingA.ID
		batch.Patches = append(batch.Patches, aRec)
	} else {
		batch.Posts = append(batch.Posts, aRec)
	}
	if existingTXT != nil {
		txtRec.ID = existingTXT.ID
		batch.Patches = append(batch.Patches, txtRec)
	} else {
		batch.Posts = append(batch.Posts, txtRec)
	}

	path := fmt.Sprintf("/zones/%s/dns_records/batch", b.zoneID)
	raw, status, err := b.do(ctx, http.MethodPost, path, batch)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrAuth
	}
	if status >= 500 {
		return ErrNetwork
	}
	var parsed cfBatchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errors.Wrap(err, "dnsbackend/cloudflare: parse batch response")
	}
	if !parsed.Success {
		msg := "unknown error"
		if len(parsed.Errors) > 0 {
			msg = parsed.Errors[0].Message
		}
		return errors.Wrap(ErrConflict, msg)
	}
	return nil
}

func (b *Cloudflare) GetRecords(ctx context.Context) (Records, error) {
	var rec Records
	a, err := b.lookup(ctx, "A")
	if err != nil {
		return Records{}, err
	}
	if a != nil {
		rec.A = net.ParseIP(a.Content)
	}
	t, err := b.lookup(ctx, "TXT")
	if err != nil {
		return Records{}, err
	}
	if t != nil {
		rec.TXT = t.Content
	}
	return rec, nil
}
