package dnsbackend

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCloudflareRoundTrip exercises SetRecords then GetRecords against a
// fake server standing in for the REST API, covering the round-trip law
// from SPEC_FULL.md §8.1 scenario 8. Lives in the internal package (not
// dnsbackend_test) so it can override the unexported baseURL field.
func TestCloudflareRoundTrip(t *testing.T) {
	var stored struct{ a, txt string }

	mux := http.NewServeMux()
	mux.HandleFunc("/zones/z1/dns_records", func(w http.ResponseWriter, r *http.Request) {
		rrType := r.URL.Query().Get("type")
		content := stored.a
		if rrType == "TXT" {
			content = stored.txt
		}
		result := []map[string]any{}
		if content != "" {
			result = append(result, map[string]any{"id": "rr-" + rrType, "type": rrType, "content": content})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": result})
	})
	mux.HandleFunc("/zones/z1/dns_records/batch", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Posts   []map[string]any `json:"posts"`
			Patches []map[string]any `json:"patches"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, rec := range append(body.Posts, body.Patches...) {
			switch rec["type"] {
			case "A":
				stored.a = rec["content"].(string)
			case "TXT":
				stored.txt = rec["content"].(string)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := &Cloudflare{
		token:   "test-token",
		zoneID:  "z1",
		record:  "otel.example.com",
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: srv.URL,
	}

	ctx := context.Background()
	err := b.SetRecords(ctx, net.ParseIP("10.0.1.9"), "owner=dr exp=123", 30*time.Second)
	require.NoError(t, err)

	rec, err := b.GetRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.1.9", rec.A.String())
	assert.Equal(t, "owner=dr exp=123", rec.TXT)
}
