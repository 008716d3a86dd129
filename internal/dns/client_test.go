// internal/dns/client_test.go
//
// Tests run the real cloudflare-go client against a local fake of the v4
// API, so request shapes and response decoding are exercised end to end.
//
// Run: go test ./internal/dns -v

package dns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cloudflare "github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
)

const zoneID = "0123456789abcdef0123456789abcdef"

// fakeZone is a minimal in-memory Cloudflare zone.
type fakeZone struct {
	records map[string]map[string]string // id → fields
	nextID  int
	fail    bool // force 500s
}

func (z *fakeZone) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	base := "/zones/" + zoneID + "/dns_records"

	mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		if z.fail {
			http.Error(w, `{"success":false,"errors":[{"code":10000,"message":"boom"}],"result":null}`, http.StatusInternalServerError)
			return
		}
		switch r.Method {
		case http.MethodPost:
			var in struct {
				Type    string `json:"type"`
				Name    string `json:"name"`
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				t.Errorf("bad create body: %v", err)
			}
			// The real API canonicalises labels to FQDNs.
			if !strings.Contains(in.Name, ".") {
				in.Name += ".sriox.com"
			}
			z.nextID++
			id := fmt.Sprintf("rec%d", z.nextID)
			z.records[id] = map[string]string{"type": in.Type, "name": in.Name, "content": in.Content}
			fmt.Fprintf(w, `{"success":true,"errors":[],"messages":[],"result":{"id":%q,"type":%q,"name":%q,"content":%q}}`,
				id, in.Type, in.Name, in.Content)
		case http.MethodGet:
			name := r.URL.Query().Get("name")
			var results []string
			for id, rec := range z.records {
				if rec["name"] == name {
					results = append(results,
						fmt.Sprintf(`{"id":%q,"type":%q,"name":%q,"content":%q}`,
							id, rec["type"], rec["name"], rec["content"]))
				}
			}
			body := "["
			for i, r := range results {
				if i > 0 {
					body += ","
				}
				body += r
			}
			body += "]"
			fmt.Fprintf(w, `{"success":true,"errors":[],"messages":[],"result":%s,`+
				`"result_info":{"page":1,"per_page":100,"count":%d,"total_count":%d,"total_pages":1}}`,
				body, len(results), len(results))
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc(base+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		id := r.URL.Path[len(base)+1:]
		if _, ok := z.records[id]; !ok {
			http.Error(w, `{"success":false,"errors":[{"code":81044,"message":"Record does not exist"}],"result":null}`, http.StatusNotFound)
			return
		}
		delete(z.records, id)
		fmt.Fprintf(w, `{"success":true,"errors":[],"messages":[],"result":{"id":%q}}`, id)
	})

	return mux
}

func newClient(t *testing.T, zone *fakeZone) *Client {
	t.Helper()
	srv := httptest.NewServer(zone.handler(t))
	t.Cleanup(srv.Close)

	c, err := New("test-token", zoneID, "sriox.com", true, zap.NewNop().Sugar(),
		cloudflare.BaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCreateRecord(t *testing.T) {
	zone := &fakeZone{records: map[string]map[string]string{}}
	c := newClient(t, zone)

	rec, err := c.CreateRecord(context.Background(), "mysite", "A", "203.0.113.7")
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if rec.ID == "" || rec.Type != "A" || rec.Content != "203.0.113.7" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got := zone.records[rec.ID]["name"]; got != "mysite.sriox.com" {
		t.Fatalf("provider stored name %q", got)
	}
}

func TestDeleteRecord(t *testing.T) {
	zone := &fakeZone{records: map[string]map[string]string{}}
	c := newClient(t, zone)

	if _, err := c.CreateRecord(context.Background(), "gone", "CNAME", "octocat.github.io"); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if err := c.DeleteRecord(context.Background(), "gone"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if len(zone.records) != 0 {
		t.Fatalf("records left behind: %v", zone.records)
	}
}

func TestDeleteRecord_Missing(t *testing.T) {
	zone := &fakeZone{records: map[string]map[string]string{}}
	c := newClient(t, zone)

	err := c.DeleteRecord(context.Background(), "never-existed")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestCreateRecord_ProviderError(t *testing.T) {
	zone := &fakeZone{records: map[string]map[string]string{}, fail: true}
	c := newClient(t, zone)

	if _, err := c.CreateRecord(context.Background(), "x", "A", "203.0.113.7"); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestFQDN(t *testing.T) {
	zone := &fakeZone{records: map[string]map[string]string{}}
	c := newClient(t, zone)
	if got := c.FQDN("blog"); got != "blog.sriox.com" {
		t.Fatalf("FQDN = %q", got)
	}
}
