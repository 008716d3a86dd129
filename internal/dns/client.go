// internal/dns/client.go
//
// Zone-scoped DNS record management via the Cloudflare v4 API.
//
// Context
// -------
// The platform owns exactly one zone.  Websites get an A record pointing
// at the server IP; GitHub mappings get a CNAME pointing at
// <owner>.github.io.  The client is constructed once at boot and handed to
// the orchestrator by reference; there is no package-level singleton.
//
// Failure semantics matter more than the calls themselves:
//
//   - Calls are at-most-once with no retry.  A timeout after the provider
//     persisted the record leaves remote state ambiguous, so callers must
//     not blindly re-create after an ambiguous failure; the orchestrator's
//     compensation deletes by name first.
//   - DeleteRecord removes every record matching the FQDN and reports
//     ErrRecordNotFound when there were none, which delete workflows log
//     and ignore.
//
// The underlying HTTP client carries a hard timeout so a wedged provider
// cannot hold a workflow open forever.
package dns

import (
	"context"
	"errors"
	"net/http"
	"time"

	cloudflare "github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"

	"github.com/sriox/platform/internal/metrics"
)

// ErrRecordNotFound is returned by DeleteRecord when no record matches.
var ErrRecordNotFound = errors.New("dns: record not found")

// Record is the subset of provider record state the platform cares about.
type Record struct {
	ID      string
	Type    string
	Name    string
	Content string
}

// Client manages records inside one zone.  Safe for concurrent use.
type Client struct {
	api     *cloudflare.API
	zone    *cloudflare.ResourceContainer
	domain  string
	proxied bool
	log     *zap.SugaredLogger
}

// New returns a Client scoped to zoneID under the given apex domain.
// Extra options (custom base URL, HTTP client) are for tests.
func New(token, zoneID, domain string, proxied bool, log *zap.SugaredLogger,
	opts ...cloudflare.Option) (*Client, error) {

	base := []cloudflare.Option{
		cloudflare.HTTPClient(&http.Client{Timeout: 15 * time.Second}),
	}
	api, err := cloudflare.NewWithAPIToken(token, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:     api,
		zone:    cloudflare.ZoneIdentifier(zoneID),
		domain:  domain,
		proxied: proxied,
		log:     log,
	}, nil
}

// FQDN returns the fully qualified name for a subdomain label.
func (c *Client) FQDN(name string) string { return name + "." + c.domain }

// CreateRecord creates one record for name.<domain>.  rtype is "A" or
// "CNAME"; content is the server IP or the github.io host respectively.
func (c *Client) CreateRecord(ctx context.Context, name, rtype, content string) (*Record, error) {
	rec, err := c.api.CreateDNSRecord(ctx, c.zone, cloudflare.CreateDNSRecordParams{
		Type:    rtype,
		Name:    name,
		Content: content,
		Proxied: cloudflare.BoolPtr(c.proxied),
		TTL:     1, // automatic
	})
	if err != nil {
		metrics.DNSCallTotal.WithLabelValues("create", "error").Inc()
		c.log.Errorw("dns record create failed",
			"name", c.FQDN(name), "type", rtype, "err", err)
		return nil, err
	}
	metrics.DNSCallTotal.WithLabelValues("create", "ok").Inc()
	c.log.Infow("dns record created",
		"name", c.FQDN(name), "type", rtype, "content", content)
	return &Record{ID: rec.ID, Type: rec.Type, Name: rec.Name, Content: rec.Content}, nil
}

// DeleteRecord removes every record whose name matches name.<domain>.
// Returns ErrRecordNotFound when no record matched.
func (c *Client) DeleteRecord(ctx context.Context, name string) error {
	fqdn := c.FQDN(name)

	recs, _, err := c.api.ListDNSRecords(ctx, c.zone,
		cloudflare.ListDNSRecordsParams{Name: fqdn})
	if err != nil {
		metrics.DNSCallTotal.WithLabelValues("delete", "error").Inc()
		c.log.Errorw("dns record lookup failed", "name", fqdn, "err", err)
		return err
	}
	if len(recs) == 0 {
		metrics.DNSCallTotal.WithLabelValues("delete", "missing").Inc()
		return ErrRecordNotFound
	}

	for _, rec := range recs {
		if err := c.api.DeleteDNSRecord(ctx, c.zone, rec.ID); err != nil {
			metrics.DNSCallTotal.WithLabelValues("delete", "error").Inc()
			c.log.Errorw("dns record delete failed",
				"name", fqdn, "record_id", rec.ID, "err", err)
			return err
		}
	}
	metrics.DNSCallTotal.WithLabelValues("delete", "ok").Inc()
	c.log.Infow("dns record deleted", "name", fqdn, "records", len(recs))
	return nil
}
