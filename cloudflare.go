package r53update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/cloudflare/cloudflare-go"
	"github.com/sirupsen/logrus"
)

// cloudflareAPI is the part of *cloudflare.API used by CloudflareUpdater.
type cloudflareAPI interface {
	ListZones(ctx context.Context, z ...string) ([]cloudflare.Zone, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error
}

// NewCloudflareUpdater creates a zone updater for Cloudflare using a scoped API token.
// A nil httpClient uses the library default.
func NewCloudflareUpdater(token string, httpClient *http.Client) (*CloudflareUpdater, error) {
	var opts []cloudflare.Option
	if httpClient != nil {
		opts = append(opts, cloudflare.HTTPClient(httpClient))
	}
	api, err := cloudflare.NewWithAPIToken(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	return &CloudflareUpdater{
		api: api,
		create: func(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) error {
			_, err := api.CreateDNSRecord(ctx, rc, params)
			return err
		},
		logger: discard,
	}, nil
}

// CloudflareUpdater implements ZoneUpdater for Cloudflare.
//
// It should be constructed using NewCloudflareUpdater.
type CloudflareUpdater struct {
	api    cloudflareAPI
	create func(context.Context, *cloudflare.ResourceContainer, cloudflare.CreateDNSRecordParams) error
	logger logrus.FieldLogger
}

// SetLogger sets the logger used for debug output.
func (cf *CloudflareUpdater) SetLogger(l logrus.FieldLogger) {
	cf.logger = l
}

// Upsert implements ZoneUpdater.
//
// Existing A records whose value is still wanted are kept and updated in place
// when their TTL or comment differ from req. The others are deleted and missing
// values are created, so afterwards the record set holds exactly req.Values.
// The change ID is the comma separated list of the resulting record IDs.
func (cf *CloudflareUpdater) Upsert(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	if cf.api == nil {
		return UpdateResult{}, errors.New("CloudflareUpdater should be constructed with NewCloudflareUpdater")
	}
	zoneName := strings.TrimSuffix(req.ZoneName, ".")
	name := strings.TrimSuffix(req.RecordName, ".")

	zid, err := cf.zoneID(ctx, zoneName)
	if err != nil {
		return UpdateResult{}, err
	}
	cf.logger.Debugf("cloudflare zone id: %s", zid)
	rc := cloudflare.ZoneIdentifier(zid)

	records, err := cf.listRecords(ctx, rc, req.RecordType, name)
	if err != nil {
		return UpdateResult{}, err
	}
	cf.logger.Debugf("found %d existing records", len(records))

	existing := map[netip.Addr]bool{}
	newAddrs := map[netip.Addr]bool{}
	for _, a := range req.Values {
		newAddrs[a] = true
	}
	for _, r := range records {
		a, err := netip.ParseAddr(r.Content)
		if err == nil && newAddrs[a] && !existing[a] {
			existing[a] = true
			cf.logger.Debugf("existing record %s is in the set of new addrs", a)
			if err := cf.refresh(ctx, rc, r, req); err != nil {
				return UpdateResult{}, err
			}
			continue
		}
		cf.logger.Debugf("deleting DNS record %s (%s)", r.ID, r.Content)
		if err := cf.api.DeleteDNSRecord(ctx, rc, r.ID); err != nil {
			return UpdateResult{}, &ProviderError{Provider: "cloudflare", Op: "delete record " + r.ID, Err: err}
		}
	}

	for _, a := range req.Values {
		if existing[a] {
			continue
		}
		cf.logger.Debugf("creating record for %s", a)
		err := cf.create(ctx, rc, cloudflare.CreateDNSRecordParams{
			Type:    req.RecordType,
			Name:    name,
			Content: a.String(),
			ZoneID:  zid,
			TTL:     int(req.TTL),
			Comment: req.Comment,
		})
		if err != nil {
			return UpdateResult{}, &ProviderError{Provider: "cloudflare", Op: "create record", Err: err}
		}
		existing[a] = true
	}

	records, err = cf.listRecords(ctx, rc, req.RecordType, name)
	if err != nil {
		return UpdateResult{}, err
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return UpdateResult{ChangeID: strings.Join(ids, ",")}, nil
}

// refresh rewrites the TTL and comment of a kept record that no longer match req.
func (cf *CloudflareUpdater) refresh(ctx context.Context, rc *cloudflare.ResourceContainer, r cloudflare.DNSRecord, req UpdateRequest) error {
	if r.TTL == int(req.TTL) && r.Comment == req.Comment {
		return nil
	}
	cf.logger.Debugf("updating DNS record %s (ttl %d -> %d)", r.ID, r.TTL, req.TTL)
	_, err := cf.api.UpdateDNSRecord(ctx, rc, cloudflare.UpdateDNSRecordParams{
		ID:      r.ID,
		Type:    r.Type,
		Name:    r.Name,
		Content: r.Content,
		TTL:     int(req.TTL),
		Proxied: r.Proxied,
		Comment: req.Comment,
		Tags:    r.Tags,
	})
	if err != nil {
		return &ProviderError{Provider: "cloudflare", Op: "update record " + r.ID, Err: err}
	}
	return nil
}

func (cf *CloudflareUpdater) listRecords(ctx context.Context, rc *cloudflare.ResourceContainer, rrtype, name string) ([]cloudflare.DNSRecord, error) {
	records, _, err := cf.api.ListDNSRecords(ctx, rc, cloudflare.ListDNSRecordsParams{
		Type: rrtype,
		Name: name,
	})
	if err != nil {
		return nil, &ProviderError{Provider: "cloudflare", Op: "list records", Err: err}
	}
	return records, nil
}

// zoneID scans the account's zones; the first exact name match wins.
func (cf *CloudflareUpdater) zoneID(ctx context.Context, zoneName string) (string, error) {
	zones, err := cf.api.ListZones(ctx)
	if err != nil {
		return "", &ProviderError{Provider: "cloudflare", Op: "list zones", Err: err}
	}
	for _, z := range zones {
		if z.Name == zoneName {
			return z.ID, nil
		}
	}
	return "", &ZoneNotFoundError{Zone: zoneName + "."}
}

var _ ZoneUpdater = (*CloudflareUpdater)(nil)
