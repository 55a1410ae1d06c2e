package r53update

import (
	"context"
	"errors"
	"net/netip"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute53 struct {
	pages     [][]types.HostedZone
	listErr   error
	changeErr error

	listCalls int
	changes   []*route53.ChangeResourceRecordSetsInput
}

func (f *fakeRoute53) ListHostedZones(ctx context.Context, in *route53.ListHostedZonesInput, _ ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := 0
	if in.Marker != nil {
		page = int(aws.ToString(in.Marker)[0] - '0')
	}
	out := &route53.ListHostedZonesOutput{HostedZones: f.pages[page]}
	if page+1 < len(f.pages) {
		out.IsTruncated = true
		out.NextMarker = aws.String(string(rune('0' + page + 1)))
	}
	return out, nil
}

func (f *fakeRoute53) ChangeResourceRecordSets(ctx context.Context, in *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.changes = append(f.changes, in)
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &types.ChangeInfo{Id: aws.String("/change/C123"), Status: types.ChangeStatusPending},
	}, nil
}

func hostedZone(id, name string) types.HostedZone {
	return types.HostedZone{Id: aws.String(id), Name: aws.String(name)}
}

func testRequest() UpdateRequest {
	return UpdateRequest{
		ZoneName:   "example.com.",
		RecordName: "www.example.com.",
		RecordType: "A",
		TTL:        300,
		Values:     []netip.Addr{netip.MustParseAddr("203.0.113.9"), netip.MustParseAddr("203.0.113.10")},
		Comment:    "auto update with r53update version v0.6.0",
	}
}

func TestRoute53Upsert(t *testing.T) {
	api := &fakeRoute53{pages: [][]types.HostedZone{
		{hostedZone("/hostedzone/ZOTHER", "example.org."), hostedZone("/hostedzone/ZSUB", "sub.example.com.")},
		{hostedZone("/hostedzone/ZEX", "example.com."), hostedZone("/hostedzone/ZDUP", "example.com.")},
	}}
	u := &Route53Updater{api: api, logger: discard}

	res, err := u.Upsert(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "/change/C123", res.ChangeID)
	assert.Equal(t, 2, api.listCalls)

	require.Len(t, api.changes, 1)
	in := api.changes[0]
	assert.Equal(t, "/hostedzone/ZEX", aws.ToString(in.HostedZoneId), "first exact match wins")
	assert.Equal(t, "auto update with r53update version v0.6.0", aws.ToString(in.ChangeBatch.Comment))
	require.Len(t, in.ChangeBatch.Changes, 1)
	change := in.ChangeBatch.Changes[0]
	assert.Equal(t, types.ChangeActionUpsert, change.Action)
	assert.Equal(t, "www.example.com.", aws.ToString(change.ResourceRecordSet.Name))
	assert.Equal(t, types.RRTypeA, change.ResourceRecordSet.Type)
	assert.Equal(t, int64(300), aws.ToInt64(change.ResourceRecordSet.TTL))
	var values []string
	for _, rr := range change.ResourceRecordSet.ResourceRecords {
		values = append(values, aws.ToString(rr.Value))
	}
	assert.Equal(t, []string{"203.0.113.9", "203.0.113.10"}, values)
}

func TestRoute53ZoneNotFound(t *testing.T) {
	api := &fakeRoute53{pages: [][]types.HostedZone{
		{hostedZone("/hostedzone/ZOTHER", "example.org."), hostedZone("/hostedzone/ZSUB", "sub.example.com.")},
	}}
	u := &Route53Updater{api: api, logger: discard}

	_, err := u.Upsert(context.Background(), testRequest())
	var zerr *ZoneNotFoundError
	require.True(t, errors.As(err, &zerr), "expected *ZoneNotFoundError; got %v", err)
	assert.Equal(t, "example.com.", zerr.Zone)
	assert.Empty(t, api.changes, "no mutating call may be made")
}

func TestRoute53ProviderErrors(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "Throttling", Message: "Rate exceeded"}

	u := &Route53Updater{api: &fakeRoute53{listErr: apiErr}, logger: discard}
	_, err := u.Upsert(context.Background(), testRequest())
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "expected *ProviderError; got %v", err)
	assert.Equal(t, "Throttling", pe.Code)
	assert.Equal(t, "list hosted zones", pe.Op)

	api := &fakeRoute53{
		pages:     [][]types.HostedZone{{hostedZone("/hostedzone/ZEX", "example.com.")}},
		changeErr: errors.New("connection reset by peer"),
	}
	u = &Route53Updater{api: api, logger: discard}
	_, err = u.Upsert(context.Background(), testRequest())
	require.True(t, errors.As(err, &pe), "expected *ProviderError; got %v", err)
	assert.Empty(t, pe.Code)
	assert.Equal(t, "change resource record sets", pe.Op)
}

func TestRoute53MissingCredentials(t *testing.T) {
	api := &fakeRoute53{pages: [][]types.HostedZone{{hostedZone("/hostedzone/ZEX", "example.com.")}}}
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{}, errors.New("no EC2 IMDS role found")
	})
	u := &Route53Updater{api: api, credentials: creds, logger: discard}

	_, err := u.Upsert(context.Background(), testRequest())
	var pe *ProviderError
	require.True(t, errors.As(err, &pe), "expected *ProviderError; got %v", err)
	assert.Equal(t, "credentials", pe.Op)
	assert.Zero(t, api.listCalls)
}
