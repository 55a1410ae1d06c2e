package r53update

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// route53Region is used when neither the environment nor the profile names a region.
const route53Region = "us-east-1"

// route53API is the part of *route53.Client used by Route53Updater.
type route53API interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// LoadAWSConfig loads the shared AWS configuration.
// An empty profile uses the default credential chain.
func LoadAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	var cfgOptions []func(*config.LoadOptions) error
	if profile != "" {
		cfgOptions = append(cfgOptions, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOptions...)
	if err != nil {
		return aws.Config{}, &ProviderError{Provider: "route53", Op: "load config", Err: err}
	}
	if cfg.Region == "" {
		cfg.Region = route53Region
	}
	return cfg, nil
}

// Route53Updater implements ZoneUpdater for Amazon Route53.
type Route53Updater struct {
	api         route53API
	credentials aws.CredentialsProvider
	logger      logrus.FieldLogger
}

// NewRoute53Updater creates a Route53 zone updater from a loaded AWS configuration.
func NewRoute53Updater(cfg aws.Config) *Route53Updater {
	return &Route53Updater{
		api:         route53.NewFromConfig(cfg),
		credentials: cfg.Credentials,
		logger:      discard,
	}
}

// SetLogger sets the logger used for debug output.
func (u *Route53Updater) SetLogger(l logrus.FieldLogger) {
	u.logger = l
}

// Upsert implements ZoneUpdater.
//
// The record set named by req is replaced as a whole with an UPSERT change.
// If no hosted zone carries req.ZoneName a *ZoneNotFoundError is returned and nothing is changed.
func (u *Route53Updater) Upsert(ctx context.Context, req UpdateRequest) (UpdateResult, error) {
	if u.credentials != nil {
		creds, err := u.credentials.Retrieve(ctx)
		if err != nil || !creds.HasKeys() {
			if err == nil {
				err = errors.New("failed to get aws credential")
			}
			return UpdateResult{}, &ProviderError{Provider: "route53", Op: "credentials", Err: err}
		}
	}

	zone, err := u.findHostedZone(ctx, req.ZoneName)
	if err != nil {
		return UpdateResult{}, err
	}
	u.logger.Debugf("R53 zoneid: %s", aws.ToString(zone.Id))

	records := make([]types.ResourceRecord, 0, len(req.Values))
	for _, v := range req.Values {
		records = append(records, types.ResourceRecord{Value: aws.String(v.String())})
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: zone.Id,
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String(req.Comment),
			Changes: []types.Change{
				{
					Action: types.ChangeActionUpsert,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(req.RecordName),
						Type:            types.RRType(req.RecordType),
						TTL:             aws.Int64(req.TTL),
						ResourceRecords: records,
					},
				},
			},
		},
	}

	out, err := u.api.ChangeResourceRecordSets(ctx, input)
	if err != nil {
		return UpdateResult{}, route53Error("change resource record sets", err)
	}
	var changeID string
	if out.ChangeInfo != nil {
		changeID = aws.ToString(out.ChangeInfo.Id)
		u.logger.Debugf("R53 change %s is %s", changeID, out.ChangeInfo.Status)
	}
	return UpdateResult{ChangeID: changeID}, nil
}

// findHostedZone pages through the account's hosted zones; the first exact name match wins.
func (u *Route53Updater) findHostedZone(ctx context.Context, name string) (*types.HostedZone, error) {
	input := &route53.ListHostedZonesInput{}
	for {
		out, err := u.api.ListHostedZones(ctx, input)
		if err != nil {
			return nil, route53Error("list hosted zones", err)
		}
		for i := range out.HostedZones {
			if aws.ToString(out.HostedZones[i].Name) == name {
				return &out.HostedZones[i], nil
			}
		}
		if !out.IsTruncated || out.NextMarker == nil {
			return nil, &ZoneNotFoundError{Zone: name}
		}
		input.Marker = out.NextMarker
	}
}

func route53Error(op string, err error) error {
	pe := &ProviderError{Provider: "route53", Op: op, Err: err}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		pe.Code = ae.ErrorCode()
	}
	return pe
}

var _ ZoneUpdater = (*Route53Updater)(nil)
