package r53update

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Version is reported by the CLI and recorded in the change comment.
var Version = "0.6.0"

// DefaultTTL is the TTL in seconds given to updated record sets.
const DefaultTTL = 300

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// Outcome describes how a successful run ended.
type Outcome int

const (
	OutcomeUpToDate Outcome = iota // records already matched
	OutcomeDryRun                  // an update was needed but not applied
	OutcomeUpdated                 // the record set was replaced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUpToDate:
		return "up to date"
	case OutcomeDryRun:
		return "dry run"
	case OutcomeUpdated:
		return "updated"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// New creates an Updater for host inside zone, e.g. New("www", "example.com").
//
// A RecordReader defaults to a NameserverReader over DefaultNameservers.
// A Resolver and, unless DryRun is set, a ZoneUpdater must be supplied.
func New(host, zone string, options ...Option) (*Updater, error) {
	if zone == "" {
		return nil, configErrorf("zone cannot be empty")
	}
	if host == "" {
		return nil, configErrorf("host cannot be empty")
	}
	u := &Updater{
		zone:    normalizeZone(zone),
		fqdn:    Fqdn(host, zone),
		ttl:     DefaultTTL,
		comment: fmt.Sprintf("auto update with r53update version v%s", Version),
		logger:  discard,
	}
	for i, opt := range options {
		if err := opt(u); err != nil {
			return nil, fmt.Errorf("r53update.New: option %d returned an error: %w", i, err)
		}
	}

	if u.reader == nil {
		u.reader = &NameserverReader{}
	}
	if u.resolver == nil {
		return nil, configErrorf("no global IP resolver was configured")
	}
	if u.updater == nil && !u.dryRun {
		return nil, configErrorf("no zone updater was configured")
	}
	if u.ttl < 1 {
		return nil, configErrorf("ttl must be a positive number of seconds; got %d", u.ttl)
	}

	// this lets us propagate the logger to dependencies regardless of option order
	type setLogger interface {
		SetLogger(logrus.FieldLogger)
	}
	for _, dep := range []any{u.resolver, u.reader, u.updater} {
		if s, ok := dep.(setLogger); ok {
			s.SetLogger(u.logger)
		}
	}
	return u, nil
}

// Option configures an Updater.
type Option func(*Updater) error

// UsingResolver sets how the global IP address is detected.
func UsingResolver(r Resolver) Option {
	return func(u *Updater) error {
		u.resolver = r
		return nil
	}
}

// UsingRecordReader sets how the currently published records are read.
func UsingRecordReader(r RecordReader) Option {
	return func(u *Updater) error {
		u.reader = r
		return nil
	}
}

// UsingZoneUpdater sets the DNS provider that receives the update.
func UsingZoneUpdater(z ZoneUpdater) Option {
	return func(u *Updater) error {
		u.updater = z
		return nil
	}
}

// WithLogger sets the logger for the run. Without it nothing is logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(u *Updater) error {
		if l == nil {
			l = discard
		}
		u.logger = l
		return nil
	}
}

// WithTTL sets the TTL, in seconds, of the updated record set.
func WithTTL(seconds int64) Option {
	return func(u *Updater) error {
		u.ttl = seconds
		return nil
	}
}

// WithComment replaces the change comment sent to the provider.
func WithComment(comment string) Option {
	return func(u *Updater) error {
		u.comment = comment
		return nil
	}
}

// DryRun makes Run report the change it would make without applying it.
func DryRun(dry bool) Option {
	return func(u *Updater) error {
		u.dryRun = dry
		return nil
	}
}

// Force makes Run update the record set even when it already matches.
func Force(force bool) Option {
	return func(u *Updater) error {
		u.force = force
		return nil
	}
}

// Updater performs one reconcile pass for a single name.
type Updater struct {
	resolver Resolver
	reader   RecordReader
	updater  ZoneUpdater
	logger   logrus.FieldLogger

	zone    string
	fqdn    string
	ttl     int64
	comment string
	dryRun  bool
	force   bool
}

// FQDN returns the trailing-dot qualified name this Updater maintains.
func (u *Updater) FQDN() string { return u.fqdn }

// Run detects the global address, compares it with the published A records
// and replaces them when they differ.
// It makes a single attempt; callers are expected to run it again on a schedule.
func (u *Updater) Run(ctx context.Context) (Outcome, error) {
	u.logger.Debugf("fqdn: %s", u.fqdn)

	gips, err := u.resolver.Resolve(ctx)
	if err != nil {
		return 0, fmt.Errorf("error resolving global ip address: %w", err)
	}
	u.logger.Debugf("global ips: %v", gips)

	arecs, err := u.reader.Read(ctx, u.fqdn)
	if err != nil {
		return 0, fmt.Errorf("error reading current a records: %w", err)
	}
	u.logger.Debugf("current a records: %v", arecs)

	if !NeedsUpdate(gips, arecs, u.force) {
		u.logger.Debug("route53 zone info is up to date")
		return OutcomeUpToDate, nil
	}

	if u.dryRun {
		u.logger.Infof("would update A records of \"%s\" with %v (dry-run)", u.fqdn, gips)
		return OutcomeDryRun, nil
	}

	u.logger.Debug("updating route53 zone info")
	res, err := u.updater.Upsert(ctx, UpdateRequest{
		ZoneName:   u.zone,
		RecordName: u.fqdn,
		RecordType: "A",
		TTL:        u.ttl,
		Values:     gips,
		Comment:    u.comment,
	})
	if err != nil {
		return 0, fmt.Errorf("error updating %s: %w", u.fqdn, err)
	}
	u.logger.WithField("change", res.ChangeID).Infof("update A records of \"%s\" with %v", u.fqdn, gips)
	return OutcomeUpdated, nil
}
