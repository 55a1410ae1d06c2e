/*
Package r53update keeps a single DNS A record pointed at the caller's global IPv4 address.

Usage will always start with [r53update.New],
which returns an [Updater] for one host inside one hosted zone.
An Updater needs a [Resolver] to detect the global address,
a [RecordReader] to look up what DNS currently says,
and a [ZoneUpdater] for the DNS provider that owns the zone.
Additional configuration options are listed in the docs for New.

Each call to [Updater.Run] is one complete pass.
There is no retry and no polling; run it from a timer or cron job.
*/
package r53update
