package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tuntunkun/r53update"
)

const envPrefix = "R53UPDATE"

const versionTemplate = `Copyrights (c)2014 Takuya Sawada All rights reserved.
Route53Update Dynamic DNS Updater v{{.Version}}
`

// options is the resolved configuration of one run.
type options struct {
	Host        string
	Zone        string
	Profile     string
	Method      string
	Iface       string
	Nameservers []string
	TTL         int64
	Dry         bool
	Force       bool
	Syslog      bool
	Debug       bool
	Provider    string
	TokenFile   string
}

func run(ctx context.Context, args []string, stdin *os.File, stderr io.Writer) int {
	root := newRootCmd(stdin, stderr)
	root.SetArgs(args)
	executed, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}
	if isArgumentError(err) {
		printError(stderr, "error: ", err)
		fmt.Fprintln(stderr)
		if executed == nil {
			executed = root
		}
		executed.Usage()
		return exitArgument
	}
	printError(stderr, "", err)
	return exitFailure
}

func newRootCmd(stdin *os.File, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "r53update [flags] HOST ZONE",
		Short:   "Route53Update Dynamic DNS Updater",
		Long:    "Points the A record HOST.ZONE at this machine's global IPv4 address.\n\nEvery flag can also be set with an " + envPrefix + "_<FLAG> environment variable, e.g. " + envPrefix + "_TTL=600.",
		Example: "  r53update --profile home www example.com",
		Version: r53update.Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return argumentErrorf("expected HOST and ZONE arguments; got %d argument(s)", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(v, args)
			if err != nil {
				return err
			}
			logger, err := newLogger(stderr, opts.Debug, opts.Syslog)
			if err != nil {
				return err
			}
			return update(cmd.Context(), opts, logger, stdin)
		},
	}
	cmd.SetOut(stderr)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(versionTemplate)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &argumentError{err: err}
	})

	flags := cmd.Flags()
	addFlags(flags)
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	cmd.RegisterFlagCompletionFunc("method", fixedCompletion(r53update.Methods()))
	cmd.RegisterFlagCompletionFunc("provider", fixedCompletion([]string{"route53", "cloudflare"}))
	cmd.RegisterFlagCompletionFunc("iface", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names, err := r53update.Interfaces()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	cmd.RegisterFlagCompletionFunc("profile", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return awsProfiles(), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(newCompletionCmd())
	return cmd
}

func addFlags(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.String("profile", "", `name of a profile to use, or "default" to use the default profile`)
	flags.String("method", r53update.DefaultMethod, "detection method of global IP ("+strings.Join(r53update.Methods(), ", ")+")")
	flags.String("iface", "", "name of network interface (implies --method "+r53update.MethodLocalhost+")")
	flags.StringSlice("dns", r53update.DefaultNameservers, "nameservers used to read the current records")
	flags.Int64("ttl", r53update.DefaultTTL, "TTL of the updated record set, in seconds")
	flags.Bool("dry", false, "show the change without applying it")
	flags.Bool("force", false, "update even if the records are up to date")
	flags.Bool("syslog", false, "also log to syslog")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("provider", "route53", "DNS provider hosting the zone (route53, cloudflare)")
	flags.String("cf-token-file", filepath.Join(os.Getenv("HOME"), ".cloudflare"), "path to the Cloudflare API token file")
}

func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate the autocompletion script for the specified shell",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), os.Stdout
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// loadOptions reads the flags (or their environment overrides) and checks their combination.
func loadOptions(v *viper.Viper, args []string) (*options, error) {
	opts := &options{
		Host:        args[0],
		Zone:        args[1],
		Profile:     v.GetString("profile"),
		Method:      v.GetString("method"),
		Iface:       v.GetString("iface"),
		Nameservers: splitList(v.GetStringSlice("dns")),
		TTL:         v.GetInt64("ttl"),
		Dry:         v.GetBool("dry"),
		Force:       v.GetBool("force"),
		Syslog:      v.GetBool("syslog"),
		Debug:       v.GetBool("debug"),
		Provider:    v.GetString("provider"),
		TokenFile:   v.GetString("cf-token-file"),
	}

	if opts.Method == r53update.MethodLocalhost && opts.Iface == "" {
		return nil, &r53update.ConfigurationError{Msg: "you must specify network interface with '--iface' option"}
	}
	if opts.Iface != "" {
		names, err := r53update.Interfaces()
		if err != nil {
			return nil, fmt.Errorf("error listing network interfaces: %w", err)
		}
		if !slices.Contains(names, opts.Iface) {
			return nil, &r53update.ConfigurationError{Msg: fmt.Sprintf("interface name '%s' not found", opts.Iface)}
		}
		opts.Method = r53update.MethodLocalhost
	}
	if len(opts.Nameservers) == 0 {
		return nil, &r53update.ConfigurationError{Msg: "at least one nameserver must be given with '--dns'"}
	}
	switch opts.Provider {
	case "route53", "cloudflare":
	default:
		return nil, &r53update.ConfigurationError{Msg: fmt.Sprintf("unknown provider '%s'", opts.Provider)}
	}
	return opts, nil
}

// splitList flattens comma separated elements. Environment values only split on
// whitespace, so "1.1.1.1,9.9.9.9" arrives as one element.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Collaborator constructors, replaced in tests.
var (
	resolverFor     = r53update.NewResolver
	recordReaderFor = func(nameservers []string) r53update.RecordReader {
		return &r53update.NameserverReader{Nameservers: nameservers}
	}
	zoneUpdaterFor = newZoneUpdater
)

// update runs one reconcile pass with the configured collaborators.
func update(ctx context.Context, opts *options, logger *logrus.Entry, stdin *os.File) error {
	resolver, err := resolverFor(opts.Method, r53update.MethodOptions{
		Iface:       opts.Iface,
		Nameservers: opts.Nameservers,
	})
	if err != nil {
		return err
	}
	logger.Debugf("resolving global ip address with '%s'", opts.Method)

	updaterOpts := []r53update.Option{
		r53update.UsingResolver(resolver),
		r53update.UsingRecordReader(recordReaderFor(opts.Nameservers)),
		r53update.WithLogger(logger),
		r53update.WithTTL(opts.TTL),
		r53update.DryRun(opts.Dry),
		r53update.Force(opts.Force),
	}
	// A dry run never reaches the provider, so it needs no credentials.
	if !opts.Dry {
		zu, err := zoneUpdaterFor(ctx, opts, logger, stdin)
		if err != nil {
			return err
		}
		updaterOpts = append(updaterOpts, r53update.UsingZoneUpdater(zu))
	}

	u, err := r53update.New(opts.Host, opts.Zone, updaterOpts...)
	if err != nil {
		return err
	}
	outcome, err := u.Run(ctx)
	if err != nil {
		return err
	}
	logger.Debugf("finished: %s", outcome)
	return nil
}

func newZoneUpdater(ctx context.Context, opts *options, logger *logrus.Entry, stdin *os.File) (r53update.ZoneUpdater, error) {
	if opts.Provider == "cloudflare" {
		token, err := cloudflareToken(ctx, opts.TokenFile, stdin, logger)
		if err != nil {
			return nil, err
		}
		return r53update.NewCloudflareUpdater(token, nil)
	}
	cfg, err := r53update.LoadAWSConfig(ctx, opts.Profile)
	if err != nil {
		return nil, err
	}
	return r53update.NewRoute53Updater(cfg), nil
}
