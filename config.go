package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	graceDelay    time.Duration
	maxNameLength int
	maxPlayers    int
	port          int
	prefix        string
	profile       bool
	roomTimeout   time.Duration
	sweepInterval time.Duration
	tickInterval  time.Duration
	tlsCert       string
	tlsKey        string
	verbose       bool
	version       bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("invalid max player count (need at least 2): %d", c.maxPlayers)
	}
	if c.maxNameLength < 1 {
		return fmt.Errorf("invalid max name length: %d", c.maxNameLength)
	}
	if c.tickInterval <= 0 {
		return fmt.Errorf("invalid tick interval: %s", c.tickInterval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DRAWBLINS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "drawblins",
		Short:         "Relay server for the Drawblins party drawing game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: DRAWBLINS_BIND)")
	fs.DurationVar(&cfg.graceDelay, "grace-delay", 2*time.Second, "time allowed for auto-submissions after the drawing timer expires (env: DRAWBLINS_GRACE_DELAY)")
	fs.IntVar(&cfg.maxNameLength, "max-name-length", 20, "longest allowed player name (env: DRAWBLINS_MAX_NAME_LENGTH)")
	fs.IntVar(&cfg.maxPlayers, "max-players", 8, "most players allowed in a single room (env: DRAWBLINS_MAX_PLAYERS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: DRAWBLINS_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: DRAWBLINS_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: DRAWBLINS_PROFILE)")
	fs.DurationVar(&cfg.roomTimeout, "room-timeout", 30*time.Minute, "time before idle rooms are evicted (env: DRAWBLINS_ROOM_TIMEOUT)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 10*time.Minute, "how often idle rooms are checked for eviction (env: DRAWBLINS_SWEEP_INTERVAL)")
	fs.DurationVar(&cfg.tickInterval, "tick-interval", time.Second, "countdown tick granularity (env: DRAWBLINS_TICK_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: DRAWBLINS_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: DRAWBLINS_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: DRAWBLINS_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: DRAWBLINS_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("drawblins v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
