// =============================================
// File: internal/config/options.go
// =============================================
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. LIMITBOT_TOKENS.
const EnvPrefix = "LIMITBOT"

// Options holds process-level options taken from flags and environment.
type Options struct {
	SettingsPath    string        `mapstructure:"settings"`
	TokensPath      string        `mapstructure:"tokens"`
	Verbose         bool          `mapstructure:"verbose"`
	Debug           bool          `mapstructure:"debug"`
	SlowMode        bool          `mapstructure:"slow_mode"`
	PollInterval    time.Duration `mapstructure:"-"`
	PollIntervalMS  int           `mapstructure:"poll_interval"`
	RepeatThreshold int           `mapstructure:"repeat_threshold"`
	LogFile         string        `mapstructure:"log_file"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReleaseRepo     string        `mapstructure:"release_repo"`
}

const (
	DefaultSettingsPath    = "./settings.json"
	DefaultTokensPath      = "./tokens.json"
	DefaultPollIntervalMS  = 250
	SlowModePollIntervalMS = 500
	DefaultRepeatThreshold = 500
	DefaultLogFile         = "./logs/bot.log"
	DefaultReleaseRepo     = "rovshanmuradov/limit-bot"
)

// LoadOptions reads options from flags (when given) and LIMITBOT_* env vars.
func LoadOptions(flags *pflag.FlagSet) (*Options, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("settings", DefaultSettingsPath)
	v.SetDefault("tokens", DefaultTokensPath)
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)
	v.SetDefault("slow_mode", false)
	v.SetDefault("poll_interval", DefaultPollIntervalMS)
	v.SetDefault("repeat_threshold", DefaultRepeatThreshold)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("release_repo", DefaultReleaseRepo)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	if opts.SlowMode && opts.PollIntervalMS < SlowModePollIntervalMS {
		opts.PollIntervalMS = SlowModePollIntervalMS
	}
	opts.PollInterval = time.Duration(opts.PollIntervalMS) * time.Millisecond

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (o *Options) validate() error {
	if o.SettingsPath == "" {
		return fmt.Errorf("settings path is required")
	}
	if o.TokensPath == "" {
		return fmt.Errorf("tokens path is required")
	}
	if o.PollIntervalMS <= 0 {
		return fmt.Errorf("invalid poll_interval: %d", o.PollIntervalMS)
	}
	if o.RepeatThreshold < 0 {
		o.RepeatThreshold = DefaultRepeatThreshold
	}
	return nil
}
