// Package config gathers lockbox settings from defaults, an optional YAML
// file, the environment and the command line, in increasing order of
// precedence.
package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"
)

// Environment variables read by Parse.
const (
	EnvConfig = "LOCKBOX_CONFIG"
	EnvData   = "LOCKBOX_DATA"
)

// Options holds the settings of one run.
type Options struct {
	// Data is the path of the encrypted data file.
	Data string `yaml:"data"`

	// Interval is the minimum time between two accesses to the data file.
	// Zero disables the check.
	Interval time.Duration `yaml:"interval"`

	// Mask keeps the session key XOR-masked in memory between uses.
	Mask bool `yaml:"mask"`

	// Plain selects the line console instead of the full-screen UI.
	Plain bool `yaml:"plain"`

	LogFile  string `yaml:"logFile"`
	LogLevel string `yaml:"logLevel"`

	// Config is the path of the YAML file that was read, if any.
	Config string `yaml:"-"`

	// Version asks to print the version and exit.
	Version bool `yaml:"-"`
}

// Default returns the settings used when nothing else is given.
func Default() *Options {
	return &Options{
		Data:     "./lockbox.data",
		Interval: 3 * time.Second,
		Mask:     true,
		LogLevel: "info",
	}
}

// Parse reads the settings for a run started with args (without the
// program name). Help output and usage errors go to stderr.
func Parse(args []string, stderr io.Writer) (*Options, error) {
	opts := Default()

	flags := pflag.NewFlagSet("lockbox", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVarP(&opts.Config, "config", "c", os.Getenv(EnvConfig), "path to a YAML config file")
	flags.StringVarP(&opts.Data, "data", "f", opts.Data, "path to the encrypted data file")
	flags.DurationVar(&opts.Interval, "interval", opts.Interval, "minimum time between two runs, 0 to disable")
	flags.BoolVar(&opts.Mask, "mask", opts.Mask, "keep the session key masked in memory")
	flags.BoolVar(&opts.Plain, "plain", opts.Plain, "use the line console instead of the full-screen UI")
	flags.StringVar(&opts.LogFile, "log-file", opts.LogFile, "write logs to this file")
	flags.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&opts.Version, "version", false, "print the version and exit")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if opts.Config != "" {
		if err := opts.load(opts.Config); err != nil {
			return nil, err
		}
	}
	if data := os.Getenv(EnvData); data != "" {
		opts.Data = data
	}

	// Flags given explicitly win over the file and the environment.
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "data":
			opts.Data, err = flags.GetString("data")
		case "interval":
			opts.Interval, err = flags.GetDuration("interval")
		case "mask":
			opts.Mask, err = flags.GetBool("mask")
		case "plain":
			opts.Plain, err = flags.GetBool("plain")
		case "log-file":
			opts.LogFile, err = flags.GetString("log-file")
		case "log-level":
			opts.LogLevel, err = flags.GetString("log-level")
		}
	})
	if err != nil {
		return nil, err
	}

	if opts.Data == "" {
		return nil, errors.New("the data file path cannot be empty")
	}
	if opts.Interval < 0 {
		return nil, errors.Errorf("invalid interval %s", opts.Interval)
	}
	return opts, nil
}

// load overlays the settings found in a YAML file on opts. Durations are
// written the way time.ParseDuration reads them, such as "3s".
func (opts *Options) load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "error while reading config file %q", path)
	}
	if err := yaml.UnmarshalStrict(raw, opts); err != nil {
		return errors.Wrapf(err, "error while parsing config file %q", path)
	}
	return nil
}
