package main

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "FUSIONGROUP"

// config holds the resolved settings. Flags win over environment
// variables, which win over the config file.
type config struct {
	Registry     string
	MinGroupSize int
	ExcludeGrad  bool
	Format       string
	LogLevel     string
	Explain      bool
	MetricsFile  string
	Workers      int
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("fusiongroup", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("registry", "", "operator table replacing the built-in one")
	fs.Int("min-group-size", 2, "smallest group to report")
	fs.Bool("exclude-grad", false, "keep backward operators out of groups")
	fs.String("format", "text", "output format: text or yaml")
	fs.String("log-level", "warning", "log level")
	fs.Bool("explain", false, "list rejected operators and the reason")
	fs.String("metrics-file", "", "write Prometheus metrics to this file")
	fs.Int("workers", 0, "graphs analyzed at once (0 = number of CPUs)")
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, "Usage: fusiongroup [flags] <graph.onnx|graph.yaml>...\n       fusiongroup version\n\nFlags:\n")
		fs.PrintDefaults()
	}
	return fs
}

// loadConfig parses args and returns the configuration and the graph files.
func loadConfig(fs *pflag.FlagSet, args []string) (*config, []string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, errors.Wrap(err, "failed to bind flags")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read config %s", path)
		}
	}

	cfg := &config{
		Registry:     v.GetString("registry"),
		MinGroupSize: v.GetInt("min-group-size"),
		ExcludeGrad:  v.GetBool("exclude-grad"),
		Format:       strings.ToLower(v.GetString("format")),
		LogLevel:     v.GetString("log-level"),
		Explain:      v.GetBool("explain"),
		MetricsFile:  v.GetString("metrics-file"),
		Workers:      v.GetInt("workers"),
	}
	if cfg.Format != formatText && cfg.Format != formatYAML {
		return nil, nil, errors.Errorf("unknown format %q: expected %s or %s", cfg.Format, formatText, formatYAML)
	}
	if cfg.MinGroupSize < 1 {
		return nil, nil, errors.Errorf("min-group-size must be at least 1, got %d", cfg.MinGroupSize)
	}
	return cfg, fs.Args(), nil
}
