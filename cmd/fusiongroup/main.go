// Package main provides the fusiongroup CLI, which reports the elementwise
// fusion groups of ONNX models and YAML graph descriptions.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/born-ml/fusion/fusion"
	"github.com/born-ml/fusion/internal/parallel"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const version = "v0.1.0-dev"

const (
	formatText = "text"
	formatYAML = "yaml"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// fileResult is the outcome for one input file.
type fileResult struct {
	File   string         `yaml:"file"`
	Report *fusion.Report `yaml:"report,omitempty"`
	Error  string         `yaml:"error,omitempty"`
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(stdout, "fusiongroup %s\n", version)
		return 0
	}

	fs := newFlagSet(stderr)
	cfg, files, err := loadConfig(fs, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "fusiongroup: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		fs.Usage()
		return 2
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "fusiongroup: %v\n", err)
		return 2
	}

	reg := fusion.DefaultRegistry()
	if cfg.Registry != "" {
		reg = fusion.NewRegistry()
		if err := reg.LoadFile(cfg.Registry); err != nil {
			logger.WithError(err).Error("failed to load registry")
			return 1
		}
	}

	promReg := prometheus.NewRegistry()
	detector := fusion.NewDetector(reg,
		fusion.WithMinGroupSize(cfg.MinGroupSize),
		fusion.WithExcludeGrad(cfg.ExcludeGrad),
		fusion.WithLogger(logger.WithFields(logrus.Fields{"pkg": "fusion", "pass": "elementwise"})),
		fusion.WithMetrics(fusion.NewMetrics(promReg)),
	)

	results := analyze(detector, files, cfg, logger)

	if err := writeResults(stdout, results, cfg.Format); err != nil {
		logger.WithError(err).Error("failed to write results")
		return 1
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, promReg); err != nil {
			logger.WithError(err).WithField("path", cfg.MetricsFile).Error("failed to write metrics")
			return 1
		}
	}

	for _, r := range results {
		if r.Error != "" {
			return 1
		}
	}
	return 0
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log-level")
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	return logger, nil
}

// analyze loads and analyzes every file. Results keep the input order.
func analyze(d *fusion.Detector, files []string, cfg *config, logger *logrus.Logger) []fileResult {
	results := make([]fileResult, len(files))
	parallel.For(len(files), func(i int) {
		results[i].File = files[i]

		g, err := fusion.Load(files[i])
		if err != nil {
			logger.WithError(err).WithField("file", files[i]).Error("failed to load graph")
			results[i].Error = err.Error()
			return
		}
		report := d.Analyze(g, cfg.Explain)
		results[i].Report = &report
	}, parallel.Workers(cfg.Workers))
	return results
}

func writeResults(w io.Writer, results []fileResult, format string) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return errors.Wrap(err, "failed to encode results")
		}
		return enc.Close()
	}

	for _, r := range results {
		if r.Error != "" {
			if _, err := fmt.Fprintf(w, "%s: error: %s\n", r.File, r.Error); err != nil {
				return err
			}
			continue
		}
		if err := writeText(w, r.File, r.Report); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, file string, r *fusion.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: graph %q, %d operators, %d groups, %d fused\n",
		file, r.Graph, r.Operators, len(r.Groups), r.Fused)
	for i, grp := range r.Groups {
		fmt.Fprintf(&b, "  group %d: %s\n", i+1, strings.Join(grp, " "))
	}
	for _, v := range r.Rejected {
		fmt.Fprintf(&b, "  %s\n", v)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
