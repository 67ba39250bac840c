// Package main is the entry point for blockforge, which replays a recorded
// editing script against a canvas and schema history and prints the
// resulting timelines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/blockforge/internal/config"
	"github.com/dshills/blockforge/internal/logging"
	"github.com/dshills/blockforge/internal/metrics"
	"github.com/dshills/blockforge/internal/session"
	"github.com/dshills/blockforge/internal/timeline"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	logLevel   string
	format     string
	watch      bool
	script     string
}

var errHelp = errors.New("help requested")

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("blockforge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	fs.StringVar(&opts.format, "format", "", "Timeline format (text, json, cbor); overrides the config")
	fs.BoolVar(&opts.watch, "watch", false, "Replay again whenever the config file changes")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "blockforge - replay editor sessions against the undo/redo history\n\n")
		fmt.Fprintf(stderr, "Usage: blockforge [options] script.{yaml,yml,toml}\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  blockforge session.yaml                     Replay and print the timelines\n")
		fmt.Fprintf(stderr, "  blockforge -format json session.toml        Print timelines as JSON\n")
		fmt.Fprintf(stderr, "  blockforge -watch -c bf.toml session.yaml   Replay on every config change\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errHelp
		}
		return opts, err
	}

	if showVersion {
		fmt.Fprintf(stderr, "blockforge %s\nCommit: %s\nBuilt: %s\n", version, commit, date)
		return opts, errHelp
	}

	if opts.logLevel != "" {
		switch opts.logLevel {
		case "debug", "info", "warn", "error":
		default:
			return opts, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
		}
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errors.New("expected exactly one script file")
	}
	opts.script = fs.Arg(0)

	if opts.watch && opts.configPath == "" {
		return opts, errors.New("-watch requires -config")
	}

	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, errHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	cfg = applyOverrides(cfg, opts)

	logCfg := logging.DefaultConfig()
	logCfg.Output = stderr
	logCfg.Level = logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(logCfg)

	script, err := LoadScript(opts.script)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	var reg *prometheus.Registry
	mgrOpts := []session.Option{session.WithLogger(logger)}
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		mgrOpts = append(mgrOpts, session.WithMetrics(metrics.NewCollector(reg, "blockforge")))
	}

	mgr, err := session.NewManager(cfg, mgrOpts...)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}

	if err := replayAndPrint(mgr, script, logger, stdout); err != nil {
		logger.Error("%v", err)
		return 1
	}
	if reg != nil {
		if err := writeMetrics(stderr, reg); err != nil {
			logger.Warn("gathering metrics: %v", err)
		}
	}

	if !opts.watch {
		return 0
	}

	logger.Info("watching %s", opts.configPath)
	err = config.Watch(ctx, opts.configPath, reloadHandler(mgr, script, opts, logger, stdout))
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	return 0
}

// reloadHandler applies each reloaded config to mgr and replays the script
// under it. Flag overrides keep precedence over the file.
func reloadHandler(mgr *session.Manager, script *Script, opts options, logger *logging.Logger, w io.Writer) config.WatchHandler {
	return func(next config.Config, err error) {
		if err != nil {
			logger.Error("reloading config: %v", err)
			return
		}
		if err := mgr.SetConfig(applyOverrides(next, opts)); err != nil {
			logger.Error("%v", err)
			return
		}
		if err := replayAndPrint(mgr, script, logger, w); err != nil {
			logger.Error("%v", err)
		}
	}
}

func applyOverrides(cfg config.Config, opts options) config.Config {
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.format != "" {
		cfg.TimelineFormat = opts.format
	}
	return cfg
}

// replayAndPrint opens a session from the script's document, replays its
// steps, flushes pending edits and prints both timelines.
func replayAndPrint(mgr *session.Manager, script *Script, logger *logging.Logger, w io.Writer) error {
	s, err := mgr.Open(script.Blocks, script.Tables)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := replay(s, script.Steps, logger, time.Sleep); err != nil {
		return err
	}
	s.Flush()

	now := time.Now()
	format := mgr.Config().TimelineFormat
	canvasRows := timeline.Build(s.Canvas.Entries(), now)
	schemaRows := timeline.Build(s.Schema.Entries(), now)

	if format == timeline.FormatText {
		fmt.Fprintln(w, "canvas:")
		if err := timeline.Render(w, canvasRows); err != nil {
			return err
		}
		fmt.Fprintln(w, "schema:")
		return timeline.Render(w, schemaRows)
	}

	if err := timeline.Write(w, format, canvasRows); err != nil {
		return err
	}
	return timeline.Write(w, format, schemaRows)
}

// writeMetrics prints every gathered sample as name{labels} value.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}

			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", f.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
