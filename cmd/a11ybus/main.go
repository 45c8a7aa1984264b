// Package main is the entry point for the a11ybus event monitor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/a11ybus/internal/app"
	"github.com/dshills/a11ybus/internal/config"
	"github.com/dshills/a11ybus/internal/event/dispatch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// options holds the flags shared by every command. Empty values leave the
// configuration untouched.
type options struct {
	configPath string
	logLevel   string
	format     string
	output     string
	keys       string
	script     string
	record     string
	dedup      bool
	fromEnd    bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&o.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.format, "format", "", "Output format (text, json, yaml)")
	fs.StringVar(&o.output, "o", "", "Write events to this file instead of stdout")
	fs.StringVar(&o.keys, "keys", "", "Comma-separated event keys to show, e.g. Object:,Focus:Focus")
	fs.StringVar(&o.script, "script", "", "Lua filter script")
	fs.StringVar(&o.record, "record", "", "Append every received message to this capture file")
	fs.BoolVar(&o.dedup, "dedup", false, "Suppress repeated events")
}

func (o *options) apply(cfg *config.Config) {
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.output != "" {
		cfg.Output.Path = o.output
	}
	if o.keys != "" {
		cfg.Filter.Keys = strings.Split(o.keys, ",")
	}
	if o.script != "" {
		cfg.Filter.Script = o.script
	}
	if o.record != "" {
		cfg.Capture.Record = o.record
	}
	if o.dedup {
		cfg.Dedup.Enabled = true
	}
	if o.fromEnd {
		cfg.Capture.FromEnd = true
	}
}

func (o *options) load() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string) int {
	if len(args) == 0 {
		usage(os.Stderr)
		return 2
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "monitor":
		return runApp(cmd, rest, func(ctx context.Context, a *app.App, _ []string) error {
			return a.Monitor(ctx)
		})
	case "decode":
		return runApp(cmd, rest, func(ctx context.Context, a *app.App, files []string) error {
			if len(files) == 0 {
				return a.Decode(ctx, os.Stdin)
			}
			for _, f := range files {
				if err := a.Replay(ctx, f, false); err != nil {
					return fmt.Errorf("%s: %w", f, err)
				}
			}
			return nil
		})
	case "follow":
		return runApp(cmd, rest, func(ctx context.Context, a *app.App, files []string) error {
			if len(files) != 1 {
				return errors.New("follow takes exactly one capture file")
			}
			return a.Replay(ctx, files[0], true)
		})
	case "rules":
		return runRules(rest)
	case "signals":
		for _, sig := range dispatch.Default().Signals() {
			fmt.Printf("%-32s %s\n", sig.Key(), sig)
		}
		return 0
	case "version", "-v", "-version", "--version":
		fmt.Printf("a11ybus %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	case "help", "-h", "-help", "--help":
		usage(os.Stdout)
		return 0
	}

	fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
	usage(os.Stderr)
	return 2
}

func runApp(name string, args []string, body func(context.Context, *app.App, []string) error) int {
	var opts options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	opts.register(fs)
	if name == "follow" {
		fs.BoolVar(&opts.fromEnd, "from-end", false, "Skip lines already in the file")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := opts.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := body(ctx, application, fs.Args())
	closeErr := application.Close()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		return 1
	}
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", closeErr)
		return 1
	}
	return 0
}

func runRules(args []string) int {
	var opts options
	fs := flag.NewFlagSet("rules", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := opts.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	tags := cfg.Bus.Groups
	if fs.NArg() > 0 {
		tags = fs.Args()
	}
	for _, rule := range app.MatchRules(tags) {
		fmt.Println(rule)
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "a11ybus - AT-SPI accessibility event monitor\n\n")
	fmt.Fprintf(w, "Usage: a11ybus <command> [options] [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  monitor            Listen on the accessibility bus\n")
	fmt.Fprintf(w, "  decode [files...]  Decode capture files, or stdin\n")
	fmt.Fprintf(w, "  follow <file>      Decode a capture file as it grows\n")
	fmt.Fprintf(w, "  rules [tags...]    Print the bus match rules\n")
	fmt.Fprintf(w, "  signals            List every known signal key\n")
	fmt.Fprintf(w, "  version            Show version information\n")
	fmt.Fprintf(w, "\nRun 'a11ybus <command> -h' for command options.\n")
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  a11ybus monitor -keys Focus:,Object:StateChanged\n")
	fmt.Fprintf(w, "  a11ybus monitor -record session.jsonl -format json\n")
	fmt.Fprintf(w, "  a11ybus decode -script focus.lua session.jsonl\n")
}
