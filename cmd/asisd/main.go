package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/indigo-web/asisd"
	"github.com/indigo-web/asisd/config"
	jsoniter "github.com/json-iterator/go"
)

const version = "0.5"

var (
	errorPrefix = color.New(color.FgRed, color.Bold)
	highlight   = color.New(color.FgCyan)
)

type options struct {
	configPath  string
	root        string
	logLevel    string
	logFormat   string
	readTimeout time.Duration
	version     bool
	printConfig bool
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	name := filepath.Base(args[0])
	flags, opts := newFlagSet(name)

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout, name, flags)
			return 0
		}

		if option, ok := strings.CutPrefix(err.Error(), "flag provided but not defined: -"); ok {
			fail(stderr, name, "unknown option %s", rawOption(args[1:], option))
		} else {
			fail(stderr, name, "%s", err)
		}
		fail(stderr, name, "try %s --help", name)
		return 1
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", name, version)
		fmt.Fprintln(stdout, "Copyright (C) 2019 Michael Homer")
		fmt.Fprintln(stdout, "Distributed under the MIT licence.")
		return 0
	}

	if flags.NArg() > 1 {
		fail(stderr, name, "too many arguments")
		fail(stderr, name, "try %s --help", name)
		return 1
	}

	cfg, err := buildConfig(flags, opts)
	if err != nil {
		fail(stderr, name, "%s", err)
		return 1
	}

	if opts.printConfig {
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fail(stderr, name, "%s", err)
			return 1
		}

		fmt.Fprintln(stdout, string(data))
		return 0
	}

	logger := newLogger(cfg.Log, stderr)
	fmt.Fprintf(stdout, "%s: Using socket path %s and awaiting requests\n",
		name, highlight.Sprint(cfg.NET.SocketPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = asisd.New(cfg).Logger(logger).Serve(ctx); err != nil {
		fail(stderr, name, "%s", err)
		return 1
	}

	return 0
}

func newFlagSet(name string) (*flag.FlagSet, *options) {
	opts := new(options)
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	// the flag package calls Usage on every parse error, not only on -help
	flags.Usage = func() {}

	flags.StringVar(&opts.configPath, "config", "", "TOML `file` to load settings from")
	flags.StringVar(&opts.root, "root", "", "`directory` to serve (default \".\")")
	flags.StringVar(&opts.logLevel, "log-level", "", "one of debug, info, warn, error (default \"info\")")
	flags.StringVar(&opts.logFormat, "log-format", "", "either text or json (default \"text\")")
	flags.DurationVar(&opts.readTimeout, "read-timeout", 0, "drop connections idle for this long (default: never)")
	flags.BoolVar(&opts.version, "version", false, "print the version and exit")
	flags.BoolVar(&opts.printConfig, "print-config", false, "print the effective configuration as JSON and exit")

	return flags, opts
}

func printUsage(out io.Writer, name string, flags *flag.FlagSet) {
	fmt.Fprintf(out, "Usage: %s [options] [socket_path]\n", name)
	fmt.Fprintln(out, "Serve the .asis files of a directory over the unix socket socket_path.")
	fmt.Fprintf(out, "If socket_path is not provided, the default is %s\n", config.Default().NET.SocketPath)
	fmt.Fprintln(out, "Options:")
	flags.SetOutput(out)
	flags.PrintDefaults()
	flags.SetOutput(io.Discard)
}

// rawOption finds the argument the undefined flag came from, so it's reported
// exactly as typed (e.g. with both dashes or an =value).
func rawOption(args []string, name string) string {
	for _, arg := range args {
		if arg == "--" {
			break
		}

		flagName := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
		flagName, _, _ = strings.Cut(flagName, "=")
		if flagName == name {
			return arg
		}
	}

	return "-" + name
}

// buildConfig layers the config file over the defaults, and explicitly passed
// flags over both.
func buildConfig(flags *flag.FlagSet, opts *options) (cfg *config.Config, err error) {
	cfg = config.Default()
	if len(opts.configPath) > 0 {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.FS.Root = opts.root
		case "log-level":
			cfg.Log.Level = opts.logLevel
		case "log-format":
			cfg.Log.Format = opts.logFormat
		case "read-timeout":
			cfg.NET.ReadTimeout = config.Duration(opts.readTimeout)
		}
	})

	if flags.NArg() == 1 {
		cfg.NET.SocketPath = flags.Arg(0)
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Log, out io.Writer) *slog.Logger {
	// the config is validated at this point
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	return slog.New(slog.NewTextHandler(out, opts))
}

func fail(out io.Writer, name, format string, args ...any) {
	fmt.Fprintf(out, "%s: %s %s\n", name, errorPrefix.Sprint("error:"), fmt.Sprintf(format, args...))
}
