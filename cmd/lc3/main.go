// Command lc3 encodes raw PCM into Ogg-wrapped lc3 streams, decodes them
// back, and reports on recorded frame traces.
//
// Usage:
//
//	lc3 encode -in speech.pcm -out speech.lc3 -rate 16000 -bitrate 32000
//	lc3 decode -in speech.lc3 -out speech.pcm
//	lc3 info -in speech.lc3
//	lc3 stats -trace-db traces.db
//
// Settings come from an optional YAML file (-config) overridden by flags.
// Input and output default to stdin and stdout; logs go to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/thesyncim/lc3/internal/config"
	"github.com/thesyncim/lc3/internal/infrastructure"
	"github.com/thesyncim/lc3/internal/tracestore"
)

// command is one subcommand. in and out are paths, "-" for stdin/stdout.
type command struct {
	summary string
	run     func(c *cli, in, out string) error
}

var commands = map[string]command{
	"encode": {"encode raw little-endian PCM into an Ogg lc3 stream", (*cli).encode},
	"decode": {"decode an Ogg lc3 stream into raw little-endian PCM", (*cli).decode},
	"info":   {"print the headers and length of an Ogg lc3 stream", (*cli).info},
	"stats":  {"summarize the sessions of a trace database", (*cli).stats},
}

// cli carries what every command needs.
type cli struct {
	cfg    *config.Config
	log    *zap.Logger
	traces *tracestore.Store // nil without a trace database
	stdin  io.Reader
	stdout io.Writer
}

func newCLI(cfg *config.Config, log *zap.Logger, traces *tracestore.Store) *cli {
	return &cli{cfg: cfg, log: log, traces: traces, stdin: os.Stdin, stdout: os.Stdout}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		return 2
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "lc3: unknown command %q\n", name)
		usage(stderr)
		return 2
	}

	fs := flag.NewFlagSet("lc3 "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	in := fs.String("in", "-", "input file, - for stdin")
	out := fs.String("out", "-", "output file, - for stdout")
	var ov overrides
	ov.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	var c *cli
	app := fx.New(
		config.Module,
		infrastructure.LoggerModule,
		infrastructure.TraceModule,
		fx.Supply(config.Source{Path: *configPath, Overrides: ov.collect(fs)}),
		fx.Provide(newCLI),
		fx.Populate(&c),
		fx.WithLogger(infrastructure.NewFxLogger),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(stderr, "lc3: %v\n", err)
		return 1
	}

	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(stderr, "lc3: %v\n", err)
		return 1
	}

	code := 0
	if err := cmd.run(c, *in, *out); err != nil {
		c.log.Error(name+" failed", zap.Error(err))
		code = 1
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(stderr, "lc3: shutdown: %v\n", err)
		code = 1
	}
	return code
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lc3 <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-8s %s\n", n, commands[n].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'lc3 <command> -h' for the flags of a command.")
}

// overrides holds the flags that take precedence over the configuration
// file. Only flags present on the command line are applied.
type overrides struct {
	durationUS int
	sampleRate int
	hr         bool
	channels   int
	bitrate    int
	frameBytes int
	bitDepth   int
	logLevel   string
	traceDB    string
	label      string
}

func (o *overrides) register(fs *flag.FlagSet) {
	fs.IntVar(&o.durationUS, "duration", 0, "frame duration in microseconds: 2500, 5000, 7500 or 10000")
	fs.IntVar(&o.sampleRate, "rate", 0, "sample rate in Hz")
	fs.BoolVar(&o.hr, "hr", false, "high-resolution mode (48 or 96 kHz)")
	fs.IntVar(&o.channels, "channels", 0, "number of interleaved channels")
	fs.IntVar(&o.bitrate, "bitrate", 0, "bitrate per channel in bit/s")
	fs.IntVar(&o.frameBytes, "frame-bytes", 0, "frame size per channel in bytes, overrides -bitrate")
	fs.IntVar(&o.bitDepth, "bits", 0, "PCM sample format: 16, 24, 32, or 0 for float32")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.traceDB, "trace-db", "", "record per-frame traces in this SQLite database")
	fs.StringVar(&o.label, "label", "", "trace session label, defaults to the input name")
}

func (o *overrides) collect(fs *flag.FlagSet) []func(*config.Config) {
	var out []func(*config.Config)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			out = append(out, func(c *config.Config) { c.Codec.FrameDurationUS = o.durationUS })
		case "rate":
			out = append(out, func(c *config.Config) { c.Codec.SampleRateHz = o.sampleRate })
		case "hr":
			out = append(out, func(c *config.Config) { c.Codec.HighResolution = o.hr })
		case "channels":
			out = append(out, func(c *config.Config) { c.Codec.Channels = o.channels })
		case "bitrate":
			out = append(out, func(c *config.Config) { c.Codec.Bitrate = o.bitrate; c.Codec.FrameBytes = 0 })
		case "frame-bytes":
			out = append(out, func(c *config.Config) { c.Codec.FrameBytes = o.frameBytes })
		case "bits":
			out = append(out, func(c *config.Config) { c.Codec.BitDepth = o.bitDepth })
		case "log-level":
			out = append(out, func(c *config.Config) { c.LogLevel = o.logLevel })
		case "trace-db":
			out = append(out, func(c *config.Config) { c.Trace.DB = o.traceDB })
		case "label":
			out = append(out, func(c *config.Config) { c.Trace.Label = o.label })
		}
	})
	return out
}
