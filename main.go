package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"palbmp/convert"
	"palbmp/inspect"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

type CLI struct {
	Config    kong.ConfigFlag `help:"YAML file providing default flag values"`
	LogLevel  string          `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string          `help:"Log format, auto picks text on a terminal and JSON otherwise" enum:"auto,text,json" default:"auto"`

	Convert convert.CLICmd `cmd:"" help:"Convert images to 8-bit palette indexed BMP files"`
	Inspect inspect.CLICmd `cmd:"" help:"Validate and describe 8-bit indexed BMP files"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("palbmp"),
		kong.Description("Converts truecolor images into 256 color indexed bitmaps."),
		kong.UsageOnError(),
		kong.Configuration(yamlConfig),
	)

	logger, err := newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), cli.LogLevel, cli.LogFormat)
	kctx.FatalIfErrorf(err)
	slog.SetDefault(logger)

	kctx.FatalIfErrorf(kctx.Run(logger))
}

func newLogger(w io.Writer, tty bool, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if format == "auto" {
		format = "json"
		if tty {
			format = "text"
		}
	}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}
