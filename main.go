package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"pixiestitch/parallel"
	"pixiestitch/stitch"
)

type LogConfig struct {
	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"info" group:"log"`
	LogFormat string `help:"Log format" enum:"text,json" default:"text" group:"log"`
}

// AfterApply installs the logger before the command validates its flags.
func (l *LogConfig) AfterApply() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", l.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch l.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

type cli struct {
	LogConfig
	stitch.CLICmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("pixiestitch"),
		kong.Description("Turn pixel art into cross-stitch patterns."),
		kong.UsageOnError(),
		stitch.Vars,
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	slog.Debug("running", "images", len(app.Images), "workers", app.Workers)

	pool := parallel.Start(app.Workers)
	kctx.FatalIfErrorf(kctx.Run(pool.Do, pool.Wait))
}
