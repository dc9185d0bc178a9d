package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/hkfolio/hkfolio/internal"
	"github.com/hkfolio/hkfolio/internal/analysis"
	"github.com/hkfolio/hkfolio/internal/paths"
)

// Represents the root command for the hkfolio tool.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Socket  string     `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`
	Analyze AnalyzeCmd `cmd:"" help:"Run the portfolio analysis on the host."`
	Build   BuildCmd   `cmd:"" help:"Build the analysis container image from a recipe."`
	Run     RunCmd     `cmd:"" help:"Run a built image archive to completion."`
	Deploy  DeployCmd  `cmd:"" help:"Build the image and run it in one step."`
	Serve   ServeCmd   `cmd:"" help:"Run the analysis daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Hong Kong stock portfolio analysis.\n\nBuilds and runs the analysis container, or runs the pipeline directly on the host."),
		kong.UsageOnError(),
		kong.Vars{
			"version":          internal.VersionString(),
			"defaultPortfolio": analysis.DefaultPortfolio,
			"defaultSheet":     analysis.DefaultSheetID,
			"defaultOutput":    paths.DefaultOutputDir,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
//
// Flags override build-time defaults set via linker flags. The default
// handler is replaced because tint handlers carry their level and formatting
// from construction.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	level := slog.LevelInfo
	if internal.IsDebug() {
		level = slog.LevelDebug
	} else if internal.IsQuiet() {
		level = slog.LevelWarn
	}

	timeFormat := time.Kitchen
	if internal.IsVerbose() {
		timeFormat = time.DateTime
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !isatty(os.Stderr),
	})))
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
