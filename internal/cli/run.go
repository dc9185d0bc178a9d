package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/hkfolio/hkfolio/internal"
	"github.com/hkfolio/hkfolio/internal/paths"
	"github.com/hkfolio/hkfolio/internal/runtime"
)

// Represents the 'hkfolio run' command.
type RunCmd struct {
	Image      string `arg:"" optional:"" help:"Path to the image archive." default:"output/image.tar"`
	Tag        string `help:"Tag assigned to the imported image." default:"hkfolio/analysis:latest"`
	Output     string `short:"o" help:"Host directory bind-mounted into the container." default:"${defaultOutput}" placeholder:"DIR"`
	Token      string `env:"TELEGRAM_BOT_TOKEN" help:"Telegram bot token passed to the container."`
	ChatID     string `env:"TELEGRAM_CHAT_ID" name:"chat-id" help:"Telegram chat ID passed to the container."`
	Containerd string `help:"Override the containerd socket address." placeholder:"PATH"`
}

// Executes the run command.
//
// Imports the image archive, then runs it to completion with the Telegram
// credentials injected and the host output directory mounted at the
// container's output path. The container's exit code becomes the command's
// exit code.
func (c *RunCmd) Run(ctx context.Context) error {
	if c.Token == "" || c.ChatID == "" {
		return ErrNoCredentials
	}

	output, err := filepath.Abs(c.Output)
	if err != nil {
		return errors.Wrap(err, "resolving output directory")
	}
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	rt, err := runtime.New(c.Containerd, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.ImportImage(ctx, c.Image, c.Tag); err != nil {
		return err
	}

	code, err := rt.RunTask(ctx, runtime.TaskOptions{
		Tag: c.Tag,
		ID:  internal.Name + "-analysis",
		Env: []string{
			"TELEGRAM_BOT_TOKEN=" + c.Token,
			"TELEGRAM_CHAT_ID=" + c.ChatID,
		},
		Mounts: []runtime.Mount{{
			Source:      output,
			Destination: paths.ContainerOutputDir,
		}},
	})
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Code: code}
	}

	slog.Info("run complete", "output", output)
	return nil
}
