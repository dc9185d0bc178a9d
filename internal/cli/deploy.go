package cli

import (
	"context"
	"path/filepath"
)

// Represents the 'hkfolio deploy' command.
type DeployCmd struct {
	Recipe     string   `arg:"" optional:"" help:"Path to the recipe YAML." default:"hkfolio.yaml"`
	Output     string   `short:"o" help:"Directory for the image archive and analysis results." default:"${defaultOutput}" placeholder:"DIR"`
	Root       string   `help:"Build context root for resolving copy sources." default:"." placeholder:"DIR"`
	Platforms  []string `help:"Target platforms (e.g. linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
	Tag        string   `help:"Tag assigned to the imported image." default:"hkfolio/analysis:latest"`
	Token      string   `env:"TELEGRAM_BOT_TOKEN" help:"Telegram bot token passed to the container."`
	ChatID     string   `env:"TELEGRAM_CHAT_ID" name:"chat-id" help:"Telegram chat ID passed to the container."`
	Containerd string   `help:"Override the containerd socket address." placeholder:"PATH"`
}

// Executes the deploy command.
//
// Builds the image and immediately runs it. The run is skipped when the
// build fails.
func (c *DeployCmd) Run(ctx context.Context) error {
	buildCmd := &BuildCmd{
		Recipe:     c.Recipe,
		Output:     c.Output,
		Root:       c.Root,
		Platforms:  c.Platforms,
		Containerd: c.Containerd,
	}
	if err := buildCmd.Run(ctx); err != nil {
		return err
	}

	runCmd := &RunCmd{
		Image:      filepath.Join(c.Output, "image.tar"),
		Tag:        c.Tag,
		Output:     c.Output,
		Token:      c.Token,
		ChatID:     c.ChatID,
		Containerd: c.Containerd,
	}
	return runCmd.Run(ctx)
}
