package cli

import (
	"context"
	"log/slog"

	"github.com/hkfolio/hkfolio/internal"
	"github.com/hkfolio/hkfolio/internal/build"
	"github.com/hkfolio/hkfolio/internal/manifest"
	"github.com/hkfolio/hkfolio/internal/runtime"
)

// Represents the 'hkfolio build' command.
type BuildCmd struct {
	Recipe     string   `arg:"" optional:"" help:"Path to the recipe YAML." default:"hkfolio.yaml"`
	Output     string   `short:"o" help:"Directory for the exported image archive." default:"${defaultOutput}" placeholder:"DIR"`
	Root       string   `help:"Build context root for resolving copy sources." default:"." placeholder:"DIR"`
	Platforms  []string `help:"Target platforms (e.g. linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`
	Containerd string   `help:"Override the containerd socket address." placeholder:"PATH"`
}

// Executes the build command.
//
// Loads the recipe and executes it against containerd, leaving an OCI image
// archive in the output directory.
func (c *BuildCmd) Run(ctx context.Context) error {
	recipe, err := manifest.Load(c.Recipe)
	if err != nil {
		return err
	}

	rt, err := runtime.New(c.Containerd, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:    recipe,
		Resource:  internal.Name,
		Output:    c.Output,
		Root:      c.Root,
		Platforms: c.Platforms,
	})
	if err != nil {
		return err
	}

	slog.Info("build complete", "output", result.Output)
	return nil
}
