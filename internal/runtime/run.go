package runtime

import (
	"context"
	"log/slog"
	"os"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/pkg/errors"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// A host path mapped into a container's filesystem.
type Mount struct {
	Source      string // Absolute host path.
	Destination string // Absolute path inside the container.
	ReadOnly    bool
}

// Controls a single run-to-completion task.
type TaskOptions struct {
	Tag    string   // Image tag to run, previously imported via [Runtime.ImportImage].
	ID     string   // Container ID. A stale container with the same ID is replaced.
	Env    []string // Environment overrides in "key=value" form, merged over the image config.
	Mounts []Mount  // Bind mounts applied to the container.
}

// Runs a container to completion using the image's configured entrypoint.
//
// Unlike [Runtime.StartContainer], which keeps a sleep task alive for build
// execs, RunTask starts the image's own entrypoint as the primary process,
// attaches its stdout and stderr to the calling process, and blocks until it
// exits. The container and its snapshot are removed before returning. The
// process exit code is returned so callers can propagate it.
//
// If the context is cancelled while the task is running, the task is killed
// with SIGKILL and the context error is returned.
func (rt *Runtime) RunTask(ctx context.Context, opts TaskOptions) (int, error) {
	platform := defaultPlatform()

	c := &Container{
		client:   rt.client,
		id:       opts.ID,
		platform: platform,
	}

	c.remove(ctx)

	image, err := rt.resolveImage(ctx, opts.Tag, platform)
	if err != nil {
		return 0, errors.Wrapf(err, "resolving %s", opts.Tag)
	}

	ctr, err := rt.client.NewContainer(ctx, opts.ID,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(opts.ID, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(runSpecOpts(image, platform, opts)...),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "creating container %s", opts.ID)
	}
	defer ctr.Delete(context.WithoutCancel(ctx), containerd.WithSnapshotCleanup)

	slog.Debug("running container", "id", opts.ID, "image", opts.Tag, "mounts", len(opts.Mounts))

	return awaitTask(ctx, ctr)
}

// Assembles the OCI spec options for a run-to-completion container.
//
// The image config supplies the entrypoint and base environment; env
// overrides are layered on top. Host networking and resolv.conf match the
// build container configuration so the analysis can reach external services.
func runSpecOpts(image containerd.Image, platform string, opts TaskOptions) []oci.SpecOpts {
	specOpts := []oci.SpecOpts{
		oci.WithDefaultSpecForPlatform(platform),
		oci.WithImageConfig(image),
		oci.WithHostNamespace(specs.NetworkNamespace),
		oci.WithHostResolvconf,
	}

	if len(opts.Env) > 0 {
		specOpts = append(specOpts, oci.WithEnv(opts.Env))
	}
	if len(opts.Mounts) > 0 {
		specOpts = append(specOpts, oci.WithMounts(ociMounts(opts.Mounts)))
	}

	return specOpts
}

// Converts bind mount descriptions to OCI runtime spec mounts.
func ociMounts(mounts []Mount) []specs.Mount {
	out := make([]specs.Mount, 0, len(mounts))
	for _, m := range mounts {
		options := []string{"rbind"}
		if m.ReadOnly {
			options = append(options, "ro")
		} else {
			options = append(options, "rw")
		}
		out = append(out, specs.Mount{
			Destination: m.Destination,
			Type:        "bind",
			Source:      m.Source,
			Options:     options,
		})
	}
	return out
}

// Starts the container's primary task with attached stdio and waits for it
// to exit.
func awaitTask(ctx context.Context, ctr containerd.Container) (int, error) {
	task, err := ctr.NewTask(ctx, cio.NewCreator(
		cio.WithStreams(nil, os.Stdout, os.Stderr),
	))
	if err != nil {
		return 0, errors.Wrap(err, "creating task")
	}
	defer task.Delete(context.WithoutCancel(ctx), containerd.WithProcessKill)

	statusC, err := task.Wait(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "waiting on task")
	}

	if err := task.Start(ctx); err != nil {
		return 0, errors.Wrap(err, "starting task")
	}

	select {
	case <-ctx.Done():
		task.Kill(context.WithoutCancel(ctx), syscall.SIGKILL)
		<-statusC
		return 0, ctx.Err()
	case exitStatus := <-statusC:
		code, _, err := exitStatus.Result()
		if err != nil {
			return 0, errors.Wrap(err, "reading exit status")
		}
		return int(code), nil
	}
}
