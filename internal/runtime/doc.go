// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image import
// and container creation. OCI archives are imported, tagged with a
// deterministic content hash, unpacked for the target platform, and used
// to create containers with overlayfs snapshots.
//
// Containers come in two flavors. Build containers (see
// [Runtime.StartContainer]) run a long-lived sleep task so that build steps
// can attach repeatedly via [Container.Exec]; their final filesystem state
// can be committed and exported as a new OCI archive. Run-to-completion
// containers (see [Runtime.RunTask]) start the image's own entrypoint with
// optional env overrides and bind mounts, stream its output, and report the
// exit code.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "hkfolio")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	if err := rt.ImportImage(ctx, "output/image.tar", "hkfolio/analysis:latest"); err != nil {
//	    return err
//	}
//
//	code, err := rt.RunTask(ctx, runtime.TaskOptions{
//	    Tag: "hkfolio/analysis:latest",
//	    ID:  "hkfolio-run",
//	    Env: []string{"TELEGRAM_BOT_TOKEN=..."},
//	    Mounts: []runtime.Mount{
//	        {Source: "/home/user/output", Destination: "/app/output"},
//	    },
//	})
package runtime
