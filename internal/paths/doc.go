// Provides platform-appropriate paths for the tool.
//
// Runtime paths (socket, PID file) follow XDG conventions on Linux and
// platform-native conventions on macOS. Artifact paths default to an
// "output" directory under the working directory, matching the bind-mount
// convention of the analysis container.
package paths
