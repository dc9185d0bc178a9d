// Package build executes container build recipes.
//
// A recipe is a list of stages, each starting from a base image archive and
// running a sequence of steps (shell commands, file copies, and modifiers
// such as workdir and env). Stages marked transient exist only to feed
// cross-stage copies; the remaining stage is committed and exported as an
// OCI image archive, with the recipe's entrypoint baked into the image
// config.
package build
