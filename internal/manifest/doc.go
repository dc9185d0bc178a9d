// Package manifest defines the YAML recipe format consumed by the build
// engine.
//
// A recipe lists build stages. Each stage names a base image archive and an
// ordered list of steps: shell commands, file copies from the host build
// context or from earlier named stages, and persistent modifiers (shell,
// workdir, env). The final non-transient stage is exported as the analysis
// image.
//
// Example recipe:
//
//	entrypoint: ["/app/hkfolio", "analyze"]
//	stages:
//	  - from: base/python-slim.tar
//	    steps:
//	      - workdir: /app
//	      - copy: profolio.csv profolio.csv
//	      - run: mkdir -p /app/output
package manifest
