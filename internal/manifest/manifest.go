package manifest

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoStages      = errors.New("recipe has no stages")
	ErrNoOutputStage = errors.New("recipe has no non-transient stage")
)

// Describes how to build the analysis image.
//
// A recipe is an ordered list of stages. Each stage starts from a base image
// archive and applies steps to it. The final non-transient stage becomes the
// output image.
type Recipe struct {
	Entrypoint []string `yaml:"entrypoint,omitempty"` // OCI entrypoint set on the output image.
	Stages     []Stage  `yaml:"stages"`               // Stages in build order.
}

// A single build stage backed by a container.
type Stage struct {
	Name      string `yaml:"name,omitempty"`      // Optional name, referenced by cross-stage copies.
	From      string `yaml:"from"`                // Path to the base image OCI archive.
	Transient bool   `yaml:"transient,omitempty"` // Transient stages are not exported.
	Steps     []Step `yaml:"steps,omitempty"`     // Steps executed inside the stage container.
}

// A single step within a stage.
//
// A step is either an operation (run or copy), a group of nested steps, or a
// standalone modifier (shell, workdir, env) that persists for the rest of
// the stage. Modifiers on an operation step apply to that operation only.
type Step struct {
	Run     string            `yaml:"run,omitempty"`     // Shell command to execute.
	Copy    string            `yaml:"copy,omitempty"`    // "src dest" copy, optionally "stage:src dest".
	Shell   string            `yaml:"shell,omitempty"`   // Shell used for run steps.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory for subsequent operations.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables.
	Steps   []Step            `yaml:"steps,omitempty"`   // Nested steps sharing this step's modifiers.
}

// Reads and validates a recipe from a YAML file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading recipe")
	}
	return Parse(data)
}

// Parses and validates a recipe from YAML bytes.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "parsing recipe")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Checks structural constraints that the build engine relies on.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return ErrNoStages
	}

	output := false
	for i, stage := range r.Stages {
		if stage.From == "" {
			return fmt.Errorf("stage %s: missing from", stageRef(stage.Name, i))
		}
		if !stage.Transient {
			output = true
		}
	}

	if !output {
		return ErrNoOutputStage
	}
	return nil
}

// Returns a human-readable stage reference, preferring the name.
func stageRef(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
