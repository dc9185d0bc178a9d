package build

import "github.com/pkg/errors"

var (
	ErrBuild         = errors.New("build failed")
	ErrCommandFailed = errors.New("command failed")
	ErrCopy          = errors.New("copy failed")
)
