package cli

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrNoCredentials = errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set in the environment")

// Carries a container's exit code so main can propagate it as the process
// exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("container exited with code %d", e.Code)
}
