package cli

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/stickycols/pkg/errors"
)

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitBadInput = 2
	ExitCanceled = 130
)

// ExitCode maps a command error to a process exit code. Interrupted runs use
// the shell's SIGINT convention; invalid scenes and missing files exit 2.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidSelector,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath, errors.ErrCodeFileNotFound:
		return ExitBadInput
	}
	return ExitFailure
}
