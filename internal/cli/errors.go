package cli

import "github.com/gear-foundation/versync/internal/common/apperrors"

var (
	ErrCLIError    apperrors.Error = apperrors.New("cli error").SetExpandError(true).SetExitCode(apperrors.ExitGeneric)
	ErrInvalidFlag apperrors.Error = ErrCLIError.New("invalid flag").SetExitCode(apperrors.ExitConfig)
	ErrOutdated    apperrors.Error = ErrCLIError.New("dependencies are outdated")
)
