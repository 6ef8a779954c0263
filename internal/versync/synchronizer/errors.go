package synchronizer

import "github.com/gear-foundation/versync/internal/common/apperrors"

var (
	ErrSyncError     apperrors.Error = apperrors.New("version sync failed").SetExpandError(true).SetExitCode(apperrors.ExitGeneric)
	ErrNoTargetFiles apperrors.Error = ErrSyncError.New("target matched no files").SetExitCode(apperrors.ExitFileIO)
	ErrInvalidTarget apperrors.Error = ErrSyncError.New("invalid target").SetExitCode(apperrors.ExitConfig)
)
