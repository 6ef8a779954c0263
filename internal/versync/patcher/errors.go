package patcher

import "github.com/gear-foundation/versync/internal/common/apperrors"

// Base patch error
var (
	ErrPatchError apperrors.Error = apperrors.New("manifest patch failed").SetExitCode(apperrors.ExitGeneric)
)

// Rule errors
var (
	ErrInvalidRule    apperrors.Error = ErrPatchError.New("invalid field rule").SetExpandError(true).SetExitCode(apperrors.ExitConfig)
	ErrMissingVersion apperrors.Error = ErrPatchError.New("no resolved version for rule").SetExitCode(apperrors.ExitNoVersion)
)

// File errors
var (
	ErrFileIO       apperrors.Error = ErrPatchError.New("file access failed").SetExpandError(true).SetExitCode(apperrors.ExitFileIO)
	ErrCorruptPatch apperrors.Error = ErrPatchError.New("patched file no longer parses").SetExpandError(true).SetExitCode(apperrors.ExitCorruptPatch)
)
