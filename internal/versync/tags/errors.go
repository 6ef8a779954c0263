package tags

import "github.com/gear-foundation/versync/internal/common/apperrors"

// Base tag resolution error
var (
	ErrTagError apperrors.Error = apperrors.New("tag resolution failed").SetExitCode(apperrors.ExitGeneric)
)

// Fetch errors
var (
	ErrFetchTags       apperrors.Error = ErrTagError.New("failed to fetch tags").SetExpandError(true).SetExitCode(apperrors.ExitFetchFailed)
	ErrRateLimited     apperrors.Error = ErrFetchTags.New("API rate limit exceeded")
	ErrInvalidResponse apperrors.Error = ErrFetchTags.New("unexpected tag list response")
)

// Resolution errors
var (
	ErrInvalidRepo   apperrors.Error = ErrTagError.New("invalid repository").SetExitCode(apperrors.ExitConfig)
	ErrNoMatchingTag apperrors.Error = ErrTagError.New("no matching release tag").SetExpandError(true).SetExitCode(apperrors.ExitNoVersion)
)
