package config

import "github.com/gear-foundation/versync/internal/common/apperrors"

var (
	ErrInvalidConfig  apperrors.Error = apperrors.New("invalid configuration").SetExpandError(true).SetExitCode(apperrors.ExitConfig)
	ErrConfigNotFound apperrors.Error = ErrInvalidConfig.New("configuration file not found")
)
