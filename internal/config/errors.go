package config

import "errors"

var (
	ErrConfigNotFound      = errors.New("config file not found")
	ErrConfigRead          = errors.New("cannot read config file")
	ErrConfigInvalid       = errors.New("invalid config file")
	ErrScratchRootEmpty    = errors.New("scratch_root cannot be empty")
	ErrTestCommandEmpty    = errors.New("test_command cannot be empty")
	ErrVersionCommandEmpty = errors.New("version_commands entries cannot be empty")
	ErrTimeoutInvalid      = errors.New("invalid timeout")
	ErrUnsetVariable       = errors.New("reference to unset variable")
)
