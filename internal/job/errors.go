package job

import "errors"

var (
	ErrNameEmpty    = errors.New("job name cannot be empty")
	ErrVarietyEmpty = errors.New("job variety cannot be empty")
	ErrTargetEmpty  = errors.New("job target cannot be empty")
	ErrRulesInvalid = errors.New("invalid output rules")
	ErrRuleEmpty    = errors.New("output rule cannot be empty")
)
