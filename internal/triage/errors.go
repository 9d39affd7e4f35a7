package triage

import (
	"errors"
	"fmt"
)

var (
	// ErrOracleUnavailable is returned when the toxicity oracle fails or
	// answers with an unusable score. No partial result accompanies it.
	ErrOracleUnavailable = errors.New("toxicity oracle unavailable")
	// ErrInvalidConfiguration is returned for malformed operator configuration.
	ErrInvalidConfiguration = errors.New("invalid triage configuration")
)

// ConfigError pinpoints the malformed part of a configuration.
// It matches ErrInvalidConfiguration under errors.Is.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
