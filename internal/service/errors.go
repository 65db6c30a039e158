package service

import "fmt"

// NoSuchKeyMessage is reported when no candidate key exists in the bucket.
const NoSuchKeyMessage = "The specified key does not exist."

// ValidationError reports bad client input. Message is safe to return to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NoSuchKeyError is returned when none of the candidate keys exist.
// Tried lists every candidate in probe order.
type NoSuchKeyError struct {
	Key   string
	Tried []string
}

func (e *NoSuchKeyError) Error() string {
	return fmt.Sprintf("no such key %q (tried %v)", e.Key, e.Tried)
}

// ConfigurationError reports a required setting that was absent at startup.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }

func (e *ConfigurationError) Unwrap() error { return e.Err }
