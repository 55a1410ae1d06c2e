package r53update

import (
	"fmt"
)

// ResolutionError is returned when the global IP address could not be determined.
type ResolutionError struct {
	Method string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// LookupError is returned when reading the current records failed for a reason other than
// the name not existing.
type LookupError struct {
	Name string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %s", e.Name, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// ZoneNotFoundError is returned when the account has no hosted zone with the configured name.
type ZoneNotFoundError struct {
	Zone string
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("zone '%s' not found", e.Zone)
}

// ProviderError wraps a failure of the DNS provider's API.
type ProviderError struct {
	Provider string
	Op       string
	Code     string // provider error code, if the API returned one
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Provider, e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid combination of settings.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
