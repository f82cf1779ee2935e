package generate

import "fmt"

// ConfigurationError reports a missing or unusable credential. It is
// raised before any network call is attempted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// UpstreamError reports that the generation API call failed or returned
// content that cannot be parsed into the expected structure. It is not
// retried, and the cache is never populated on one.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream failure: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
