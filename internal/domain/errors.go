package domain

import (
	"errors"
	"fmt"
)

// UnknownIndicatorError reports an indicator code absent from the registry.
// It is a caller mistake and is never retried or defaulted.
type UnknownIndicatorError struct {
	Code string
}

func (e *UnknownIndicatorError) Error() string {
	return fmt.Sprintf("unknown indicator %q", e.Code)
}

// UnsupportedSourceError reports a source override for an indicator that the
// source does not publish.
type UnsupportedSourceError struct {
	Indicator string
	Source    string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("source %q does not publish indicator %q", e.Source, e.Indicator)
}

// UnavailableReason categorises why a source could not serve a request.
type UnavailableReason string

const (
	ReasonTimeout     UnavailableReason = "timeout"
	ReasonConnection  UnavailableReason = "connection"
	ReasonStatus      UnavailableReason = "status"
	ReasonMalformed   UnavailableReason = "malformed"
	ReasonRateLimited UnavailableReason = "rate_limited"
)

// SourceUnavailableError wraps every transport or payload failure of a source
// adapter. The resolver absorbs it and falls back to reference statistics.
type SourceUnavailableError struct {
	Source     Source
	Reason     UnavailableReason
	StatusCode int // set when Reason is ReasonStatus or ReasonRateLimited
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	msg := fmt.Sprintf("source %s unavailable [%s]", e.Source, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt could plausibly succeed.
func (e *SourceUnavailableError) Retryable() bool {
	switch e.Reason {
	case ReasonConnection, ReasonRateLimited:
		return true
	case ReasonStatus:
		return e.StatusCode >= 500
	}
	return false
}

// IsSourceUnavailable reports whether err is, or wraps, a SourceUnavailableError.
func IsSourceUnavailable(err error) bool {
	var sue *SourceUnavailableError
	return errors.As(err, &sue)
}

// Unavailable builds a SourceUnavailableError.
func Unavailable(src Source, reason UnavailableReason, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Source: src, Reason: reason, Err: err}
}
