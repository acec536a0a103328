package domain

import (
	"context"
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced on job records and API payloads.
const (
	CodeInvalidInput       = "invalid_input"
	CodeTransport          = "transport_error"
	CodeInvalidPlaylist    = "invalid_playlist"
	CodeEmptyPlaylist      = "empty_playlist"
	CodeAllDownloadsFailed = "all_downloads_failed"
	CodeIO                 = "io_error"
	CodeStorage            = "storage_error"
	CodeNotFound           = "not_found"
	CodeCancelled          = "cancelled"
	CodeInternal           = "internal_error"
)

// CodedError carries a machine-readable code alongside the human message.
type CodedError struct {
	Code string
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }
func (e *CodedError) Unwrap() error { return e.Err }

// Errf builds a CodedError, fmt.Errorf style.
func Errf(code, format string, args ...any) error {
	return &CodedError{Code: code, Err: fmt.Errorf(format, args...)}
}

// WrapErr attaches a code to an existing error, preserving the chain.
func WrapErr(code string, err error) error {
	return &CodedError{Code: code, Err: err}
}

// CodeOf extracts the code from an error chain. Cancellation maps to
// CodeCancelled, anything unrecognized to CodeInternal.
func CodeOf(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}
	return CodeInternal
}
