// Package errs defines the error kinds shared across the transit-fusion packages.
//
// Every error returned by the core wraps exactly one of these sentinels, so callers
// can branch with errors.Is while still seeing the underlying cause:
//
//	if errors.Is(err, errs.ErrNoFeedLoaded) {
//	    // ask the caller to pick an agency first
//	}
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAgency is returned when an agency code is not registered.
	ErrUnknownAgency = errors.New("unknown agency")
	// ErrDuplicateAgency is returned when registering a code that already exists.
	ErrDuplicateAgency = errors.New("duplicate agency")
	// ErrInvalidConfig is returned for malformed feed or application configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNetwork covers transport failures and non-success HTTP statuses.
	ErrNetwork = errors.New("network error")
	// ErrArchive is returned for corrupt archives and entries escaping the target directory.
	ErrArchive = errors.New("archive error")
	// ErrParse is returned for malformed schedule files.
	ErrParse = errors.New("parse error")
	// ErrDecode is returned for malformed real-time protobuf payloads.
	ErrDecode = errors.New("decode error")
	// ErrNoFeedLoaded is returned by store reads before any dataset is loaded.
	ErrNoFeedLoaded = errors.New("no feed loaded")
	// ErrFileNotFound is returned when a schedule directory or required file is missing.
	ErrFileNotFound = errors.New("file not found")
)

// Wrap annotates cause with kind so that errors.Is matches both.
// A nil cause yields kind wrapped with the message only.
func Wrap(kind error, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}
