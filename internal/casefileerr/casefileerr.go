// Package casefileerr defines the coded error type shared by every core
// git-casefile component (the subprocess runner, the diff driver, the git
// driver, and the bookmark relocator). Rather than each component growing
// its own error struct with ad-hoc fields, every failure is one of these,
// distinguished by a stable Code string plus an optional Fields map for
// whatever auxiliary data that code carries (exit codes, file paths, the
// git arguments that were run, and so on).
package casefileerr

import "fmt"

// Code identifies the kind of failure. Stable across releases; callers may
// switch on it.
type Code string

const (
	CodeSpawningFailure     Code = "SpawningFailure"
	CodeChildProcessFailure Code = "ChildProcessFailure"
	CodeTimeout             Code = "Timeout"
	CodeBadOutputStream     Code = "BadOutputStream"
	CodeBadOptionsKey       Code = "BadOptionsKey"
	CodeDiffFailure         Code = "DiffFailure"
	CodeUnknownContentType  Code = "UnknownContentType"
	CodeInvalidCommittish   Code = "InvalidCommittish"
	CodeGitWriteFailed      Code = "GitWriteFailed"
	CodeInvalidTreeEntry    Code = "InvalidTreeEntry"
	CodeInvalidTreeResult   Code = "InvalidTreeResult"
	CodeInvalidCommit       Code = "InvalidCommit"
	CodeInvalidGitLogOutput Code = "InvalidGitLogOutput"
	CodeNoCommitFound       Code = "NoCommitFound"
	CodeLineNotFound        Code = "LineNotFound"
	CodeMarkNotFound        Code = "MarkNotFound"
	CodeMultipleCleanup     Code = "MultipleCleanupErrors"
	CodeInvalidSeparator    Code = "InvalidSeparator"
	CodeBug                 Code = "Bug"
)

// Error is the single error type used across the core. Message is always
// human-readable; Fields carries whatever structured data the raising site
// wants to attach (exit codes, argv, file descriptors, etc).
type Error struct {
	Code    Code
	Message string
	Cause   error
	Fields  map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Code, so callers can
// write errors.Is(err, casefileerr.New(CodeMarkNotFound, "")) — but the
// idiomatic form is HasCode below; Is exists for errors.Is compatibility
// when only the code is being compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New constructs an Error with no cause and no fields.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap constructs an Error carrying an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithFields attaches structured auxiliary data and returns the receiver.
func (e *Error) WithFields(fields map[string]any) *Error {
	e.Fields = fields
	return e
}

// HasCode reports whether err is a *Error (possibly wrapped) with the given
// code.
func HasCode(err error, code Code) bool {
	var ce *Error
	for err != nil {
		if c, ok := err.(*Error); ok { //nolint:errorlint // manual unwrap to avoid importing errors for a one-line check
			ce = c
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ce != nil && ce.Code == code
}

// Bug marks an error that must never be swallowed by a local recovery
// `catch` — the Go stand-in for the spec's ASSERT_ERROR marker. Any
// recovery path that substitutes a default value on failure must first
// check IsBug and re-raise unconditionally if so.
type Bug struct {
	Err error
}

func (b *Bug) Error() string { return b.Err.Error() }
func (b *Bug) Unwrap() error { return b.Err }

// IsBug reports whether err (or something it wraps) is a *Bug.
func IsBug(err error) bool {
	for err != nil {
		if _, ok := err.(*Bug); ok { //nolint:errorlint // manual unwrap, mirrors HasCode
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
