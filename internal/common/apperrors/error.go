// Package apperrors provides chained errors for the versync command line tool.
// Errors carry a process exit code, can be derived from one another to form a
// taxonomy, and wrap foreign errors while staying compatible with errors.Is.
package apperrors

import "errors"

// Exit codes shared by the taxonomy. Zero is never assigned to an error.
const (
	ExitGeneric      = 1
	ExitFetchFailed  = 2
	ExitNoVersion    = 3
	ExitFileIO       = 4
	ExitConfig       = 5
	ExitCorruptPatch = 6
)

// Error extends the standard error interface with chaining and exit code helpers.
// All methods return Error to support method chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetExpandError(bool) Error             // controls whether ErrorAll expands wrapped errors
	SetExitCode(int) Error                 // sets the process exit code for the error
	ExitCode() int                         // returns the current exit code
	Prefix(string) Error                   // adds a prefix to the error message
	ErrorAll() string                      // returns full message including wrapped errors
	UnwrapAll() []error                    // returns all wrapped errors
}

// ExitCode returns the exit code carried by the first Error found in err's chain,
// or ExitGeneric when there is none.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr Error
	if errors.As(err, &appErr) && appErr.ExitCode() != 0 {
		return appErr.ExitCode()
	}
	return ExitGeneric
}

// Describe returns the expanded message for application errors and the plain
// message for anything else.
func Describe(err error) string {
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.ErrorAll()
	}
	return err.Error()
}
