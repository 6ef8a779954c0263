package apperrors

import (
	"errors"
	"strings"
)

// appError is the concrete Error. Derived errors keep a pointer to their template
// in base so errors.Is matches every ancestor.
type appError struct {
	msg           string
	base          error
	wrappedErrors []error
	exitCode      int
	expandError   bool
	prefix        string
}

func (e *appError) Error() string {
	if e.prefix != "" {
		return e.prefix + ": " + e.msg
	}
	return e.msg
}

// ErrorAll returns the message followed by the messages of foreign wrapped
// errors when expansion is on. Wrapped errors from the same taxonomy are
// skipped since their text is already implied by the derived message.
func (e *appError) ErrorAll() string {
	if !e.expandError {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	for _, err := range e.wrappedErrors {
		var inner *appError
		if errors.As(err, &inner) && inner.base == nil && len(inner.wrappedErrors) == 0 {
			continue
		}
		if err == e.base {
			continue
		}
		b.WriteString(": ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrappedErrors
}

func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, e.wrappedErrors...),
		exitCode:      e.exitCode,
		expandError:   e.expandError,
	}
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		base:        e,
		exitCode:    e.exitCode,
		expandError: e.expandError,
	}
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	all := append([]error{e}, errs...)
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: all,
		exitCode:      e.exitCode,
		expandError:   e.expandError,
	}
}

func (e *appError) Err(errs ...error) Error {
	all := append([]error{e}, errs...)
	return &appError{
		msg:           e.msg,
		base:          e,
		wrappedErrors: all,
		exitCode:      e.exitCode,
		expandError:   e.expandError,
		prefix:        e.prefix,
	}
}

// Prefix returns a shallow copy with an updated prefix.
func (e *appError) Prefix(p string) Error {
	cp := *e
	cp.prefix = p
	return &cp
}

// SetExpandError returns a shallow copy with an updated expansion flag.
func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expandError = flag
	return &cp
}

// SetExitCode returns a shallow copy with an updated exit code.
func (e *appError) SetExitCode(code int) Error {
	cp := *e
	cp.exitCode = code
	return &cp
}

func (e *appError) ExitCode() int {
	return e.exitCode
}

// New creates a root-level error with the given message.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

// Is reports whether target is the base error or any of the wrapped errors.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*appError); ok && t == e {
		return true
	}
	if e.base != nil && errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if err == error(e) {
			continue
		}
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As lets errors.As reach foreign errors attached with Err or MsgErr.
func (e *appError) As(target any) bool {
	for _, err := range e.wrappedErrors {
		if err == e.base {
			continue
		}
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
