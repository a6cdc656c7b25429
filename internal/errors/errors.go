package errors

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

// Exit codes for peel
const (
	ExitSuccess         = 0
	ExitGeneralError    = 1
	ExitRuntimeNotFound = 2
	ExitAccessDenied    = 3
	ExitEscalation      = 4
	ExitNotAvailable    = 5
	ExitConfigError     = 6
)

// PeelError is the base error type for peel
type PeelError struct {
	Code    int
	Message string
	Cause   error

	// Class is an errdefs sentinel describing the error category. It is
	// matched by errors.Is but not printed.
	Class error
}

func (e *PeelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PeelError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the error's class.
func (e *PeelError) Is(target error) bool {
	return e.Class != nil && errors.Is(e.Class, target)
}

// ExitCode returns the exit code for this error
func (e *PeelError) ExitCode() int {
	return e.Code
}

// New creates a new PeelError
func New(code int, message string) *PeelError {
	return &PeelError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PeelError
func Wrap(code int, message string, cause error) *PeelError {
	return &PeelError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// UnknownRuntime returns an error for a runtime name peel does not support.
func UnknownRuntime(name, valid string) *PeelError {
	return &PeelError{
		Code:    ExitConfigError,
		Message: fmt.Sprintf("unknown runtime %q. Valid options: %s", name, valid),
		Class:   errdefs.ErrInvalidArgument,
	}
}

// RuntimeNotDetected returns an error for a requested runtime that is not
// installed on this host.
func RuntimeNotDetected(name string) *PeelError {
	return &PeelError{
		Code:    ExitRuntimeNotFound,
		Message: fmt.Sprintf("runtime %q was not detected on this system. Run `peel probe` to see available runtimes", name),
		Class:   errdefs.ErrNotFound,
	}
}

// AccessDeclined returns the error raised when direct storage access is
// denied and the user chose not to elevate.
func AccessDeclined(storageRoot string) *PeelError {
	return &PeelError{
		Code:    ExitAccessDenied,
		Message: fmt.Sprintf("cannot read %s without root. Re-run with sudo or use --use-oci", storageRoot),
		Class:   errdefs.ErrPermissionDenied,
	}
}

// StorageUnreadable returns the error for storage that stays unreadable
// even though the process already runs as root.
func StorageUnreadable(storageRoot string) *PeelError {
	return &PeelError{
		Code:    ExitAccessDenied,
		Message: fmt.Sprintf("cannot read %s even as root. Use --use-oci to read layers through the runtime API", storageRoot),
		Class:   errdefs.ErrPermissionDenied,
	}
}

// EscalationFailed returns an error for a relaunch that could not be started.
func EscalationFailed(message string, cause error) *PeelError {
	return Wrap(ExitEscalation, message, cause)
}

// NotAvailable returns an error for an operation that is not implemented yet.
func NotAvailable(what string) *PeelError {
	return &PeelError{
		Code:    ExitNotAvailable,
		Message: fmt.Sprintf("%s not yet implemented", what),
		Class:   errdefs.ErrNotImplemented,
	}
}

// NotFound returns an error for a missing image, layer or runtime resource.
func NotFound(message string, cause error) *PeelError {
	return &PeelError{
		Code:    ExitGeneralError,
		Message: message,
		Cause:   cause,
		Class:   errdefs.ErrNotFound,
	}
}

// InvalidArchive returns an error for an image archive that cannot be read.
func InvalidArchive(path, reason string, cause error) *PeelError {
	return &PeelError{
		Code:    ExitGeneralError,
		Message: fmt.Sprintf("invalid image archive %s: %s", path, reason),
		Cause:   cause,
		Class:   errdefs.ErrInvalidArgument,
	}
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *PeelError {
	return &PeelError{
		Code:    ExitConfigError,
		Message: message,
		Cause:   cause,
		Class:   errdefs.ErrInvalidArgument,
	}
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *PeelError {
	return &PeelError{
		Code:    ExitGeneralError,
		Message: message,
		Class:   errdefs.ErrInvalidArgument,
	}
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneralError
}

// IsSilent reports whether err asks not to be printed before exiting,
// as is the case once an elevated relaunch has already reported its result.
func IsSilent(err error) bool {
	var s interface{ Silent() bool }
	return errors.As(err, &s) && s.Silent()
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
