// Package errors provides typed errors with exit codes for peel.
//
// # Error Types
//
// PeelError is the base error type that wraps an error with an exit code:
//
//	type PeelError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	    Class   error  // errdefs category, matched by errors.Is
//	}
//
// # Exit Codes
//
//	ExitSuccess         = 0  // Success
//	ExitGeneralError    = 1  // General/unknown errors
//	ExitRuntimeNotFound = 2  // Requested runtime not detected
//	ExitAccessDenied    = 3  // Storage unreadable and elevation declined
//	ExitEscalation      = 4  // Elevated relaunch could not be started
//	ExitNotAvailable    = 5  // Operation not implemented yet
//	ExitConfigError     = 6  // Configuration or flag error
//
// # Error Classes
//
// Constructors attach a github.com/containerd/errdefs class so callers can
// test the category without caring about the message:
//
//	errdefs.IsInvalidArgument(errors.UnknownRuntime("rkt", valid))
//	errdefs.IsNotFound(errors.RuntimeNotDetected("podman"))
//	errdefs.IsPermissionDenied(errors.AccessDeclined("/var/lib/docker"))
//	errdefs.IsNotImplemented(errors.NotAvailable("archive inspector"))
//
// # Extracting Exit Codes
//
// GetExitCode honours any error in the chain with an ExitCode() int method,
// which includes an elevated child's status:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
