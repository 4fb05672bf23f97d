// Package exitcode maps command errors to process exit codes.
package exitcode

import (
	"os"
	"strings"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates missing or invalid configuration
	ConfigError = 3

	// AuthError indicates a rejected credential or secret
	AuthError = 4

	// BackendError indicates the record backend or identity provider could not be reached
	BackendError = 5

	// ProcedureError indicates a backend procedure reported a failure
	ProcedureError = 6

	// Interrupted indicates the user cancelled with SIGINT (128 + 2)
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}
	Exit(DetermineExitCode(err))
}

// DetermineExitCode returns the exit code for err. Coded errors map by
// their code family; cobra usage errors are recognised by message.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch code := string(errors.CodeOf(err)); {
	case strings.HasPrefix(code, "CONFIG-"):
		return ConfigError
	case code == string(errors.ErrCodeCronProcedureFailed):
		return ProcedureError
	case code == string(errors.ErrCodeAuthProviderUnavailable),
		code == string(errors.ErrCodeRoleLookupFailed),
		strings.HasPrefix(code, "BACKEND-"):
		return BackendError
	case strings.HasPrefix(code, "AUTH-"), code == string(errors.ErrCodeCronUnauthorized):
		return AuthError
	case code == string(errors.ErrCodeRoleInvalidIdentity):
		return UsageError
	}

	errMsg := strings.ToLower(err.Error())
	for _, usage := range []string{"unknown command", "unknown flag", "invalid argument", "required flag", "accepts "} {
		if strings.Contains(errMsg, usage) {
			return UsageError
		}
	}
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Configuration error"
	case AuthError:
		return "Authentication error"
	case BackendError:
		return "Backend unavailable"
	case ProcedureError:
		return "Backend procedure failed"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
