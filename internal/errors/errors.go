package errors

import (
	"errors"
	"fmt"
	"strings"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// CommandError represents a failed CLI command
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// StorageError enhances secure storage errors with context
func StorageError(operation string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("secure storage error during %s", operation),
		Suggestion: storageSuggestion(err),
		Err:        err,
	}
}

func storageSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "access denied"), strings.Contains(errStr, "user denied"):
		return "Allow access to the keychain item when prompted, or unlock the login keychain"
	case strings.Contains(errStr, "dbus"), strings.Contains(errStr, "secret service"):
		return "Start a Secret Service provider (gnome-keyring or KWallet) in this session"
	case strings.Contains(errStr, "not supported"):
		return "Secure storage is only available on macOS, Linux and Windows"
	case strings.Contains(errStr, "headless"):
		return "The OS keyring needs a desktop session. Run the command from a GUI terminal"
	}
	return ""
}

// RequestError enhances request failures for CLI output
func RequestError(method, url string, err error) error {
	return UserError{
		Message:    fmt.Sprintf("%s %s failed", method, url),
		Suggestion: requestSuggestion(err),
		Err:        err,
	}
}

func requestSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "no connectivity"):
		return "Check your network connection and try again"
	case strings.Contains(errStr, "timed out"), strings.Contains(errStr, "timeout"):
		return "The backend did not answer in time. Raise Api.timeout or check the host"
	case strings.Contains(errStr, "invalid url"):
		return "Use an absolute URL or configure Api.scheme and Api.host"
	case strings.Contains(errStr, "status 401"), strings.Contains(errStr, "no token"):
		return "Store a token with 'commonspack token set'"
	}
	return ""
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	var userErr UserError
	var cfgErr ConfigError
	var cmdErr CommandError
	if errors.As(err, &userErr) || errors.As(err, &cfgErr) || errors.As(err, &cmdErr) {
		return err
	}

	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "plist:") {
		return ConfigError{
			Message:    "Invalid property list",
			Suggestion: "Validate the file with 'plutil -lint'",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
