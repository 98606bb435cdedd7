package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/aidanlsb/fsm/internal/codec"
	"github.com/aidanlsb/fsm/internal/paths"
	"github.com/aidanlsb/fsm/internal/repo"
	"github.com/aidanlsb/fsm/internal/root"
	"github.com/aidanlsb/fsm/internal/store"
	"github.com/aidanlsb/fsm/internal/tags"
	"github.com/aidanlsb/fsm/internal/ui"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Repository errors
	ErrRootNotFound       = "ROOT_NOT_FOUND"
	ErrAlreadyInitialized = "ALREADY_INITIALIZED"
	ErrDecodeError        = "DECODE_ERROR"
	ErrRepositoryBusy     = "REPOSITORY_BUSY"

	// Path errors
	ErrPathOutsideRoot = "PATH_OUTSIDE_ROOT"

	// Entry errors
	ErrEntryNotFound = "ENTRY_NOT_FOUND"
	ErrEntryExists   = "ENTRY_EXISTS"

	// Collection errors
	ErrCollectionExists   = "COLLECTION_EXISTS"
	ErrCollectionNotFound = "COLLECTION_NOT_FOUND"

	// Tag errors
	ErrTagNotFound  = "TAG_NOT_FOUND"
	ErrTypeMismatch = "TYPE_MISMATCH"

	// Input errors
	ErrInvalidInput         = "INVALID_INPUT"
	ErrConfirmationRequired = "CONFIRMATION_REQUIRED"
	ErrConfigInvalid        = "CONFIG_INVALID"

	// General errors
	ErrIOError  = "IO_ERROR"
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnEntryNotFound = "ENTRY_NOT_FOUND"
	WarnPathMissing   = "PATH_MISSING"
)

// inputError marks an error caused by the command line itself.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func invalidInput(err error) error {
	return &inputError{err: err}
}

func invalidInputf(format string, args ...interface{}) error {
	return &inputError{err: fmt.Errorf(format, args...)}
}

type configError struct {
	err error
}

func (e *configError) Error() string { return "failed to load config: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

var errConfirmationRequired = errors.New("refusing to drop the repository without --yes")

// errorCode maps an error to its stable code.
func errorCode(err error) string {
	var (
		inErr   *inputError
		cfgErr  *configError
		pathErr *fs.PathError
		linkErr *os.LinkError
	)
	switch {
	case errors.Is(err, root.ErrRootNotFound):
		return ErrRootNotFound
	case errors.Is(err, root.ErrAlreadyInitialized):
		return ErrAlreadyInitialized
	case errors.Is(err, codec.ErrDecode):
		return ErrDecodeError
	case errors.Is(err, store.ErrRepositoryBusy):
		return ErrRepositoryBusy
	case errors.Is(err, paths.ErrPathOutsideRoot):
		return ErrPathOutsideRoot
	case errors.Is(err, repo.ErrEntryNotFound):
		return ErrEntryNotFound
	case errors.Is(err, repo.ErrEntryExists):
		return ErrEntryExists
	case errors.Is(err, repo.ErrCollectionExists):
		return ErrCollectionExists
	case errors.Is(err, repo.ErrCollectionNotFound):
		return ErrCollectionNotFound
	case errors.Is(err, repo.ErrTagNotFound):
		return ErrTagNotFound
	case errors.Is(err, repo.ErrNotURL):
		return ErrTypeMismatch
	case errors.Is(err, errConfirmationRequired):
		return ErrConfirmationRequired
	case errors.As(err, &cfgErr):
		return ErrConfigInvalid
	case errors.As(err, &inErr),
		errors.Is(err, tags.ErrInvalidKey),
		errors.Is(err, tags.ErrInvalidText),
		errors.Is(err, paths.ErrInvalidPath),
		errors.Is(err, codec.ErrInvalidText),
		errors.Is(err, repo.ErrInvalidName):
		return ErrInvalidInput
	case errors.As(err, &pathErr), errors.As(err, &linkErr):
		return ErrIOError
	}
	return ErrInternal
}

// errorSuggestion returns a hint for codes that have an obvious next step.
func errorSuggestion(code string) string {
	switch code {
	case ErrRootNotFound:
		return "Run 'fsm db init' in the directory that should hold the metadata"
	case ErrAlreadyInitialized:
		return "Nested repositories are not supported; use the existing one"
	case ErrRepositoryBusy:
		return "Another fsm process is writing; retry shortly"
	case ErrCollectionNotFound:
		return "Run 'fsm coll view' to list collections"
	case ErrEntryExists:
		return "Use --force to merge into the existing entry"
	case ErrConfirmationRequired:
		return "Re-run with --yes to delete all metadata"
	case ErrDecodeError:
		return "The state file is corrupt or was written by an incompatible version"
	}
	return ""
}

// errorDetails returns structured context for JSON output.
func errorDetails(err error) interface{} {
	var busy *store.BusyError
	if errors.As(err, &busy) {
		return map[string]interface{}{
			"retryable": busy.Retryable(),
			"lock":      busy.LockPath,
		}
	}
	var decErr *codec.DecodeError
	if errors.As(err, &decErr) {
		return map[string]interface{}{"format": decErr.Format}
	}
	return nil
}

// reportError prints err once, as a JSON envelope or as text on stderr.
func (a *app) reportError(err error) {
	code := errorCode(err)
	suggestion := errorSuggestion(code)
	if a.jsonOutput {
		a.outputError(ErrorInfo{
			Code:       code,
			Message:    err.Error(),
			Details:    errorDetails(err),
			Suggestion: suggestion,
		})
		return
	}
	fmt.Fprintln(a.errOut, ui.Errorf("%v", err))
	if suggestion != "" {
		fmt.Fprintln(a.errOut, ui.Hint(suggestion))
	}
}
