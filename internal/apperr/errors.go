// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apperr classifies pipeline failures so callers can tell a broken
// converter apart from a full disk or a document the splitter refuses.
package apperr

import (
	"errors"
	"os/exec"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CodeExternalTool  = "EXTERNAL_TOOL_FAILED"
	CodeFileSystem    = "FILESYSTEM_ERROR"
	CodeMalformed     = "MALFORMED_DOCUMENT"
	CodeConfigInvalid = "CONFIG_INVALID"
)

// Categories used for each failure kind.
const (
	CategoryExternalTool = goerrors.CategoryExternal
	CategoryFileSystem   = goerrors.CategoryOperation
	CategoryMalformed    = goerrors.CategoryBadInput
	CategoryConfig       = goerrors.CategoryValidation
)

// ExternalTool wraps the failure of a converter process. When err carries an
// exit status it is recorded as the exit_code metadata entry.
func ExternalTool(tool string, err error) error {
	if err == nil {
		return nil
	}
	meta := map[string]any{"tool": tool}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		meta["exit_code"] = exitErr.ExitCode()
	}
	return goerrors.Wrap(err, CategoryExternalTool, tool+" failed").
		WithTextCode(CodeExternalTool).
		WithMetadata(meta)
}

// FileSystem wraps an error from a directory or file operation on path.
func FileSystem(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, CategoryFileSystem, op+" "+path).
		WithTextCode(CodeFileSystem).
		WithMetadata(map[string]any{"op": op, "path": path})
}

// Malformed reports a document the splitter will not process.
func Malformed(message string) error {
	return goerrors.New(message, CategoryMalformed).
		WithTextCode(CodeMalformed)
}

// Config wraps a configuration validation failure.
func Config(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, CategoryConfig, "invalid configuration").
		WithTextCode(CodeConfigInvalid)
}

// IsExternalTool reports whether err is a converter failure.
func IsExternalTool(err error) bool {
	return goerrors.IsCategory(err, CategoryExternalTool)
}

// IsFileSystem reports whether err is a file-system failure.
func IsFileSystem(err error) bool {
	return goerrors.IsCategory(err, CategoryFileSystem)
}

// IsMalformed reports whether err is a rejected document.
func IsMalformed(err error) bool {
	return goerrors.IsCategory(err, CategoryMalformed)
}

// IsConfig reports whether err is a configuration failure.
func IsConfig(err error) bool {
	return goerrors.IsCategory(err, CategoryConfig)
}

// ExitCode returns the exit status recorded on an external tool failure,
// or -1 when there is none.
func ExitCode(err error) int {
	var e *goerrors.Error
	if !errors.As(err, &e) {
		return -1
	}
	if code, ok := e.Metadata["exit_code"].(int); ok {
		return code
	}
	return -1
}
