package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateName validates a display name used for columns and scenes.
//
// Rules:
//   - No empty names
//   - No control characters
//   - Maximum length of 64 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateTraceID checks that id is a canonical UUID as issued by the
// simulation API.
func ValidateTraceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "trace id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid trace id %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidInput, "trace id %q is not in canonical form", id)
	}
	return nil
}

// ValidateOutputPath validates a file path the CLI writes to.
// It rejects empty paths, null bytes and parent-directory traversal.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain '..'")
		}
	}
	return nil
}
