package storage

import (
	"fmt"
	"strings"
)

// Validation failure codes.
const (
	CodeFileTooLarge = "file_too_large"
	CodeEmptyFile    = "empty_file"
	CodeInvalidMIME  = "invalid_mime"
)

// FileValidationError reports an upload rejected by a Rule.
type FileValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *FileValidationError) Error() string {
	return e.Message
}

// File is what a Rule inspects: the form field, size, and sniffed content type.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Size        int64
}

// Rule validates an upload before it is stored.
type Rule func(f File) error

// MaxSize rejects files larger than n bytes.
func MaxSize(n int64) Rule {
	return func(f File) error {
		if f.Size <= n {
			return nil
		}
		return &FileValidationError{
			Field:   f.Field,
			Code:    CodeFileTooLarge,
			Message: fmt.Sprintf("File %s exceeds %s", f.Field, formatBytes(n)),
		}
	}
}

// NotEmpty rejects zero-byte files.
func NotEmpty() Rule {
	return func(f File) error {
		if f.Size > 0 {
			return nil
		}
		return &FileValidationError{
			Field:   f.Field,
			Code:    CodeEmptyFile,
			Message: fmt.Sprintf("File %s is empty", f.Field),
		}
	}
}

// AllowedTypes accepts only the listed content types. Patterns like "image/*" match a whole family.
func AllowedTypes(patterns ...string) Rule {
	return func(f File) error {
		if matchesMIME(f.ContentType, patterns) {
			return nil
		}
		return &FileValidationError{
			Field:   f.Field,
			Code:    CodeInvalidMIME,
			Message: fmt.Sprintf("File %s must be one of: %s", f.Field, strings.Join(patterns, ", ")),
		}
	}
}

// ImageOnly accepts raster images.
func ImageOnly() Rule {
	return AllowedTypes("image/jpeg", "image/png", "image/gif", "image/webp")
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
