package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength bounds node labels, counted in runes.
const MaxLabelLength = 256

var slotNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// ValidateLabel checks a node label before it is stored. Empty labels are
// allowed; control characters (including newlines) are not.
func ValidateLabel(label string) error {
	if !utf8.ValidString(label) {
		return New(ErrCodeInvalidInput, "label is not valid UTF-8")
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains control characters")
		}
	}
	return nil
}

// ValidateSlotName checks a storage slot name. Slot names become file names
// and key suffixes, so they are restricted to a portable character set.
func ValidateSlotName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "slot name cannot be empty")
	}
	if !slotNamePattern.MatchString(name) || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "invalid slot name %q", name)
	}
	return nil
}

// ValidateOutputPath rejects export destinations that escape the working
// directory through parent references, unless they are absolute.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "output path contains null byte")
	}
	if filepath.IsAbs(path) {
		return nil
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "output path %q escapes the working directory", path)
	}
	return nil
}
