package errors

import (
	"strings"
	"unicode"
)

// MaxPackedK is the largest k representable by the packed graph
// representations, which store one k-mer in a 64-bit word at two
// bits per base.
const MaxPackedK = 31

// ValidateK validates a k-mer length for the given representation.
// Packed representations (succinct, bitmap, hash) store k-mers in
// 64-bit words and cannot exceed MaxPackedK; the string-keyed
// representation has no upper bound.
func ValidateK(k int, packed bool) error {
	if k < 2 {
		return New(ErrCodeUnsupportedK, "k must be at least 2, got %d", k)
	}

	if packed && k > MaxPackedK {
		return New(ErrCodeUnsupportedK, "k=%d exceeds the packed representation limit of %d", k, MaxPackedK)
	}

	return nil
}

// graphTypes enumerates the valid graph representation names.
var graphTypes = map[string]bool{
	"succinct": true,
	"bitmap":   true,
	"hash":     true,
	"hashstr":  true,
}

// ValidateGraphType validates a graph representation name.
func ValidateGraphType(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraphType, "graph type cannot be empty")
	}

	if !graphTypes[name] {
		return New(ErrCodeInvalidGraphType, "unknown graph type %q (valid: succinct, bitmap, hash, hashstr)", name)
	}

	return nil
}

// annoTypes enumerates the valid annotation layout names.
var annoTypes = map[string]bool{
	"row":    true,
	"column": true,
}

// ValidateAnnoType validates an annotation layout name.
func ValidateAnnoType(name string) error {
	if name == "" {
		return New(ErrCodeInvalidAnnoType, "annotation type cannot be empty")
	}

	if !annoTypes[name] {
		return New(ErrCodeInvalidAnnoType, "unknown annotation type %q (valid: row, column)", name)
	}

	return nil
}

// ValidateLabel validates an annotation label for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty labels
//   - No control characters (tabs and newlines would corrupt reports)
//   - Maximum length of 256 characters
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeMissingLabel, "label cannot be empty")
	}

	if len(label) > 256 {
		return New(ErrCodeInvalidLabel, "label too long (max 256 characters)")
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputBase validates an output base path for index files.
// It rejects paths that could escape the intended directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputBase(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "output path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateDiscoveryFraction validates a query discovery fraction.
// Zero means any single matching k-mer is enough.
func ValidateDiscoveryFraction(f float64) error {
	if f < 0 || f > 1 {
		return New(ErrCodeInvalidInput, "discovery fraction must be in [0, 1], got %g", f)
	}

	return nil
}

// ValidateBloomFPP validates a Bloom filter false positive probability.
// Zero disables the filter.
func ValidateBloomFPP(fpp float64) error {
	if fpp < 0 || fpp >= 1 {
		return New(ErrCodeInvalidInput, "bloom false positive probability must be in [0, 1), got %g", fpp)
	}

	return nil
}
