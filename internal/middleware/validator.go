package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Upload validation errors. Their text is shown to end users.
var (
	ErrNotImage     = errors.New("El archivo no es una imagen válida")
	ErrFileTooLarge = errors.New("El archivo es demasiado grande")
	ErrEmptyFile    = errors.New("El archivo está vacío")
)

// ValidateImageUpload sniffs the content and checks the size. It returns the
// detected content type.
func ValidateImageUpload(data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w (máximo %d MB)", ErrFileTooLarge, maxBytes>>20)
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	return ct, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
