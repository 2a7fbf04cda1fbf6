package strutils

import (
	"fmt"
	"strings"

	"github.com/Amund211/fetchonce/internal/domain"
)

const VALID_KEY_CHARACTERS = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

const MAX_KEY_LENGTH = 63

// Ensures the key is non-empty, at most MAX_KEY_LENGTH bytes and only contains
// characters that can be used verbatim as a URL path segment
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", domain.ErrInvalidKey)
	}
	if len(key) > MAX_KEY_LENGTH {
		return fmt.Errorf("%w: key is longer than %d characters. length: %d", domain.ErrInvalidKey, MAX_KEY_LENGTH, len(key))
	}
	for _, char := range key {
		if !strings.ContainsRune(VALID_KEY_CHARACTERS, char) {
			return fmt.Errorf("%w: invalid character %q in key", domain.ErrInvalidKey, char)
		}
	}
	return nil
}

func KeyIsValid(key string) bool {
	return ValidateKey(key) == nil
}
