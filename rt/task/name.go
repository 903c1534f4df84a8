package task

import (
	"fmt"
	"strings"
)

// maxNameLen keeps names usable as log fields and ops text keys.
const maxNameLen = 64

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// validateName checks a normalized name. Empty means unnamed and is allowed.
func validateName(name string) error {
	if len(name) > maxNameLen {
		return fmt.Errorf("longer than %d bytes", maxNameLen)
	}
	for i := 0; i < len(name); i++ {
		switch c := name[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			return fmt.Errorf("contains whitespace at %d (not allowed)", i)
		default:
			return fmt.Errorf("contains %q at %d (allowed: [A-Za-z0-9._-])", c, i)
		}
	}
	return nil
}
