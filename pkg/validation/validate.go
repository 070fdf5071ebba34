package validation

import (
	"fmt"
)

// Rules bounds user-supplied input. Zero values disable a check.
type Rules struct {
	MaxMessageBytes int64
}

var rules Rules

// SetRules installs the global validation rules.
func SetRules(r Rules) { rules = r }

// ValidateUserText checks a trimmed user message against the configured
// limits. Emptiness is the caller's concern; this only bounds size.
func ValidateUserText(text string) error {
	if rules.MaxMessageBytes > 0 && int64(len(text)) > rules.MaxMessageBytes {
		return fmt.Errorf("message exceeds %d bytes", rules.MaxMessageBytes)
	}
	return nil
}
