package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenThreadID returns a new opaque thread identifier.
func GenThreadID() string {
	return "th_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
