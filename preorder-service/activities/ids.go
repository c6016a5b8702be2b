package activities

import (
	"strings"

	"github.com/google/uuid"
)

// newResourceID generates a short prefixed identifier for an external
// resource, e.g. "CH-1a2b3c4d". Every successful attempt gets a fresh id;
// duplicates across retried attempts are an accepted consequence of
// at-least-once execution.
func newResourceID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
