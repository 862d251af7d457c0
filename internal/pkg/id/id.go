package id

import (
	"strings"

	"github.com/google/uuid"
)

// FileID returns the 32-char lowercase hex id used to name an upload and its
// result artifact: a UUIDv4 with the dashes stripped, matching the naming of
// archives produced by earlier deployments.
func FileID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
