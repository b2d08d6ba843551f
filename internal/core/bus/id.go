package bus

import (
	"strings"

	"github.com/google/uuid"
)

// idLength is the number of hex characters kept from the generated UUID.
// Short enough to quote in chat messages, random enough that collisions are
// handled by create-if-absent plus regenerate-and-retry rather than prevented.
const idLength = 8

// NewRequestID generates a random, filesystem-safe request id.
// Ids come from random bits, never a counter: independent processes create
// requests concurrently with no shared state to count from.
func NewRequestID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:idLength]
}
