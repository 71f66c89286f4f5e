package workers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"improvdb/internal/shared/events"
)

func hashEvent(event events.DocumentEvent) string {
	payload, _ := json.Marshal(event)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// deletionEdge reports whether the before/after pair crosses from live to
// deleted. Replays of updates against an already-deleted document return
// false, which keeps tombstone writes single-shot.
func deletionEdge(beforeDeleted bool, afterDeleted bool) bool {
	return !beforeDeleted && afterDeleted
}
