// Package history implements the append-only per-user conversation log.
//
// Messages are ordered by the timestamp the store assigned at write time.
// Timestamps are not caller-supplied, so out-of-order arrival is tolerated
// by sorting at read time; equal-timestamp ties resolve user before model.
package history

import (
	"sort"
	"time"

	"github.com/firebase/genkit/go/ai"
)

// Message is a single transcript entry. Content follows the generation
// SDK's part model so text and media survive persistence unchanged.
type Message struct {
	ID        int64
	UserUID   string
	Role      ai.Role
	Content   []*ai.Part
	CreatedAt time.Time
}

// Text returns the concatenated text parts of the message.
func (m *Message) Text() string {
	var out string
	for _, p := range m.Content {
		if p.IsText() {
			out += p.Text
		}
	}
	return out
}

// SortMessages orders messages by non-decreasing timestamp. At equal
// timestamps a user message sorts before a model message, so a question
// always precedes its answer even when both rows share one commit clock.
func SortMessages(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		ti, tj := messages[i].CreatedAt, messages[j].CreatedAt
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return messages[i].Role == ai.RoleUser && messages[j].Role != ai.RoleUser
	})
}
