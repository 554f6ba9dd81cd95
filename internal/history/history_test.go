package history

import (
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
)

func msgAt(role ai.Role, text string, at time.Time) *Message {
	return &Message{
		Role:      role,
		Content:   []*ai.Part{ai.NewTextPart(text)},
		CreatedAt: at,
	}
}

func TestSortMessages_TimestampOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []*Message{
		msgAt(ai.RoleModel, "third", base.Add(2*time.Second)),
		msgAt(ai.RoleUser, "first", base),
		msgAt(ai.RoleUser, "second", base.Add(time.Second)),
	}

	SortMessages(messages)

	want := []string{"first", "second", "third"}
	for i, w := range want {
		if got := messages[i].Text(); got != w {
			t.Errorf("messages[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestSortMessages_EqualTimestampUserFirst(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []*Message{
		msgAt(ai.RoleModel, "answer", at),
		msgAt(ai.RoleUser, "question", at),
	}

	SortMessages(messages)

	if messages[0].Role != ai.RoleUser {
		t.Errorf("messages[0].Role = %q, want user before model at equal timestamps", messages[0].Role)
	}
	if got := messages[0].Text(); got != "question" {
		t.Errorf("messages[0] = %q, want %q", got, "question")
	}
}

func TestSortMessages_StableWithinRole(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []*Message{
		msgAt(ai.RoleUser, "a", at),
		msgAt(ai.RoleUser, "b", at),
		msgAt(ai.RoleModel, "c", at),
		msgAt(ai.RoleModel, "d", at),
	}

	SortMessages(messages)

	want := []string{"a", "b", "c", "d"}
	for i, w := range want {
		if got := messages[i].Text(); got != w {
			t.Errorf("messages[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestMessageText_MixedParts(t *testing.T) {
	m := &Message{
		Content: []*ai.Part{
			ai.NewMediaPart("image/png", "https://x/img.png"),
			ai.NewTextPart("look at this hold"),
		},
	}
	if got := m.Text(); got != "look at this hold" {
		t.Errorf("Text() = %q, want text parts only", got)
	}
}
