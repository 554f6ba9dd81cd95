//go:build integration

package history

import (
	"context"
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/pchen41/gauntlet-reel-app/internal/log"
	"github.com/pchen41/gauntlet-reel-app/internal/testutil"
)

func TestStore_AppendAndRead(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := NewStore(tdb.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	err = store.Append(ctx, "u1", []*Message{
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("how do I campus?")}},
		{Role: ai.RoleModel, Content: []*ai.Part{ai.NewTextPart("Start on bigger rungs.")}},
	})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	messages, err := store.Messages(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != ai.RoleUser {
		t.Errorf("messages[0].Role = %q, want user turn first", messages[0].Role)
	}
	if got := messages[1].Text(); got != "Start on bigger rungs." {
		t.Errorf("messages[1] = %q, want persisted model reply", got)
	}
}

func TestStore_AppendAtomicity(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := NewStore(tdb.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	// The second message fails validation after the first insert, so the
	// whole batch must roll back.
	err = store.Append(ctx, "u1", []*Message{
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("hello")}},
		{Role: ai.RoleModel, Content: []*ai.Part{nil}},
	})
	if err == nil {
		t.Fatal("Append() with nil content part succeeded, want error")
	}

	messages, err := store.Messages(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("got %d messages after failed batch, want 0 (no partial write)", len(messages))
	}
}

func TestStore_UserIsolation(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := NewStore(tdb.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	if err := store.Append(ctx, "u1", []*Message{
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("u1 message")}},
	}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := store.Append(ctx, "u2", []*Message{
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("u2 message")}},
	}); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	messages, err := store.Messages(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages for u1, want 1", len(messages))
	}
	if got := messages[0].Text(); got != "u1 message" {
		t.Errorf("messages[0] = %q, want only u1's own messages", got)
	}
}

func TestStore_WindowCap(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := NewStore(tdb.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, "u1", []*Message{
			{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart(string(rune('a' + i)))}},
		}); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	messages, err := store.Messages(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want the 2 most recent", len(messages))
	}
	if got := messages[0].Text(); got != "d" {
		t.Errorf("messages[0] = %q, want %q (window keeps newest, ordered ascending)", got, "d")
	}
	if got := messages[1].Text(); got != "e" {
		t.Errorf("messages[1] = %q, want %q", got, "e")
	}
}

func TestStore_MediaPartsRoundTrip(t *testing.T) {
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store, err := NewStore(tdb.Pool, log.NewNop())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}

	err = store.Append(ctx, "u1", []*Message{
		{Role: ai.RoleUser, Content: []*ai.Part{
			ai.NewMediaPart("image/png", "https://x/img.png"),
			ai.NewTextPart("what am I doing wrong here?"),
		}},
	})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	messages, err := store.Messages(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Messages() error: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}
	content := messages[0].Content
	if len(content) != 2 {
		t.Fatalf("got %d content parts, want 2", len(content))
	}
	if !content[0].IsMedia() {
		t.Error("content[0] is not media, want media part preserved before text")
	}
	if !content[1].IsText() || content[1].Text != "what am I doing wrong here?" {
		t.Errorf("content[1] = %+v, want original text part", content[1])
	}
}
