package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/config"
	"github.com/pchen41/gauntlet-reel-app/internal/history"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
	"github.com/pchen41/gauntlet-reel-app/internal/testutil"
)

// fakeHistory is an in-memory transcript store with call counters.
type fakeHistory struct {
	mu       sync.Mutex
	messages map[string][]*history.Message
	reads    int
	appends  int
	failErr  error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{messages: make(map[string][]*history.Message)}
}

func (f *fakeHistory) Messages(_ context.Context, userUID string, limit int) ([]*history.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	msgs := f.messages[userUID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeHistory) Append(_ context.Context, userUID string, msgs []*history.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appends++
	if f.failErr != nil {
		return f.failErr
	}
	f.messages[userUID] = append(f.messages[userUID], msgs...)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Provider:              config.ProviderGemini,
		ModelName:             "mock/coach-model",
		Temperature:           0.1,
		StructuredTemperature: 0.5,
		MaxTurns:              5,
		MaxHistoryMessages:    config.DefaultMaxHistoryMessages,
	}
}

func newTestService(t *testing.T, cat Catalog, hist History, mock *testutil.MockLLM) *Service {
	t.Helper()
	g := genkit.Init(context.Background())
	if g == nil {
		t.Fatal("genkit.Init returned nil")
	}
	mock.RegisterModel(g)
	svc, err := NewService(g, cat, hist, testConfig(), log.NewNop())
	if err != nil {
		t.Fatalf("NewService() error: %v", err)
	}
	return svc
}

func TestNewService_Validation(t *testing.T) {
	g := genkit.Init(context.Background())
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()

	if _, err := NewService(nil, cat, hist, testConfig(), log.NewNop()); !errors.Is(err, ErrNilGenkit) {
		t.Errorf("nil genkit error = %v, want ErrNilGenkit", err)
	}
	if _, err := NewService(g, nil, hist, testConfig(), log.NewNop()); !errors.Is(err, ErrNilCatalog) {
		t.Errorf("nil catalog error = %v, want ErrNilCatalog", err)
	}
	if _, err := NewService(g, cat, nil, testConfig(), log.NewNop()); !errors.Is(err, ErrNilHistory) {
		t.Errorf("nil history error = %v, want ErrNilHistory", err)
	}
	if _, err := NewService(g, cat, hist, nil, log.NewNop()); !errors.Is(err, config.ErrConfigNil) {
		t.Errorf("nil config error = %v, want ErrConfigNil", err)
	}
}

func TestChat_EmptyMessageRejectedBeforeAnyCall(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM("fallback")
	svc := newTestService(t, cat, hist, mock)

	_, err := svc.Chat(context.Background(), "u1", "   ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Chat() error = %v, want ErrEmptyMessage", err)
	}
	if cat.calls.Load() != 0 {
		t.Error("catalog was read despite empty message")
	}
	if hist.reads != 0 || hist.appends != 0 {
		t.Error("history was touched despite empty message")
	}
	if mock.CallCount() != 0 {
		t.Error("model was called despite empty message")
	}
}

func TestChat_EmptyUserID(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM("fallback")
	svc := newTestService(t, cat, hist, mock)

	if _, err := svc.Chat(context.Background(), "", "hello"); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("Chat() error = %v, want ErrEmptyUserID", err)
	}
}

func TestChat_RepliesAndPersists(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM("fallback")
	mock.AddResponse("campus", "Start on bigger rungs and keep your shoulders engaged.")
	svc := newTestService(t, cat, hist, mock)

	reply, err := svc.Chat(context.Background(), "u1", "how do I start campus training?")
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if reply != "Start on bigger rungs and keep your shoulders engaged." {
		t.Errorf("reply = %q", reply)
	}

	stored := hist.messages["u1"]
	if len(stored) != 2 {
		t.Fatalf("stored %d messages, want the user turn and the model turn", len(stored))
	}
	if stored[0].Role != ai.RoleUser || stored[0].Text() != "how do I start campus training?" {
		t.Errorf("stored[0] = %+v, want the user turn", stored[0])
	}
	if stored[1].Role != ai.RoleModel || stored[1].Text() != reply {
		t.Errorf("stored[1] = %+v, want the model reply", stored[1])
	}
}

func TestChat_HistoryAppearsInPrompt(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	hist.messages["u1"] = []*history.Message{
		{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart("how do I improve my footwork?")}},
		{Role: ai.RoleModel, Content: []*ai.Part{ai.NewTextPart("Practice silent feet drills.")}},
	}
	mock := testutil.NewMockLLM("sounds good")
	svc := newTestService(t, cat, hist, mock)

	if _, err := svc.Chat(context.Background(), "u1", "what about balance?"); err != nil {
		t.Fatalf("Chat() error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) == 0 {
		t.Fatal("model was never called")
	}
	prompt := calls[0].UserMessage
	for _, want := range []string{"Climber: how do I improve my footwork?", "Coach: Practice silent feet drills."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChat_AppendFailureSurfaces(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	hist.failErr = errors.New("write refused")
	mock := testutil.NewMockLLM("ok")
	svc := newTestService(t, cat, hist, mock)

	if _, err := svc.Chat(context.Background(), "u1", "hello"); err == nil {
		t.Error("Chat() succeeded despite persistence failure")
	}
}

func TestStructuredChat_RoundTrip(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM(`{"message":"Keep at it."}`)
	mock.AddResponse("footwork",
		`{"message":"Start with Footwork Fundamentals.","lessons":[{"title":"Footwork Fundamentals","description":"Precise foot placement.","id":"l1"}]}`)
	svc := newTestService(t, cat, hist, mock)

	reply, err := svc.StructuredChat(context.Background(), "u1", "which lesson helps footwork?", "")
	if err != nil {
		t.Fatalf("StructuredChat() error: %v", err)
	}
	if reply.Message != "Start with Footwork Fundamentals." {
		t.Errorf("reply.Message = %q", reply.Message)
	}
	if len(reply.Lessons) != 1 || reply.Lessons[0].ID != "l1" {
		t.Errorf("reply.Lessons = %+v, want the recommended lesson", reply.Lessons)
	}

	// Only the message field is written back into history.
	stored := hist.messages["u1"]
	if len(stored) != 2 {
		t.Fatalf("stored %d messages, want 2", len(stored))
	}
	if got := stored[1].Text(); got != reply.Message {
		t.Errorf("persisted model turn = %q, want just the message field", got)
	}
}

func TestStructuredChat_SystemCarriesCatalogAndName(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM(`{"message":"Keep at it."}`)
	svc := newTestService(t, cat, hist, mock)

	if _, err := svc.StructuredChat(context.Background(), "u1", "any advice?", ""); err != nil {
		t.Fatalf("StructuredChat() error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) == 0 {
		t.Fatal("model was never called")
	}
	system := calls[0].System
	for _, want := range []string{`"id":"l1"`, `"name":"Send V5"`, "The climber's name is Alex"} {
		if !strings.Contains(system, want) {
			t.Errorf("system text missing %q", want)
		}
	}
	if strings.Contains(system, "Lead 5.11") {
		t.Error("system text leaked another user's goal")
	}
}

func TestStructuredChat_ImageTurn(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM(`{"message":"Nice heel hook."}`)
	svc := newTestService(t, cat, hist, mock)

	_, err := svc.StructuredChat(context.Background(), "u1", "what am I doing wrong here?", "https://x/img.png")
	if err != nil {
		t.Fatalf("StructuredChat() error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) == 0 || !calls[0].HadMedia {
		t.Error("model request missing the media part")
	}

	stored := hist.messages["u1"]
	if len(stored) != 2 {
		t.Fatalf("stored %d messages, want 2", len(stored))
	}
	content := stored[0].Content
	if len(content) != 2 || !content[0].IsMedia() || !content[1].IsText() {
		t.Errorf("persisted user turn = %+v, want media before text", content)
	}
}

func TestSummarizeLesson(t *testing.T) {
	cat := mixedOwnerCatalog()
	cat.lessons[0].VideoIDs = []string{"v1"}
	cat.videos = []catalog.Video{{ID: "v1", Title: "Silent feet drill"}}
	hist := newFakeHistory()
	mock := testutil.NewMockLLM("This lesson focuses on quiet, precise feet.")
	svc := newTestService(t, cat, hist, mock)

	summary, err := svc.SummarizeLesson(context.Background(), "l1")
	if err != nil {
		t.Fatalf("SummarizeLesson() error: %v", err)
	}
	if summary != "This lesson focuses on quiet, precise feet." {
		t.Errorf("summary = %q", summary)
	}
}

func TestSummarizeLesson_NotFound(t *testing.T) {
	cat := mixedOwnerCatalog()
	hist := newFakeHistory()
	mock := testutil.NewMockLLM("unused")
	svc := newTestService(t, cat, hist, mock)

	if _, err := svc.SummarizeLesson(context.Background(), "missing"); !errors.Is(err, catalog.ErrLessonNotFound) {
		t.Errorf("SummarizeLesson() error = %v, want ErrLessonNotFound", err)
	}
}

func TestSummarizeLesson_EmptyID(t *testing.T) {
	svc := newTestService(t, mixedOwnerCatalog(), newFakeHistory(), testutil.NewMockLLM("unused"))
	if _, err := svc.SummarizeLesson(context.Background(), ""); !errors.Is(err, ErrEmptyLessonID) {
		t.Errorf("SummarizeLesson() error = %v, want ErrEmptyLessonID", err)
	}
}
