// Package coach implements the coaching conversation flows: free-text chat
// with lookup tools, schema-constrained structured chat, and lesson
// summaries. Each request is handled independently; there is no shared
// mutable state between requests.
package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"google.golang.org/genai"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/config"
	"github.com/pchen41/gauntlet-reel-app/internal/history"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// Catalog is the read-only domain data the coach draws on.
type Catalog interface {
	Lessons(ctx context.Context) ([]catalog.Lesson, error)
	Goals(ctx context.Context, userID string) ([]catalog.Goal, error)
	UserName(ctx context.Context, uid string) (string, error)
	Lesson(ctx context.Context, id string) (*catalog.Lesson, error)
	Videos(ctx context.Context, ids []string) ([]catalog.Video, error)
	CommentsByVideo(ctx context.Context, videoIDs []string) ([]catalog.VideoComments, error)
}

// History is the per-user transcript store.
type History interface {
	Messages(ctx context.Context, userUID string, limit int) ([]*history.Message, error)
	Append(ctx context.Context, userUID string, messages []*history.Message) error
}

// Service orchestrates one coaching exchange end to end: read stored
// context, assemble the prompt, call the model, persist the exchange.
//
// Service is safe for concurrent use by multiple goroutines.
type Service struct {
	g       *genkit.Genkit
	catalog Catalog
	history History
	tools   []ai.ToolRef
	logger  log.Logger

	provider              string
	modelName             string
	temperature           float32
	structuredTemperature float32
	maxTurns              int
	historyWindow         int
}

// NewService creates a coaching Service. The lookup tools are registered
// with Genkit as part of construction.
func NewService(g *genkit.Genkit, cat Catalog, hist History, cfg *config.Config, logger log.Logger) (*Service, error) {
	if g == nil {
		return nil, ErrNilGenkit
	}
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if hist == nil {
		return nil, ErrNilHistory
	}
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = log.NewNop()
	}

	tools, err := NewTools(cat, logger)
	if err != nil {
		return nil, err
	}
	registered := RegisterTools(g, tools)
	toolRefs := make([]ai.ToolRef, len(registered))
	for i, t := range registered {
		toolRefs[i] = t
	}

	return &Service{
		g:                     g,
		catalog:               cat,
		history:               hist,
		tools:                 toolRefs,
		logger:                logger,
		provider:              cfg.Provider,
		modelName:             cfg.FullModelName(),
		temperature:           cfg.Temperature,
		structuredTemperature: cfg.StructuredTemperature,
		maxTurns:              cfg.MaxTurns,
		historyWindow:         int(cfg.MaxHistoryMessages),
	}, nil
}

// generationConfig builds the provider config carrying the temperature.
// The Google plugin takes its native config struct; other providers accept
// a generic map.
func (s *Service) generationConfig(temperature float32) any {
	if s.provider == config.ProviderOpenAI {
		return map[string]any{"temperature": float64(temperature)}
	}
	return &genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)}
}

// validate rejects bad input before any store or model call.
func validate(userID, message string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Chat answers a climber's question in free text. The model may call the
// lesson and goal lookup tools while reasoning. The exchange is appended
// to the user's transcript before the reply is returned.
func (s *Service) Chat(ctx context.Context, userID, message string) (string, error) {
	if err := validate(userID, message); err != nil {
		return "", err
	}

	messages, err := s.history.Messages(ctx, userID, s.historyWindow)
	if err != nil {
		return "", fmt.Errorf("reading history: %w", err)
	}

	prompt := FreeTextPrompt(userID, message, messages)

	resp, err := genkit.Generate(ctx, s.g,
		ai.WithModelName(s.modelName),
		ai.WithPrompt(prompt),
		ai.WithTools(s.tools...),
		ai.WithMaxTurns(s.maxTurns),
		ai.WithConfig(s.generationConfig(s.temperature)),
	)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	reply := resp.Text()
	if err := s.persistExchange(ctx, userID, message, "", reply); err != nil {
		return "", err
	}
	return reply, nil
}

// StructuredChat answers a climber's question with a reply conforming to
// StructuredReply. Lessons and goals are read up front and inlined into the
// system instruction; the optional image becomes a media part preceding the
// question text. Only the message field of the reply is persisted.
func (s *Service) StructuredChat(ctx context.Context, userID, message, imageURL string) (*StructuredReply, error) {
	if err := validate(userID, message); err != nil {
		return nil, err
	}

	lessons, goals, userName, err := s.fetchContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.history.Messages(ctx, userID, s.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	system, err := StructuredSystem(userID, userName, lessons, goals)
	if err != nil {
		return nil, fmt.Errorf("assembling system instruction: %w", err)
	}

	priorTurns := make([]*ai.Message, 0, len(messages)+1)
	for _, m := range messages {
		priorTurns = append(priorTurns, &ai.Message{Role: m.Role, Content: m.Content})
	}
	userTurn := ai.NewUserMessage(UserParts(message, imageURL)...)
	priorTurns = append(priorTurns, userTurn)

	resp, err := genkit.Generate(ctx, s.g,
		ai.WithModelName(s.modelName),
		ai.WithSystem(system),
		ai.WithMessages(priorTurns...),
		ai.WithOutputType(StructuredReply{}),
		ai.WithConfig(s.generationConfig(s.structuredTemperature)),
	)
	if err != nil {
		return nil, fmt.Errorf("generating structured reply: %w", err)
	}

	var reply StructuredReply
	if err := resp.Output(&reply); err != nil {
		return nil, fmt.Errorf("decoding structured reply: %w", err)
	}

	if err := s.persistExchange(ctx, userID, message, imageURL, reply.Message); err != nil {
		return nil, err
	}
	return &reply, nil
}

// SummarizeLesson generates a short narrative summary of one lesson from
// its videos and their comments. Returns catalog.ErrLessonNotFound when the
// id does not exist.
func (s *Service) SummarizeLesson(ctx context.Context, lessonID string) (string, error) {
	if strings.TrimSpace(lessonID) == "" {
		return "", ErrEmptyLessonID
	}

	lesson, err := s.catalog.Lesson(ctx, lessonID)
	if err != nil {
		return "", err
	}

	videos, err := s.catalog.Videos(ctx, lesson.VideoIDs)
	if err != nil {
		return "", fmt.Errorf("reading videos: %w", err)
	}
	comments, err := s.catalog.CommentsByVideo(ctx, lesson.VideoIDs)
	if err != nil {
		return "", fmt.Errorf("reading comments: %w", err)
	}

	prompt, err := SummaryPrompt(lesson, videos, comments)
	if err != nil {
		return "", err
	}

	resp, err := genkit.Generate(ctx, s.g,
		ai.WithModelName(s.modelName),
		ai.WithPrompt(prompt),
		ai.WithConfig(s.generationConfig(s.temperature)),
	)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return resp.Text(), nil
}

// fetchContext reads the lesson catalog, the user's goals, and the user's
// display name. The three reads are independent and run concurrently.
func (s *Service) fetchContext(ctx context.Context, userID string) ([]catalog.Lesson, []catalog.Goal, string, error) {
	type lessonsResult struct {
		lessons []catalog.Lesson
		err     error
	}
	type goalsResult struct {
		goals []catalog.Goal
		err   error
	}
	type nameResult struct {
		name string
		err  error
	}

	lessonsCh := make(chan lessonsResult, 1)
	goalsCh := make(chan goalsResult, 1)
	nameCh := make(chan nameResult, 1)

	go func() {
		lessons, err := s.catalog.Lessons(ctx)
		lessonsCh <- lessonsResult{lessons, err}
	}()
	go func() {
		goals, err := s.catalog.Goals(ctx, userID)
		goalsCh <- goalsResult{goals, err}
	}()
	go func() {
		name, err := s.catalog.UserName(ctx, userID)
		nameCh <- nameResult{name, err}
	}()

	lr := <-lessonsCh
	gr := <-goalsCh
	nr := <-nameCh

	if lr.err != nil {
		return nil, nil, "", fmt.Errorf("reading lessons: %w", lr.err)
	}
	if gr.err != nil {
		return nil, nil, "", fmt.Errorf("reading goals: %w", gr.err)
	}
	if nr.err != nil {
		return nil, nil, "", fmt.Errorf("reading user: %w", nr.err)
	}
	return lr.lessons, gr.goals, nr.name, nil
}

// persistExchange appends the user turn and the model turn to the
// transcript in one atomic batch. The user turn keeps the media-before-text
// content order when an image was supplied.
func (s *Service) persistExchange(ctx context.Context, userID, message, imageURL, reply string) error {
	err := s.history.Append(ctx, userID, []*history.Message{
		{Role: ai.RoleUser, Content: UserParts(message, imageURL)},
		{Role: ai.RoleModel, Content: []*ai.Part{ai.NewTextPart(reply)}},
	})
	if err != nil {
		return fmt.Errorf("persisting exchange: %w", err)
	}
	return nil
}
