package coach

import (
	"context"

	"github.com/firebase/genkit/go/genkit"
)

// ChatInput is the request for the coachChat flow. Structured selects the
// schema-constrained variant; the free-text variant ignores Image.
type ChatInput struct {
	UID        string `json:"uid"`
	Message    string `json:"message"`
	Image      string `json:"image,omitempty"`
	Structured bool   `json:"structured,omitempty"`
}

// ChatOutput is the reply. The auxiliary fields are only populated by the
// structured variant.
type ChatOutput struct {
	Response      string              `json:"response"`
	Lessons       []RecommendedLesson `json:"lessons,omitempty"`
	Goals         []ReferencedGoal    `json:"goals,omitempty"`
	ProposedGoals []ProposedGoal      `json:"proposedGoals,omitempty"`
}

// SummaryInput is the request for the summarizeLesson flow.
type SummaryInput struct {
	LessonID string `json:"lessonId"`
}

// SummaryOutput is the generated lesson summary.
type SummaryOutput struct {
	Response string `json:"response"`
}

// RegisterFlows registers the coaching flows with Genkit. Both chat
// variants share one flow; the Structured flag picks the path.
func RegisterFlows(g *genkit.Genkit, s *Service) {
	genkit.DefineFlow(g, "coachChat",
		func(ctx context.Context, input ChatInput) (ChatOutput, error) {
			if input.Structured {
				reply, err := s.StructuredChat(ctx, input.UID, input.Message, input.Image)
				if err != nil {
					return ChatOutput{}, err
				}
				return ChatOutput{
					Response:      reply.Message,
					Lessons:       reply.Lessons,
					Goals:         reply.Goals,
					ProposedGoals: reply.ProposedGoals,
				}, nil
			}
			reply, err := s.Chat(ctx, input.UID, input.Message)
			if err != nil {
				return ChatOutput{}, err
			}
			return ChatOutput{Response: reply}, nil
		})

	genkit.DefineFlow(g, "summarizeLesson",
		func(ctx context.Context, input SummaryInput) (SummaryOutput, error) {
			summary, err := s.SummarizeLesson(ctx, input.LessonID)
			if err != nil {
				return SummaryOutput{}, err
			}
			return SummaryOutput{Response: summary}, nil
		})
}
