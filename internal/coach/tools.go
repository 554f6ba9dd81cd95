package coach

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// Tool name constants registered with Genkit.
const (
	GetLessonsToolName = "getLessons"
	GetGoalsToolName   = "getGoals"
)

// ToolInput is the input for both lesson and goal lookups.
type ToolInput struct {
	UserID string `json:"userId" jsonschema_description:"The id of the climber asking the question"`
}

// Tools holds dependencies for the generation-time lookup tools. Both tools
// are pure reads: the model may invoke them any number of times during one
// generation without side effects.
type Tools struct {
	catalog Catalog
	logger  log.Logger
}

// NewTools creates a Tools instance.
func NewTools(c Catalog, logger log.Logger) (*Tools, error) {
	if c == nil {
		return nil, ErrNilCatalog
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Tools{catalog: c, logger: logger}, nil
}

// GetLessons returns the full lesson catalog as title/description/id
// projections. Store errors propagate unchanged.
func (t *Tools) GetLessons(ctx *ai.ToolContext, in ToolInput) ([]RecommendedLesson, error) {
	if in.UserID == "" {
		return nil, ErrEmptyUserID
	}
	lessons, err := t.catalog.Lessons(ctx.Context)
	if err != nil {
		return nil, err
	}
	out := make([]RecommendedLesson, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, RecommendedLesson{Title: l.Title, Description: l.Description, ID: l.ID})
	}
	t.logger.Debug("tool fetched lessons", "count", len(out))
	return out, nil
}

// GetGoals returns the goals owned by the requesting user, tasks included.
func (t *Tools) GetGoals(ctx *ai.ToolContext, in ToolInput) ([]catalog.Goal, error) {
	if in.UserID == "" {
		return nil, ErrEmptyUserID
	}
	goals, err := t.catalog.Goals(ctx.Context, in.UserID)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("tool fetched goals", "user_id", in.UserID, "count", len(goals))
	return goals, nil
}

// RegisterTools registers the lookup tools with Genkit and returns them for
// use with ai.WithTools.
func RegisterTools(g *genkit.Genkit, t *Tools) []ai.Tool {
	return []ai.Tool{
		genkit.DefineTool(g, GetLessonsToolName,
			"Fetches a list of lessons that the climber can watch. "+
				"Each lesson is a series of videos about a topic.",
			t.GetLessons),
		genkit.DefineTool(g, GetGoalsToolName,
			"Fetches a list of goals that the climber is trying to achieve. "+
				"Each goal has a list of tasks needed to accomplish it.",
			t.GetGoals),
	}
}
