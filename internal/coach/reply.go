package coach

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
)

// RecommendedLesson is a catalog entry the coach points the climber at.
type RecommendedLesson struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ID          string `json:"id"`
}

// ReferencedGoal identifies an existing goal mentioned in the reply.
type ReferencedGoal struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProposedGoal is a new goal the coach suggests the climber adopt.
type ProposedGoal struct {
	Name  string         `json:"name"`
	Tasks []catalog.Task `json:"tasks"`
}

// StructuredReply is the contract the schema-constrained chat variant must
// satisfy. Message is always populated even when no other field applies.
type StructuredReply struct {
	Message       string              `json:"message" jsonschema_description:"The response from the coach"`
	Lessons       []RecommendedLesson `json:"lessons,omitempty" jsonschema_description:"Any lessons that the coach recommends to the climber. Do not add lessons unless they are mentioned in the message."`
	Goals         []ReferencedGoal    `json:"goals,omitempty" jsonschema_description:"Any goals that the coach referenced in their message"`
	ProposedGoals []ProposedGoal      `json:"proposedGoals,omitempty" jsonschema_description:"Any goals that the coach proposes to the climber."`
}

var replySchema = sync.OnceValues(func() (string, error) {
	schema, err := jsonschema.For[StructuredReply](nil)
	if err != nil {
		return "", fmt.Errorf("deriving reply schema: %w", err)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("marshaling reply schema: %w", err)
	}
	return string(data), nil
})

// ReplySchemaJSON returns the JSON Schema for StructuredReply as a compact
// string, suitable for inlining into a prompt. The result is identical
// across calls.
func ReplySchemaJSON() (string, error) {
	return replySchema()
}
