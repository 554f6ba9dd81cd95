package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/pchen41/gauntlet-reel-app/internal/catalog"
	"github.com/pchen41/gauntlet-reel-app/internal/history"
)

// Prompt assembly. Every function here is a pure function of its inputs so
// that identical inputs produce byte-identical prompt text.

const persona = `You are an expert climbing coach with years of experience in both indoor and outdoor climbing.
You are chatting to a climber that is using an app called "ClimbCoach".
This app allows the climber to improve their climbing skills by setting goals for themselves and watching lessons.`

const adviceStyle = `When asked, provide specific, actionable advice that is encouraging but realistic.
Keep your response concise. Try to stay under 3 sentences.`

// transcript renders prior history as alternating prefixed lines. The
// climber's own turns carry the "Climber:" prefix, the model's "Coach:".
func transcript(messages []*history.Message) string {
	var sb strings.Builder
	for _, m := range messages {
		prefix := "Coach"
		if m.Role == ai.RoleUser {
			prefix = "Climber"
		}
		sb.WriteString(prefix)
		sb.WriteString(": ")
		sb.WriteString(m.Text())
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatLessons renders the catalog as one JSON object per line.
func formatLessons(lessons []catalog.Lesson) string {
	lines := make([]string, 0, len(lessons))
	for _, l := range lessons {
		data, err := json.Marshal(RecommendedLesson{Title: l.Title, Description: l.Description, ID: l.ID})
		if err != nil {
			continue
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n")
}

// formatGoals renders the user's goals as one JSON object per line, tasks
// passed through unchanged.
func formatGoals(goals []catalog.Goal) string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		data, err := json.Marshal(struct {
			ID    string         `json:"id"`
			Name  string         `json:"name"`
			Tasks []catalog.Task `json:"tasks"`
		}{g.ID, g.Name, g.Tasks})
		if err != nil {
			continue
		}
		lines = append(lines, string(data))
	}
	return strings.Join(lines, "\n")
}

// FreeTextPrompt builds the prompt for the tool-calling chat variant. The
// prior transcript is inlined; lessons and goals are left to tool calls.
func FreeTextPrompt(userID, message string, messages []*history.Message) string {
	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString("\nPlease do not fetch lessons or goals unless very relevant to the climber's question.\n\n")
	sb.WriteString("Current conversation:\n")
	sb.WriteString(transcript(messages))
	sb.WriteString("\nClimber's question: ")
	sb.WriteString(message)
	sb.WriteString("\nThe climber's userId is ")
	sb.WriteString(userID)
	sb.WriteString("\n\n")
	sb.WriteString(adviceStyle)
	return sb.String()
}

// StructuredSystem builds the system instruction for the schema-constrained
// chat variant. Lessons and goals are inlined as literal JSON together with
// the reply schema; prior history travels separately as messages.
func StructuredSystem(userID, userName string, lessons []catalog.Lesson, goals []catalog.Goal) (string, error) {
	schemaJSON, err := ReplySchemaJSON()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString(`
Each lesson contains a series of videos that correspond to the lesson topic.
Each goal consists of a list of tasks that need to be completed to accomplish the goal.
If the task is of type "text", then the value is just the description of the task.
If the task is of type "lesson", then the value is just the lesson ID.

Here are the lessons (in JSON format):
`)
	sb.WriteString(formatLessons(lessons))
	sb.WriteString("\n\nHere are the user's current goals (in JSON format):\n")
	sb.WriteString(formatGoals(goals))
	sb.WriteString("\n\n")
	sb.WriteString(adviceStyle)
	sb.WriteString("\n\nThe climber's userId is ")
	sb.WriteString(userID)
	if userName != "" {
		sb.WriteString("\nThe climber's name is ")
		sb.WriteString(userName)
	}
	sb.WriteString("\n\nOutput should be in JSON format and conform to the following schema:\n")
	sb.WriteString(schemaJSON)
	sb.WriteString("\n\nNever use ids that are not present in the supplied data.")
	sb.WriteString("\nPlease always provide something in the \"message\" field to give the climber additional context.")
	sb.WriteString(" If there is any question about a picture or image, please refer to the attached image if any.")
	sb.WriteString(" Do not use any ids in the message field.")
	return sb.String(), nil
}

// UserParts builds the user turn. With an image the turn becomes
// multi-part, media reference before text, in that fixed order.
func UserParts(message, imageURL string) []*ai.Part {
	if imageURL == "" {
		return []*ai.Part{ai.NewTextPart(message)}
	}
	return []*ai.Part{
		ai.NewMediaPart("", imageURL),
		ai.NewTextPart(message),
	}
}

// SummaryPrompt builds the lesson summary prompt from the lesson, its
// videos, and the comments grouped per video.
func SummaryPrompt(lesson *catalog.Lesson, videos []catalog.Video, comments []catalog.VideoComments) (string, error) {
	videosJSON, err := json.MarshalIndent(videos, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling videos: %w", err)
	}
	commentsJSON, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling comments: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`This is data from a lessons screen for an app called "ClimbCoach" which helps climbers improve their climbing skills.

Here is a lesson name and description:
Title: `)
	sb.WriteString(lesson.Title)
	sb.WriteString("\nDescription: ")
	sb.WriteString(lesson.Description)
	sb.WriteString("\n\nHere are the videos in the lesson (in JSON format):\n")
	sb.Write(videosJSON)
	sb.WriteString("\n\nHere are the comments on the videos (in JSON format):\n")
	sb.Write(commentsJSON)
	sb.WriteString(`

The user can already see the lesson name and description, video count, and a list of the videos including the video names and descriptions.
Please give a summary of the provided data. Try to provide insightful information. Do not include IDs in your response. Keep your answer short and concise.`)
	return sb.String(), nil
}
