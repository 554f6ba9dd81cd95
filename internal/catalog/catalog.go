// Package catalog provides read-only access to the coaching domain data:
// the lesson catalog, per-user goals, and user profiles.
package catalog

import (
	"errors"
	"time"
)

// ErrLessonNotFound is returned when a lesson id does not exist in the catalog.
var ErrLessonNotFound = errors.New("lesson not found")

// TaskType discriminates the two kinds of goal tasks.
const (
	TaskTypeText   = "text"
	TaskTypeLesson = "lesson"
)

// Lesson is an immutable catalog entry describing a themed set of
// instructional videos. Created by seeding, read-only at request time.
type Lesson struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	VideoIDs    []string `json:"videoIds,omitempty"`
}

// Task is an atomic unit of a Goal. When Type is "lesson", Value holds a
// lesson id from the catalog; when Type is "text", Value is free text.
type Task struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Comments  string `json:"comments"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// Goal is a user-defined objective composed of ordered tasks.
type Goal struct {
	ID       string `json:"id"`
	OwnerUID string `json:"-"`
	Name     string `json:"name"`
	Tasks    []Task `json:"tasks"`
}

// Video is a single instructional clip referenced by a lesson.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

// Comment is viewer feedback attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	AuthorUID string    `json:"author_uid,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// VideoComments groups the comments for one video, newest first.
type VideoComments struct {
	VideoID  string    `json:"videoId"`
	Comments []Comment `json:"comments"`
}
