package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pchen41/gauntlet-reel-app/internal/log"
)

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads lessons, goals, videos, comments, and user profiles from
// PostgreSQL. All operations are read-only; writes happen elsewhere in the
// surrounding application.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     querier
	logger log.Logger
}

// NewStore creates a catalog Store backed by the given pool.
func NewStore(pool *pgxpool.Pool, logger log.Logger) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: pool, logger: logger}, nil
}

// Lessons returns the full lesson catalog, unfiltered.
func (s *Store) Lessons(ctx context.Context) ([]Lesson, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, description, video_ids FROM lessons ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying lessons: %w", err)
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.VideoIDs); err != nil {
			return nil, fmt.Errorf("scanning lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lessons: %w", err)
	}
	return lessons, nil
}

// Lesson returns a single catalog entry by id.
// Returns ErrLessonNotFound if the id does not exist.
func (s *Store) Lesson(ctx context.Context, id string) (*Lesson, error) {
	var l Lesson
	err := s.db.QueryRow(ctx,
		`SELECT id, title, description, video_ids FROM lessons WHERE id = $1`, id).
		Scan(&l.ID, &l.Title, &l.Description, &l.VideoIDs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying lesson %s: %w", id, err)
	}
	return &l, nil
}

// Goals returns the goals owned by userID, oldest first. Goals owned by
// other users are never returned.
func (s *Store) Goals(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_uid, name, tasks FROM goals WHERE owner_uid = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		var tasksJSON []byte
		if err := rows.Scan(&g.ID, &g.OwnerUID, &g.Name, &tasksJSON); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		if err := json.Unmarshal(tasksJSON, &g.Tasks); err != nil {
			return nil, fmt.Errorf("decoding tasks for goal %s: %w", g.ID, err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}
	return goals, nil
}

// UserName returns the display name for uid, or "" when the profile does
// not exist. A missing profile is not an error; prompts simply omit the name.
func (s *Store) UserName(ctx context.Context, uid string) (string, error) {
	var name string
	err := s.db.QueryRow(ctx, `SELECT name FROM users WHERE uid = $1`, uid).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying user %s: %w", uid, err)
	}
	return name, nil
}

// Videos returns the videos with the given ids. Missing ids are skipped
// rather than reported; the result order follows creation time.
func (s *Store) Videos(ctx context.Context, ids []string) ([]Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, title, description, url, created_at FROM videos WHERE id = ANY($1) ORDER BY created_at`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.URL, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating videos: %w", err)
	}
	return videos, nil
}

// CommentsByVideo returns the comments for each of the given video ids,
// newest first within each group. Every requested id gets a group, even
// when it has no comments.
func (s *Store) CommentsByVideo(ctx context.Context, videoIDs []string) ([]VideoComments, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, video_id, author_uid, body, created_at FROM comments
		 WHERE video_id = ANY($1) ORDER BY created_at DESC`, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("querying comments: %w", err)
	}
	defer rows.Close()

	byVideo := make(map[string][]Comment, len(videoIDs))
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.VideoID, &c.AuthorUID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		byVideo[c.VideoID] = append(byVideo[c.VideoID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}

	groups := make([]VideoComments, 0, len(videoIDs))
	for _, id := range videoIDs {
		groups = append(groups, VideoComments{VideoID: id, Comments: byVideo[id]})
	}
	return groups, nil
}
