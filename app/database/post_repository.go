package database

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var _ PostRepository = (*PostStore)(nil)

// PostStore handles database operations for posts
type PostStore struct {
	db       *DB
	notifier ChangeNotifier
}

// NewPostStore creates a new post store. The notifier may be nil.
func NewPostStore(db *DB, notifier ChangeNotifier) *PostStore {
	return &PostStore{db: db, notifier: notifier}
}

// SavePost inserts a post or updates the one sharing its slug
func (r *PostStore) SavePost(ctx context.Context, post Post) (int64, error) {
	if post.Name == "" {
		return 0, fmt.Errorf("post name is required")
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (guid, post_title, post_name, post_date, post_type, post_status, post_content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (post_name) DO UPDATE SET
			guid = excluded.guid,
			post_title = excluded.post_title,
			post_date = excluded.post_date,
			post_type = excluded.post_type,
			post_status = excluded.post_status,
			post_content = excluded.post_content
		RETURNING id
	`, post.GUID, post.Title, post.Name,
		cmp.Or(post.Date, NilDate),
		cmp.Or(post.Type, PostTypePost),
		cmp.Or(post.Status, PostStatusPublish),
		post.Content).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save post: %w", err)
	}

	r.changed()

	return id, nil
}

// DeletePost removes a post by ID
func (r *PostStore) DeletePost(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	r.changed()

	return nil
}

// GetPost retrieves a post by ID, nil when it does not exist
func (r *PostStore) GetPost(ctx context.Context, id int64) (*Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, `
		SELECT id, guid, post_title, post_name, post_date, post_type, post_status, post_content
		FROM posts
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetPostByName retrieves a post by its slug, nil when it does not exist
func (r *PostStore) GetPostByName(ctx context.Context, name string) (*Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, `
		SELECT id, guid, post_title, post_name, post_date, post_type, post_status, post_content
		FROM posts
		WHERE post_name = ?
	`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by name: %w", err)
	}
	return post, nil
}

// GetPostCount returns the total number of posts
func (r *PostStore) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func (r *PostStore) changed() {
	if r.notifier != nil {
		r.notifier.Bump()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.GUID, &post.Title, &post.Name, &post.Date,
		&post.Type, &post.Status, &post.Content)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
