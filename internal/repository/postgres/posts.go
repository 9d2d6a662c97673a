package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/models"
)

type PostRepo struct {
	DB DBTX
}

const createPost = `-- name: CreatePost
INSERT INTO posts (title, text, author)
VALUES ($1, $2, $3)
RETURNING id, created_at, title, text, author
`

func (r *PostRepo) CreatePost(ctx context.Context, title string, text string, author string) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, createPost, title, text, author)
	post, err := pgx.CollectOneRow(rows, rowToPost)
	if err != nil {
		return post, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

const getPost = `-- name: GetPost
SELECT id, created_at, title, text, author
FROM posts
WHERE id = $1
`

func (r *PostRepo) GetPost(ctx context.Context, id uuid.UUID) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, getPost, id)
	post, err := pgx.CollectOneRow(rows, rowToPost)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return post, apperrors.ErrPostNotFound
	}

	return post, err
}

const listPosts = `-- name: ListPosts
SELECT id, created_at, title, text, author
FROM posts
ORDER BY created_at
`

func (r *PostRepo) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, _ := r.DB.Query(ctx, listPosts)
	posts, err := pgx.CollectRows(rows, rowToPost)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

const updatePost = `-- name: UpdatePost
UPDATE posts
SET title = $2, text = $3, author = $4
WHERE id = $1
RETURNING id, created_at, title, text, author
`

func (r *PostRepo) UpdatePost(ctx context.Context, post models.Post) (models.Post, error) {
	rows, _ := r.DB.Query(ctx, updatePost, post.ID, post.Title, post.Text, post.Author)
	updated, err := pgx.CollectOneRow(rows, rowToPost)

	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return updated, apperrors.ErrPostNotFound
	}

	return updated, err
}

const deletePost = `-- name: DeletePost
DELETE FROM posts
WHERE id = $1
`

func (r *PostRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deletePost, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

func rowToPost(row pgx.CollectableRow) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.CreatedAt, &p.Title, &p.Text, &p.Author)
	return p, err
}
