package post

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelinsk/authgate/internal/models"
	"github.com/avelinsk/authgate/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepo
}

func NewService(postRepo repository.PostRepo) *PostService {
	return &PostService{postRepo: postRepo}
}

func (s *PostService) Create(ctx context.Context, title string, text string, author string) (models.Post, error) {
	post, err := s.postRepo.CreatePost(ctx, title, text, author)
	if err != nil {
		return post, fmt.Errorf("can't create post. Err: %w", err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (models.Post, error) {
	return s.postRepo.GetPost(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListPosts(ctx)
}

func (s *PostService) Update(ctx context.Context, id uuid.UUID, title string, text string, author string) (models.Post, error) {
	return s.postRepo.UpdatePost(ctx, models.Post{
		ID:     id,
		Title:  title,
		Text:   text,
		Author: author,
	})
}

func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.postRepo.DeletePost(ctx, id)
}
