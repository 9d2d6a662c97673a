package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/handlers/render"
	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/models"
)

type postService interface {
	Create(ctx context.Context, title string, text string, author string) (models.Post, error)
	Get(ctx context.Context, id uuid.UUID) (models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	Update(ctx context.Context, id uuid.UUID, title string, text string, author string) (models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type PostHandler struct {
	postService postService
	logger      logger.Logger
}

func NewPost(posts postService, l logger.Logger) *PostHandler {
	return &PostHandler{postService: posts, logger: l}
}

type postRequest struct {
	Title  string `json:"title" validate:"required,max=200"`
	Text   string `json:"text" validate:"required"`
	Author string `json:"author" validate:"required,max=100"`
}

type postResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
}

func toPostResponse(p models.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Title:     p.Title,
		Text:      p.Text,
		Author:    p.Author,
	}
}

func (h *PostHandler) create(w http.ResponseWriter, r *http.Request) {
	data, err := render.BindAndValidate[postRequest](w, r)
	if err != nil {
		return
	}

	post, err := h.postService.Create(r.Context(), data.Title, data.Text, data.Author)
	if err != nil {
		h.logger.Error("post creation failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, toPostResponse(post))
}

func (h *PostHandler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		h.logger.Error("post listing failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, toPostResponse(p))
	}

	render.JSON(w, response)
}

func (h *PostHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		h.renderPostError(w, err)
		return
	}

	render.JSON(w, toPostResponse(post))
}

func (h *PostHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	data, err := render.BindAndValidate[postRequest](w, r)
	if err != nil {
		return
	}

	post, err := h.postService.Update(r.Context(), id, data.Title, data.Text, data.Author)
	if err != nil {
		h.renderPostError(w, err)
		return
	}

	render.JSON(w, toPostResponse(post))
}

func (h *PostHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), id); err != nil {
		h.renderPostError(w, err)
		return
	}

	render.JSON(w, map[string]string{"message": "Post deleted"})
}

func (h *PostHandler) renderPostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPostNotFound):
		render.ServiceError(w, "Post not found", http.StatusNotFound)
	default:
		h.logger.Error("post operation failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func postID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid post id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
