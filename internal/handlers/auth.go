package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avelinsk/authgate/internal/apperrors"
	"github.com/avelinsk/authgate/internal/handlers/render"
	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/models"
	"github.com/avelinsk/authgate/internal/service/auth"
)

const birthDateLayout = "2006-01-02"

type authService interface {
	// Register new user
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	Register(ctx context.Context, params auth.RegisterParams) (models.User, error)

	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials on any failure,
	// identical for unknown username and wrong password
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh trades access + refresh tokens for a new rotated pair
	Refresh(ctx context.Context, access string, refresh string) (models.TokenPair, error)
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, logger: l}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh-token", h.refresh)

	return mux
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username  string `json:"username" validate:"required,min=2,max=50"`
		Password  string `json:"password" validate:"required,min=8"`
		Role      string `json:"role" validate:"omitempty,max=50"`
		BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	}
	type RegisterSuccessResponse struct {
		Message string `json:"message"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	var birthDate *time.Time
	if data.BirthDate != "" {
		// layout already validated
		parsed, _ := time.Parse(birthDateLayout, data.BirthDate)
		birthDate = &parsed
	}

	_, err = h.authService.Register(r.Context(), auth.RegisterParams{
		Username:  data.Username,
		Password:  data.Password,
		Role:      data.Role,
		BirthDate: birthDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
		default:
			h.logger.Error("registration failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RegisterSuccessResponse{Message: "User registered successfully"})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			// One body for unknown username and wrong password
			render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			h.logger.Error("login failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshRequest struct {
		AccessToken  string `json:"access_token" validate:"required"`
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	data, err := render.BindAndValidate[RefreshRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.authService.Refresh(r.Context(), data.AccessToken, data.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials),
			errors.Is(err, apperrors.ErrSessionNotFound),
			errors.Is(err, apperrors.ErrRefreshTokenExpired):
			// Undifferentiated on purpose: bad signature, stale refresh
			// token and missing session all look the same to the caller
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		default:
			h.logger.Error("token refresh failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, tokenPairResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
	})
}
