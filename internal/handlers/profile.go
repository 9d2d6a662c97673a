package handlers

import (
	"net/http"

	"github.com/avelinsk/authgate/internal/handlers/claimsctx"
	"github.com/avelinsk/authgate/internal/handlers/render"
	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/repository"
)

type ProfileHandler struct {
	userRepo repository.UserRepo
	logger   logger.Logger
}

func NewProfile(userRepo repository.UserRepo, l logger.Logger) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo, logger: l}
}

func (h *ProfileHandler) profile(w http.ResponseWriter, r *http.Request) {
	type ProfileResponse struct {
		Username  string `json:"username"`
		Role      string `json:"role"`
		BirthDate string `json:"birth_date,omitempty"`
	}

	claims, ok := claimsctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userRepo.GetUserByUsername(r.Context(), claims.Username)
	if err != nil {
		h.logger.Error("profile lookup failed", "error", err.Error())
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Password hash stays server side, always
	response := ProfileResponse{
		Username: user.Username,
		Role:     user.Role,
	}
	if user.BirthDate != nil {
		response.BirthDate = user.BirthDate.Format(birthDateLayout)
	}

	render.JSON(w, response)
}

func handleAdmin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, map[string]string{"message": "Admin content"})
	})
}
