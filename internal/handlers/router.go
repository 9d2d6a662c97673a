package handlers

import (
	"net/http"

	"github.com/avelinsk/authgate/internal/handlers/middleware"
	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/repository"
	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	postService postService,
	signer *tokensigner.Signer,
	userRepo repository.UserRepo,
	l logger.Logger,
) http.Handler {
	authHandler := NewAuth(authService, l)
	profileHandler := NewProfile(userRepo, l)
	postHandler := NewPost(postService, l)

	withAuth := middleware.AuthMiddleware(signer)
	adminOnly := middleware.RequireRole("admin")

	root := http.NewServeMux()

	root.Handle("/auth/", http.StripPrefix("/auth", authHandler.Handler()))

	root.Handle("GET /profile", withAuth(http.HandlerFunc(profileHandler.profile)))
	root.Handle("GET /admin", withAuth(adminOnly(handleAdmin())))

	root.Handle("POST /posts", http.HandlerFunc(postHandler.create))
	root.Handle("GET /posts", http.HandlerFunc(postHandler.list))
	root.Handle("GET /posts/{id}", http.HandlerFunc(postHandler.get))
	root.Handle("PUT /posts/{id}", http.HandlerFunc(postHandler.update))
	root.Handle("DELETE /posts/{id}", http.HandlerFunc(postHandler.delete))

	return chain(root,
		middleware.LoggerMiddleware(l),
	)
}
