package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelinsk/authgate/internal/db"
	"github.com/avelinsk/authgate/internal/handlers"
	"github.com/avelinsk/authgate/internal/logger"
	"github.com/avelinsk/authgate/internal/repository/postgres"
	"github.com/avelinsk/authgate/internal/service/auth"
	"github.com/avelinsk/authgate/internal/service/auth/tokensigner"
	"github.com/avelinsk/authgate/internal/service/post"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if c.SecretKey == "" {
		return nil, errors.New("secret key must be set, generate one with cmd/gensecret")
	}

	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	signer, err := tokensigner.New(tokensigner.Config{
		SecretKey: c.SecretKey,
		AccessTTL: c.AccessTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token signer. Err: %w", err)
	}

	authService, err := auth.NewService(
		auth.Config{RefreshTokenTTL: c.RefreshTokenTTL},
		signer,
		storage,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	postService := post.NewService(storage.Post())

	mux := handlers.NewRouter(authService, postService, signer, storage.User(), l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
