package main

import (
	"context"

	"github.com/PaulBabatuyi/privtalk/internal/auth"
	"github.com/PaulBabatuyi/privtalk/internal/chat"
	"github.com/PaulBabatuyi/privtalk/internal/config"
	"github.com/PaulBabatuyi/privtalk/internal/data"
	"github.com/PaulBabatuyi/privtalk/internal/middleware"
	"github.com/PaulBabatuyi/privtalk/internal/realtime"
)

// userAccounts is the slice of the users store the auth handlers need.
// Narrowed to an interface so handler tests can use fakes.
type userAccounts interface {
	CreateUser(ctx context.Context, email, fullName, hashedPassword string) (*data.User, error)
	GetUserByEmail(ctx context.Context, email string) (*data.User, error)
}

// Server holds the HTTP surface's dependencies: the messaging service,
// the account store for auth, token management and the realtime layer.
type Server struct {
	cfg      *config.Config
	accounts userAccounts
	svc      *chat.Service
	auth     *auth.JWTManager
	registry *realtime.Registry
	dispatch *realtime.Dispatcher
	limiter  *middleware.LimiterStore
}

// newServer returns a ready-to-use Server wired with its dependencies.
func newServer(cfg *config.Config, accounts userAccounts, svc *chat.Service, authMgr *auth.JWTManager, registry *realtime.Registry, dispatch *realtime.Dispatcher, limiter *middleware.LimiterStore) *Server {
	return &Server{
		cfg:      cfg,
		accounts: accounts,
		svc:      svc,
		auth:     authMgr,
		registry: registry,
		dispatch: dispatch,
		limiter:  limiter,
	}
}
