package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"jwtauthenticator/internal/config"
	"jwtauthenticator/internal/crypto"
	"jwtauthenticator/internal/handler"
	"jwtauthenticator/internal/middleware"
	"jwtauthenticator/internal/repository"
	"jwtauthenticator/internal/service"
	"jwtauthenticator/internal/token"
)

type Server struct {
	router *gin.Engine
	log    *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, log *zap.Logger) *Server {
	return newServer(repository.NewAuthRepository(db, log), cfg, log)
}

func newServer(authRepo repository.AuthRepository, cfg *config.Config, log *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		log:    log,
	}

	// Every component is constructed here and handed down explicitly; there
	// is no package-level hasher or token manager.
	hasher := crypto.NewPasswordHasher(0)
	tokens := token.NewManager(
		[]byte(cfg.JWT.Secret),
		cfg.JWT.AccessTTL.Std(),
		cfg.JWT.RefreshTTL.Std(),
	)
	cookies := token.NewCookieWriter(cfg.Cookie.AccessPath, cfg.Cookie.RefreshPath, cfg.Cookie.Secure)

	authService := service.NewAuthService(authRepo, hasher, tokens, log)
	authHandler := handler.NewAuthHandler(authService, cookies, log)

	s.setupRoutes(cfg, tokens, authHandler)

	return s
}

func (s *Server) setupRoutes(cfg *config.Config, tokens *token.Manager, authHandler handler.AuthHandler) {
	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	requireAccess := middleware.RequireAuth(tokens, middleware.RequireAccessToken, s.log)
	requireFresh := middleware.RequireAuth(tokens, middleware.RequireFreshAccessToken, s.log)
	requireRefresh := middleware.RequireAuth(tokens, middleware.RequireRefreshToken, s.log)

	authGroup := s.router.Group(cfg.Auth.BasePath)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/fresh_login", authHandler.FreshLogin)
		authGroup.POST("/refresh", requireRefresh, authHandler.Refresh)
		authGroup.GET("/validate_token", requireAccess, authHandler.ValidateToken)
		authGroup.POST("/validate_token", requireAccess, authHandler.ValidateToken)
		authGroup.GET("/validate_fresh_token", requireFresh, authHandler.ValidateFreshToken)
		authGroup.POST("/validate_fresh_token", requireFresh, authHandler.ValidateFreshToken)
		authGroup.POST("/logout", authHandler.Logout)
	}

	s.router.GET("/users", requireAccess, authHandler.ListUsers)
}

// Handler exposes the router, mainly for tests driving the server with
// httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) {
	s.log.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.log.Fatal("Server failed to start", zap.Error(err))
	}
}
