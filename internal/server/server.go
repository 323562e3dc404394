// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"discusshub/internal/cache"
	"discusshub/internal/config"
	"discusshub/internal/database"
	"discusshub/internal/middleware"
	"discusshub/internal/models"
	"discusshub/internal/repository"
	"discusshub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Token issuance parameters. Issued and verified tokens must agree on all
// three.
const (
	tokenIssuer   = "discusshub-api"
	tokenAudience = "discusshub-client"
	tokenTTL      = time.Hour
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config        *config.Config
	db            *gorm.DB
	redis         *redis.Client
	feeds         *service.FeedService
	users         *service.UserService
	announcements *service.AnnouncementService
}

// NewServer creates a server instance connected to the configured database
// and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps wires a server from pre-built dependencies. Tests use it
// with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	return &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		feeds:         service.NewFeedService(postRepo, userRepo),
		users:         service.NewUserService(userRepo),
		announcements: service.NewAnnouncementService(announcementRepo),
	}
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	prom := middleware.InitMetrics("discusshub")
	prom.RegisterAt(app, "/metrics")
	app.Use(middleware.MetricsMiddleware(prom))

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Liveness)
	app.Get("/health", s.HealthCheck)

	app.Post("/jwt", s.IssueToken)

	app.Get("/posts", s.GetPosts)
	app.Post("/posts", s.CreatePost)
	// Specific /posts/count route before the generic /posts/:id route.
	app.Get("/posts/count/:email", s.CountPostsByAuthor)
	app.Delete("/posts/:id", s.DeletePost)
	app.Get("/allposts", s.GetAllPosts)
	app.Get("/detailspost/:id", s.GetPostDetail)
	app.Post("/upvote/:id", s.Upvote)
	app.Post("/downvote/:id", s.Downvote)
	app.Post("/comment/:id", s.AddComment)

	app.Get("/announcements", s.GetAnnouncements)
	app.Post("/announcement", s.CreateAnnouncement)

	app.Get("/stats", s.GetStats)

	app.Post("/users", s.CreateUser)
	app.Get("/users", s.AuthRequired(), s.AdminRequired(), s.GetUsers)
	app.Get("/users/admin/:email", s.AuthRequired(), s.CheckAdmin)
	app.Patch("/users/admin/:id", s.AuthRequired(), s.AdminRequired(), s.PromoteUser)
	app.Delete("/users/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteUser)
}

// Liveness handles the root liveness probe.
func (s *Server) Liveness(c *fiber.Ctx) error {
	return c.SendString("discusshub api is running")
}

// HealthCheck reports readiness of the database and Redis.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It verifies the bearer
// token's signature, expiry, issuer and audience, and stores the caller's
// email in the request context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		email, ok := claims["email"].(string)
		if !ok || email == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid email claim"))
		}

		c.Locals("userEmail", email)
		ctx := context.WithValue(c.UserContext(), middleware.UserEmailKey, email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired returns middleware that allows only callers whose stored role
// is admin. It must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, ok := c.Locals("userEmail").(string)
		if !ok || email == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		isAdmin, err := s.users.IsAdmin(c.UserContext(), email)
		if err != nil {
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		}
		if !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "DiscussHub API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown closes the server's database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
