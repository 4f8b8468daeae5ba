// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"pulse/internal/bootstrap"
	"pulse/internal/config"
	"pulse/internal/featureflags"
	"pulse/internal/fixtures"
	"pulse/internal/middleware"
	"pulse/internal/notifications"
	"pulse/internal/repository"
	"pulse/internal/service"
	"pulse/internal/view"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config              *config.Config
	redis               *redis.Client
	promMiddleware      *fiberprometheus.FiberPrometheus
	shutdownCtx         context.Context
	shutdownFn          context.CancelFunc
	repos               *repository.Set
	notifier            *notifications.Notifier
	hub                 *notifications.Hub
	events              *notifications.Publisher
	featureFlags        *featureflags.Manager
	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	messageService      *service.MessageService
	notificationService *service.NotificationService
	pages               *view.Pages
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, fmt.Errorf("runtime initialization failed: %w", err)
	}
	return NewServerWithDeps(cfg, rt.Dataset, rt.Redis)
}

// NewServerWithDeps creates a Server using an already-loaded dataset and an
// optional Redis client. Tests use it with zero latencies and miniredis.
func NewServerWithDeps(cfg *config.Config, ds *fixtures.Dataset, redisClient *redis.Client) (*Server, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}

	repos := repository.NewSet(ds, cfg.Latencies())
	flags := featureflags.NewManager(cfg.FeatureFlags)

	server := &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("pulse-api"),
		repos:          repos,
		featureFlags:   flags,
		hub:            notifications.NewHub(),
		notifier:       notifications.NewNotifier(redisClient),
	}
	server.shutdownCtx, server.shutdownFn = context.WithCancel(context.Background())
	server.events = notifications.NewPublisher(server.hub, server.notifier)

	server.userService = service.NewUserService(repos.Users, cfg.CurrentUserID)
	server.postService = service.NewPostService(repos.Posts, repos.Users)
	server.commentService = service.NewCommentService(repos.Comments, repos.Posts, repos.Users)
	server.messageService = service.NewMessageService(repos.Messages, repos.Users)
	server.notificationService = service.NewNotificationService(repos.Notifications, repos.Users)
	server.pages = &view.Pages{
		Users:           server.userService,
		Posts:           server.postService,
		Comments:        server.commentService,
		MessageSvc:      server.messageService,
		NotificationSvc: server.notificationService,
		Flags:           flags,
	}

	// Events from every instance reach local connections through Redis.
	if err := server.hub.StartWiring(server.shutdownCtx, server.notifier); err != nil {
		server.shutdownFn()
		return nil, fmt.Errorf("subscribe to realtime events: %w", err)
	}

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate request, trace and correlation ids
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Correlation-ID, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		ExposeHeaders:    "X-Correlation-ID, X-Trace-ID",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Acting user from bearer token, or the configured current user
	app.Use(middleware.Identity(s.config.JWTSecret, s.config.CurrentUserID))

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/features", s.GetFeatures)

	// User routes
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Post("/", s.CreateUser)
	users.Get("/me", s.GetMyProfile)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/posts", s.GetUserPosts)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Post("/:id/follow/toggle", s.ToggleFollow)
	users.Get("/:id", s.GetUser)
	users.Patch("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	// Post routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/like/toggle", s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", s.GetPost)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Comment routes
	comments := api.Group("/comments")
	comments.Get("/:id", s.GetComment)
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Message routes
	conversations := api.Group("/conversations")
	conversations.Get("/", s.GetConversations)
	conversations.Post("/", s.CreateConversation)
	conversations.Get("/:id/messages", s.GetMessages)
	conversations.Post("/:id/messages", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	conversations.Post("/:id/read", s.MarkConversationRead)
	conversations.Get("/:id", s.GetConversation)

	messages := api.Group("/messages")
	messages.Post("/:id/read", s.MarkMessageRead)
	messages.Delete("/:id", s.DeleteMessage)

	// Notification routes
	notifs := api.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Post("/", s.CreateNotification)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)
	notifs.Delete("/:id", s.DeleteNotification)

	// Realtime event stream
	api.Get("/ws", s.WebsocketHandler())

	// Unknown API routes get a JSON error rather than the 404 page
	api.Use(s.APINotFound)

	// Pages
	app.Get("/", s.HomePage)
	app.Get("/profile", s.ProfilePage)
	app.Get("/profile/:userId", s.ProfilePage)
	app.Get("/messages", s.MessagesPage)
	app.Get("/notifications", s.NotificationsPage)
	app.Get("/post/:postId", s.PostDetailPage)
	app.Use(s.NotFoundPage)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness check requests. The in-memory store is
// always ready; Redis is optional, so its absence only changes the report.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, err := s.repos.Users.List(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store":      storeStatus,
			"redis":      redisStatus,
			"websockets": s.hub.ConnectionCount(),
		},
		"time": time.Now(),
	})
}

// NewApp returns a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Pulse API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown stops the realtime subscriber and closes websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	return s.hub.Shutdown(ctx)
}
