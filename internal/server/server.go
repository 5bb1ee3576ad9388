package server

import (
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/auth"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/config"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/live"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/results"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Live   *live.Manager
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	archive := results.NewService(s.DB, s.Stream)
	s.Live = live.NewManager(s.Stream, archive)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	live.RegisterRoutes(s.App.Group("/live"), s.Live, jwtMiddleware)
	results.RegisterRoutes(s.App.Group("/runs"), archive, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
