// Package server wires the HTTP handlers into a fiber application.
package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"dungeon-master/internal/config"
	"dungeon-master/internal/handler"
	"dungeon-master/internal/service"
)

// Server wraps the fiber app with application dependencies.
type Server struct {
	app *fiber.App
	cfg *config.Config
}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Config      *config.Config
	Characters  *service.CharacterService
	Progression *service.ProgressionService
	Sessions    *service.SessionService
	Inventory   *service.InventoryService
	Dice        *service.DiceService
	Adventures  *service.AdventureService
	GameState   *service.GameStateService
	// HealthCheck pings backing storage. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// New creates the fiber app and registers middleware and routes.
func New(deps *Dependencies) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "dungeon-master",
		ReadTimeout:           deps.Config.Server.ReadTimeout,
		WriteTimeout:          deps.Config.Server.WriteTimeout,
		ErrorHandler:          handler.ErrorHandler,
		DisableStartupMessage: true,
	})

	s := &Server{app: app, cfg: deps.Config}
	s.registerMiddleware()
	s.registerHandlers(deps)
	return s
}

func (s *Server) registerMiddleware() {
	s.app.Use(RecoveryMiddleware())
	s.app.Use(RequestIDMiddleware())
	s.app.Use(LoggingMiddleware())
}

func (s *Server) registerHandlers(deps *Dependencies) {
	s.app.Get("/healthz", healthz(deps.HealthCheck))

	api := s.app.Group("/api")
	handler.NewCharacterHandler(deps.Characters).Register(api)
	handler.NewProgressionHandler(deps.Progression).Register(api)
	handler.NewInventoryHandler(deps.Inventory).Register(api)
	handler.NewSessionHandler(deps.Sessions, deps.Dice).Register(api)
	handler.NewDMHandler(deps.Adventures, deps.GameState).Register(api)
}

func healthz(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if check != nil {
			if err := check(c.UserContext()); err != nil {
				log.Warn().Err(err).Msg("Health check failed")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address. It blocks until the server stops.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	log.Info().Str("addr", addr).Msg("Starting HTTP server...")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping HTTP server...")
	return s.app.ShutdownWithContext(ctx)
}
