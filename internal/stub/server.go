package stub

import (
	"evalyze-client/internal/config"
	"evalyze-client/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app   *fiber.App
	cfg   config.StubConfig
	state *state
	log   logger.ILogger
}

func New(cfg config.StubConfig, log logger.ILogger) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	s := &Server{
		app:   app,
		cfg:   cfg,
		state: newState(),
		log:   log,
	}
	s.registerRoutes()
	return s
}

// App exposes the fiber app so tests can drive the stub in-process through
// app.Test without binding a port.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.log.Info("stub", "stub backend listening", map[string]interface{}{"port": s.cfg.Port})
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", s.login)
	auth.Post("/refresh", s.refresh)
	auth.Post("/register/candidate", s.registerCandidate)
	auth.Post("/register/company", s.registerCompany)
	auth.Get("/me", s.authRequired, s.me)

	jobs := api.Group("/jobs", s.authRequired)
	jobs.Get("/", s.listVacancies)
	jobs.Post("/", s.createVacancy)
	jobs.Get("/:id", s.getVacancy)
	jobs.Put("/:id", s.updateVacancy)
	jobs.Delete("/:id", s.deleteVacancy)
	jobs.Post("/:id/apply", s.apply)
	jobs.Post("/:id/generate-interview", s.generateInterview)

	sessions := api.Group("/interview-sessions", s.authRequired)
	// Fixed segments must register before the ":id" family.
	sessions.Get("/my-active", s.myActiveSession)
	sessions.Get("/candidates", s.candidates)
	sessions.Get("/ranking", s.ranking)
	sessions.Get("/global-report", s.globalReport)
	sessions.Get("/:id", s.getSession)
	sessions.Post("/:id/start", s.startSession)
	sessions.Post("/:id/send-message", s.sendMessage)
	sessions.Get("/:id/chat-messages", s.chatMessages)
	sessions.Post("/:id/finalize", s.finalize)
	sessions.Get("/:id/report", s.report)
	sessions.Post("/:id/analyze", s.report)
}

// detail is the single-message error shape the client parses.
func detail(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{"detail": message})
}
