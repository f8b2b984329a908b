package bootstrap

import (
	"net/http"

	"evalyze-client/internal/config"
	"evalyze-client/internal/pkg/logger"
	"evalyze-client/internal/service"
	"evalyze-client/pkg/api"
	"evalyze-client/pkg/chat"
	"evalyze-client/pkg/credentials"
	"evalyze-client/pkg/events"
	"evalyze-client/pkg/tokenstore"
)

type Container struct {
	Log         logger.ILogger
	Tokens      *tokenstore.Store
	Credentials *credentials.Store
	Bus         *events.Bus
	API         *api.Client

	// Services
	Auth       service.IAuthService
	Interviews service.IInterviewService
	Analysis   service.IAnalysisService
	Vacancies  service.IVacancyService

	Chat *chat.Controller
}

func NewContainer(cfg *config.Config) *Container {
	return NewContainerWithTransport(cfg, http.DefaultTransport)
}

// NewContainerWithTransport builds the full dependency graph on top of the
// given base transport. Tests pass an in-process transport bound to the stub
// backend; production uses http.DefaultTransport.
func NewContainerWithTransport(cfg *config.Config, base http.RoundTripper) *Container {
	// 1. Core facades. Logs go to file only so the terminal UI stays clean.
	sysLogger := logger.NewFileOnlyLogger(cfg.App.LogFilePath)
	tokens := tokenstore.New()
	creds := credentials.NewStore(cfg.Credentials.FilePath, cfg.Credentials.SessionTTL)

	// 2. Event bus
	bus := events.NewBus()

	// 3. HTTP layer. The auth transport intercepts every request; the
	// refresher is wired in after the auth service exists.
	transport := api.NewAuthTransport(base, tokens)
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   cfg.API.Timeout,
	}
	apiClient := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(httpClient),
		api.WithLogger(sysLogger),
	)

	// 4. Services
	authService := service.NewAuthService(apiClient, tokens, creds, bus, sysLogger)
	transport.SetRefresher(authService)

	interviewService := service.NewInterviewService(apiClient, sysLogger)
	analysisService := service.NewAnalysisService(apiClient, sysLogger)
	vacancyService := service.NewVacancyService(apiClient, sysLogger)

	// 5. Chat controller
	chatController := chat.NewController(interviewService, analysisService,
		chat.WithPollInterval(cfg.Chat.PollInterval),
		chat.WithLogger(sysLogger),
		chat.WithBus(bus),
	)

	return &Container{
		Log:         sysLogger,
		Tokens:      tokens,
		Credentials: creds,
		Bus:         bus,
		API:         apiClient,
		Auth:        authService,
		Interviews:  interviewService,
		Analysis:    analysisService,
		Vacancies:   vacancyService,
		Chat:        chatController,
	}
}

// Close releases background resources held by the container.
func (c *Container) Close() {
	c.Chat.Close()
	_ = c.Bus.Close()
	_ = c.Log.Sync()
}
