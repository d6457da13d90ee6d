package http

import (
	"github.com/blockwarden/backend/internal/config"
	"github.com/blockwarden/backend/internal/core/ports"
	"github.com/blockwarden/backend/internal/core/services"
	"github.com/blockwarden/backend/internal/infrastructure/db"
	"github.com/blockwarden/backend/internal/infrastructure/logger"
	"github.com/blockwarden/backend/internal/transport/http/handlers"
	"github.com/blockwarden/backend/internal/transport/http/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) {
	// Initialize repositories
	commandRepo := db.NewCommandRepository(cfg.DB, cfg.Logger)
	nodeLogRepo := db.NewNodeLogRepository(cfg.DB, cfg.Logger)
	nodeRepo := db.NewNodeRepository(cfg.DB, cfg.Logger)
	hostRepo := db.NewHostRepository(cfg.DB, cfg.Logger)
	chainRepo := db.NewBlockchainRepository(cfg.DB, cfg.Logger)
	userRepo := db.NewUserRepository(cfg.DB, cfg.Logger)
	orgRepo := db.NewOrganizationRepository(cfg.DB, cfg.Logger)
	uow := db.NewUnitOfWork(cfg.DB, cfg.Logger)

	// Initialize services
	broadcast := services.NewBroadcaster()

	authService := services.NewAuthService(services.AuthServiceConfig{
		UserRepo: userRepo,
		OrgRepo:  orgRepo,
		Logger:   cfg.Logger,
		Auth:     cfg.Config.Auth,
	})

	commandService := services.NewCommandService(services.CommandServiceConfig{
		UnitOfWork:  uow,
		CommandRepo: commandRepo,
		NodeRepo:    nodeRepo,
		HostRepo:    hostRepo,
		Broadcast:   broadcast,
		Logger:      cfg.Logger,
	})

	nodeService := services.NewNodeService(services.NodeServiceConfig{
		NodeRepo:       nodeRepo,
		HostRepo:       hostRepo,
		BlockchainRepo: chainRepo,
		NodeLogRepo:    nodeLogRepo,
		Commands:       commandService,
		Logger:         cfg.Logger,
	})

	hostService := services.NewHostService(services.HostServiceConfig{
		HostRepo: hostRepo,
		Auth:     authService,
		Logger:   cfg.Logger,
	})

	hostPolicy := services.NewHostACLPolicy(authService, cfg.Logger)
	userPolicy := services.NewUserACLPolicy(authService, nodeRepo, cfg.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Logger)
	commandHandler := handlers.NewCommandHandler(commandService, cfg.Logger)
	nodeHandler := handlers.NewNodeHandler(nodeService, cfg.Logger)
	hostHandler := handlers.NewHostHandler(hostService, cfg.Logger)
	chainHandler := handlers.NewBlockchainHandler(chainRepo, cfg.Logger)
	mqttHandler := handlers.NewMqttHandler(hostPolicy, userPolicy, cfg.Logger)
	eventsHandler := handlers.NewEventsHandler(broadcast, cfg.Logger)

	// Public surface
	api := app.Group("/api/v1")
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Broker webhooks: the broker itself authenticates clients through us,
	// so these routes carry their credential in the request body.
	mqtt := app.Group("/mqtt")
	mqtt.Post("/auth", mqttHandler.Auth)
	mqtt.Post("/acl", mqttHandler.ACL)

	// UI surface: user tokens only
	ui := api.Group("", middleware.BearerAuth(authService), middleware.RequireKind(ports.PrincipalUser))
	ui.Post("/hosts", hostHandler.ProvisionHost)
	ui.Get("/hosts", hostHandler.GetHosts)
	ui.Get("/hosts/:id", hostHandler.GetHost)
	ui.Delete("/hosts/:id", hostHandler.DeleteHost)

	ui.Post("/blockchains", chainHandler.CreateBlockchain)
	ui.Get("/blockchains", chainHandler.GetBlockchains)
	ui.Get("/blockchains/:id", chainHandler.GetBlockchain)

	ui.Post("/nodes", nodeHandler.CreateNode)
	ui.Get("/nodes", nodeHandler.GetNodes)
	ui.Get("/nodes/:id", nodeHandler.GetNode)
	ui.Delete("/nodes/:id", nodeHandler.DeleteNode)
	ui.Post("/nodes/:id/start", nodeHandler.StartNode)
	ui.Post("/nodes/:id/stop", nodeHandler.StopNode)
	ui.Post("/nodes/:id/restart", nodeHandler.RestartNode)
	ui.Post("/nodes/:id/upgrade", nodeHandler.UpgradeNode)
	ui.Get("/nodes/:id/logs", nodeHandler.GetNodeLogs)

	ui.Post("/commands", commandHandler.CreateCommand)
	ui.Get("/commands/:id", commandHandler.GetCommand)

	// Agent surface: host tokens only; agents pull their queue and report
	// outcomes here.
	agent := api.Group("/agent", middleware.BearerAuth(authService), middleware.RequireKind(ports.PrincipalHost))
	agent.Get("/hosts/:host_id/commands", commandHandler.PendingCommands)
	agent.Put("/hosts/:host_id/status", hostHandler.UpdateHostStatus)
	agent.Post("/commands/:id/ack", commandHandler.AckCommand)
	agent.Get("/commands/:id", commandHandler.GetCommand)

	// Live command event stream for the UI
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(eventsHandler.Handle))
}
