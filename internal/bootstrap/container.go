package bootstrap

import (
	"context"
	"log"
	"os"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/controller"
	"ai-assistant-be/internal/handler"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/pkg/mailer"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/service"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/assistant"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/live"
	"ai-assistant-be/pkg/llm/factory"
	"ai-assistant-be/pkg/reminder"
	"ai-assistant-be/pkg/search"
	"ai-assistant-be/pkg/state"

	pktNats "ai-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	SettingsController  controller.ISettingsController
	CalendarController  controller.ICalendarController
	DocumentController  controller.IDocumentController
	HistoryController   controller.IHistoryController
	ReminderController  controller.IReminderController
	SearchController    controller.ISearchController

	// Background workers (run by main.go)
	WebSocketHub        *websocket.Hub
	ReminderScheduler   *reminder.Scheduler
	NotificationService *service.NotificationService
	Registry            *assistant.Registry

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler

	Logger  logger.ILogger
	closers []func()
}

// NewContainer wires every component. db may be nil when STATE_BACKEND=memory.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	loc := cfg.Location()
	c := &Container{Logger: sysLogger}

	var backend state.Backend
	if db != nil {
		backend = state.NewGormBackend(unitofwork.NewRepositoryFactory(db))
		log.Printf("[INFO] Using State Backend: POSTGRES")
	} else {
		backend = state.NewMemoryBackend()
		log.Printf("[INFO] Using State Backend: MEMORY")
	}

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
		)
	} else {
		log.Printf("[INFO] SMTP_HOST not set, reminder e-mails disabled")
	}

	// 2. Event Bus
	var (
		publisher  events.Publisher
		subscriber events.Subscriber
	)
	if cfg.App.EventBus == "nats" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to NATS Subscriber: %v", err)
		}
		publisher, subscriber = natsPub, natsSub
		c.closers = append(c.closers, natsPub.Close, natsSub.Close)
		log.Printf("[INFO] Using Event Bus: NATS (%s)", cfg.App.NatsURL)
	} else {
		bus := events.NewLocalBus(watermill.NewStdLogger(false, false))
		publisher, subscriber = bus, bus
		c.closers = append(c.closers, func() { _ = bus.Close() })
		log.Printf("[INFO] Using Event Bus: LOCAL")
	}

	// 3. Redis (push fanout and the reminder fired set), optional
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. Running single instance", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// 4. WebSocket Hub
	instanceId, _ := os.Hostname()
	instanceId += "-" + uuid.NewString()[:8]
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	c.WebSocketHub = websocket.NewHub(rdb, instanceId, wsLogger)

	// 5. Generative clients and search
	clients := factory.NewClientPool(cfg.Ai.LLMProvider, cfg.Ai.FastModel, cfg.Ai.OllamaBaseURL)
	log.Printf("[INFO] Using LLM Provider: %s (fast=%s, strong=%s)", cfg.Ai.LLMProvider, cfg.Ai.FastModel, cfg.Ai.StrongModel)

	var searchService *search.Service
	if cfg.Search.SerpApiKey != "" {
		provider := search.NewSerpApi(cfg.Search.SerpApiKey, search.WithBaseURL(cfg.Search.SerpApiBaseURL))
		searchService = search.NewService(provider, sysLogger)
	} else {
		log.Printf("[INFO] SERPAPI_API_KEY not set, deep search disabled")
	}

	// 6. Conversation orchestrators, one per active user
	c.Registry = assistant.NewRegistry(ctx, backend, assistant.Dependencies{
		Clients:      clients,
		Search:       searchService,
		Notifier:     c.WebSocketHub,
		Publisher:    publisher,
		Logger:       sysLogger,
		Location:     loc,
		FastModel:    cfg.Ai.FastModel,
		StrongModel:  cfg.Ai.StrongModel,
		DefaultVoice: cfg.Live.DefaultVoice,
	}, func() live.Channel {
		return live.NewWebSocketChannel(cfg.Live.GatewayURL, sysLogger)
	})

	// 7. Reminders
	var fired reminder.FiredSet = reminder.NewMemoryFiredSet()
	if rdb != nil {
		fired = reminder.NewRedisFiredSet(rdb)
	}
	c.ReminderScheduler = reminder.NewScheduler(backend, fired, sysLogger, loc, cfg.Reminder.Interval,
		reminder.WithPublisher(publisher))

	// 8. Notification System (Hub implements NotificationDelivery)
	c.NotificationService = service.NewNotificationService(backend, subscriber, c.WebSocketHub, emailService, wsLogger)
	c.NotificationHandler = handler.NewNotificationHandler(c.WebSocketHub, wsLogger)

	// 9. Services
	assistantService := service.NewAssistantService(c.Registry, backend)
	settingsService := service.NewSettingsService(backend)
	calendarService := service.NewCalendarService(backend)
	documentService := service.NewDocumentService(backend)
	historyService := service.NewHistoryService(backend)
	reminderService := service.NewReminderService(backend)
	searchSvc := service.NewSearchService(backend, searchService, clients, cfg.Ai.FastModel)

	// 10. Controllers
	c.AssistantController = controller.NewAssistantController(assistantService)
	c.SettingsController = controller.NewSettingsController(settingsService)
	c.CalendarController = controller.NewCalendarController(calendarService)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.HistoryController = controller.NewHistoryController(historyService)
	c.ReminderController = controller.NewReminderController(reminderService)
	c.SearchController = controller.NewSearchController(searchSvc)

	return c
}

// Close releases orchestrators, the bus and Redis in reverse order of creation.
func (c *Container) Close() {
	c.Registry.Close()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
