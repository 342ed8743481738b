package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"jobfit/analyzer/internal/config"
	"jobfit/analyzer/internal/guardrails"
	"jobfit/analyzer/internal/handlers"
	"jobfit/analyzer/internal/logger"
	"jobfit/analyzer/internal/repositories"
	"jobfit/analyzer/internal/security"
	"jobfit/analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	zapLogger, err := logger.New(cfg.Server.Env != "development", cfg.Server.Debug)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Security event sinks
	sinks := []security.Sink{}

	fileSink, err := security.NewFileSink(cfg.Security.LogPath)
	if err != nil {
		log.Fatalf("❌ Failed to open security log: %v", err)
	}
	sinks = append(sinks, fileSink)

	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg)
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		eventRepo := repositories.NewSecurityEventRepository(db)
		sinks = append(sinks, repositories.NewDatabaseSink(eventRepo))
	}

	emitter := security.NewEmitter(sinks, cfg.Security.QueueSize, cfg.Security.Workers, zapLogger)
	emitter.Start()
	log.Println("✅ Security event emitter started")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}

	classifierService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.ClassifierModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini classifier: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Load portfolio content
	pdfParser := services.NewPDFParserService()
	portfolioService := services.NewPortfolioService(
		cfg.Portfolio.Dir,
		cfg.Portfolio.MaxContextChars,
		pdfParser,
		zapLogger,
	)
	if err := portfolioService.Reload(); err != nil {
		log.Fatalf("❌ Failed to load portfolio: %v", err)
	}
	log.Println("✅ Portfolio loaded successfully")

	// Initialize guardrails
	guardCfg := guardrails.Config{
		BlockThreshold: cfg.Guardrails.BlockThreshold,
		CheckTimeout:   cfg.Guardrails.CheckTimeout,
		AllowedTopics:  cfg.Guardrails.AllowedTopics,
	}
	for _, name := range cfg.Guardrails.Enabled {
		kind := guardrails.CheckKind(name)
		if !guardrails.ValidCheckKind(kind) {
			log.Fatalf("❌ Unknown guardrail check in config: %s", name)
		}
		guardCfg.Enabled = append(guardCfg.Enabled, kind)
	}

	classifier := guardrails.NewLLMClassifier(classifierService, cfg.Guardrails.AllowedTopics)
	validator := guardrails.NewValidator(guardCfg, classifier, emitter, zapLogger)
	log.Println("✅ Guardrails initialized")

	// Initialize analyzer
	analyzerService := services.NewAnalyzer(
		validator,
		geminiService,
		portfolioService,
		cfg.Analysis.Timeout,
		cfg.Analysis.ExpectedChars,
		zapLogger,
	)
	log.Println("✅ Analyzer initialized")

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(analyzerService, zapLogger)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:     "Job Match Analyzer API",
		ReadTimeout: 30 * time.Second,
		// Write timeout must outlive the longest analysis stream.
		WriteTimeout: cfg.Analysis.Timeout + 30*time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/portfolio", portfolioHandler.HandleGetPortfolio)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Job Match Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"GET /api/v1/portfolio",
				"GET /api/v1/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		emitter.Stop()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
