package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"pdfqa/internal/adapter/blobstore"
	"pdfqa/internal/adapter/indexstore"
	"pdfqa/internal/adapter/openai"
	"pdfqa/internal/adapter/repository/sqldb"
	"pdfqa/internal/delivery/http/handler"
	"pdfqa/internal/usecase/document"
	"pdfqa/internal/usecase/qa"
	"pdfqa/internal/worker"
	"pdfqa/pkg/config"
	"pdfqa/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// connect to database and apply schema
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := sqldb.Migrate(db, database.Driver(cfg.DatabaseURL)); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("connected to database")

	// initialize openai clients once; they are shared by ingestion and QA
	embeddingClient := openai.NewEmbeddingClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbeddingModel)
	chatClient := openai.NewChatClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIChatModel)

	// initialize storage
	blobs, err := blobstore.New(cfg.DocumentsDir())
	if err != nil {
		log.Fatalf("failed to initialize blob store: %v", err)
	}
	indexes, err := indexstore.New(cfg.IndicesDir())
	if err != nil {
		log.Fatalf("failed to initialize index store: %v", err)
	}

	// initialize repository and usecases
	docRepo := sqldb.NewDocumentRepository(db)
	indexer := document.NewIndexer(embeddingClient, indexes, cfg.ChunkSize, cfg.ChunkOverlap)

	pool := worker.NewPool(cfg.IndexWorkers)
	defer pool.Close()

	docUsecase := document.NewDocumentUsecase(docRepo, blobs, indexes, indexer, pool, cfg.MaxUploadSize)
	qaUsecase := qa.NewQAUsecase(docRepo, indexes, embeddingClient, chatClient, cfg.TopKResults)

	// initialize handlers
	docHandler := handler.NewDocumentHandler(docUsecase)
	questionHandler := handler.NewQuestionHandler(qaUsecase)

	// initialize fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadSize) + 1024*1024,
	})

	app.Use(fiberrecover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// health check
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to PDF QA API", "status": "ok"})
	})

	// document routes
	api := app.Group("/api")
	api.Post("/documents/upload", docHandler.Upload)
	api.Get("/documents", docHandler.List)
	api.Get("/documents/:id", docHandler.GetByID)
	api.Delete("/documents/:id", docHandler.Delete)
	api.Post("/documents/:id/ask", questionHandler.Ask)

	log.Printf("server starting on port %d", cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
