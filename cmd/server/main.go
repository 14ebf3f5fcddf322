package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"document-memory-backend/internal/chunking"
	"document-memory-backend/internal/config"
	"document-memory-backend/internal/database"
	"document-memory-backend/internal/embedding"
	"document-memory-backend/internal/handler"
	"document-memory-backend/internal/mcpserver"
	"document-memory-backend/internal/middleware"
	"document-memory-backend/internal/repository"
	"document-memory-backend/internal/service"
	"document-memory-backend/internal/vectorstore"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Server.GinMode == gin.ReleaseMode {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.Info("Configuration loaded")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// 3. Initialize database connection and schema
	db := database.Connect(cfg)
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// 4. Initialize the vector store and embedder
	vectorStore, err := vectorstore.New(cfg.Qdrant, cfg.Embedding.Dimensions)
	if err != nil {
		logrus.Fatalf("Failed to connect to vector store: %v", err)
	}
	defer vectorStore.Close()

	embedder := embedding.New(cfg.Embedding)

	chunker, err := chunking.NewChunker(cfg.Chunking)
	if err != nil {
		logrus.Fatalf("Failed to initialize chunker: %v", err)
	}

	// 5. Initialize repositories
	userRepo := repository.NewUserRepo(db)
	collectionRepo := repository.NewCollectionRepo(db)
	documentRepo := repository.NewDocumentRepo(db)
	catRepo := repository.NewCATRepo(db)
	patRepo := repository.NewPATRepo(db)

	// 6. Initialize services
	authService := service.NewAuthService(userRepo)
	collectionService := service.NewCollectionService(collectionRepo, vectorStore)
	documentService := service.NewDocumentService(documentRepo, collectionRepo, chunker, embedder, vectorStore, cfg.Search)
	catService := service.NewCATService(catRepo, collectionRepo, cfg.Tokens)
	patService := service.NewPATService(patRepo, userRepo, cfg.Tokens)
	sweeper := service.NewSweeperService(catRepo, patRepo, cfg.Worker)

	// 7. Start the expiry sweeper in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	// 8. Setup Gin
	gin.SetMode(cfg.Server.GinMode)
	router := gin.Default()
	router.Use(middleware.CORS(cfg))

	// 9. Register handlers
	authenticator := middleware.NewAuthenticator(catRepo, patRepo, collectionRepo, cfg.Tokens.AdminAPIKey)
	handler.RegisterRoutes(router, authenticator, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Collection: handler.NewCollectionHandler(collectionService),
		Document:   handler.NewDocumentHandler(documentService),
		CAT:        handler.NewCATHandler(catService),
		PAT:        handler.NewPATHandler(patService),
		Admin:      handler.NewAdminHandler(authService, catService, patService),
	})

	// 10. Mount the MCP endpoint on the same listener
	mcpHandler := mcpserver.New(authService, documentService, collectionService, catService, patService).HTTPHandler(authenticator)
	router.Any("/mcp", gin.WrapH(mcpHandler))
	router.Any("/mcp/*path", gin.WrapH(mcpHandler))

	// 11. Serve with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Forced shutdown: %v", err)
	}
	logrus.Info("Server exited")
}
