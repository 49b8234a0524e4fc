package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"logwarden/internal/config"
	"logwarden/internal/downdetect"
	"logwarden/internal/features/actors"
	"logwarden/internal/features/audit_logs"
	"logwarden/internal/features/correlation"
	"logwarden/internal/features/gateway"
	logs_core "logwarden/internal/features/logs/core"
	logs_ingestion "logwarden/internal/features/logs/ingestion"
	"logwarden/internal/features/policies"
	system_healthcheck "logwarden/internal/features/system/healthcheck"
	"logwarden/internal/features/threats"
	cache_utils "logwarden/internal/util/cache"
	env_utils "logwarden/internal/util/env"
	"logwarden/internal/util/logger"
	_ "logwarden/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title LogWarden Backend API
// @version 1.0
// @description Multi-tenant log ingestion, correlation and threat detection API
// @termsOfService http://swagger.io/terms/

// @host localhost:4010
// @BasePath /api/v1
// @schemes http
func main() {
	log := logger.GetLogger()
	config.StartListeningForShutdownSignal()
	setUpDependencies()

	cache_utils.TestCacheConnection()

	testLogStoreConnection(log)

	runMigrations(log)

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	// Add GZIP compression middleware
	ginApp.Use(gzip.Gzip(
		gzip.DefaultCompression,
		// Don't compress already compressed files
		gzip.WithExcludedExtensions(
			[]string{".png", ".gif", ".jpeg", ".jpg", ".ico", ".svg", ".pdf", ".mp4"},
		),
	))

	enableCors(ginApp)
	setUpRoutes(ginApp)
	runBackgroundTasks(log)

	startServerWithGracefulShutdown(log, ginApp)
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":4010",
		Handler: app,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	stopBackgroundTasks()

	// The context is used to inform the server it has 10 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Mount Swagger UI
	v1.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	downdetect.GetDowndetectController().RegisterRoutes(v1)
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(actors.AuthMiddleware())

	logs_ingestion.GetIngestController().RegisterRoutes(protected)
	gateway.GetGatewayController().RegisterRoutes(protected)
	threats.GetThreatController().RegisterRoutes(protected)
	policies.GetPolicyController().RegisterRoutes(protected)
	audit_logs.GetAuditLogController().RegisterRoutes(protected)
}

func setUpDependencies() {
	audit_logs.SetupDependencies()
}

func runBackgroundTasks(log *slog.Logger) {
	log.Info("Preparing to run background tasks...")

	correlation.GetCorrelationService().StartSweeper()
	threats.GetThreatDetectionEngine().StartWorkers()
	logs_ingestion.StartWorkers()

	log.Info("Background tasks started successfully")
}

func stopBackgroundTasks() {
	correlation.GetCorrelationService().Stop()
	threats.GetThreatDetectionEngine().Stop()
	logs_ingestion.GetSecurityEventWorker().Stop()
	logs_ingestion.GetRetentionWorker().Stop()
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func testLogStoreConnection(log *slog.Logger) {
	log.Info("Testing log store connection...")

	if err := logs_core.GetLogStore().Ping(); err != nil {
		log.Error("Failed to connect to log store", "error", err)
		os.Exit(1)
	}

	log.Info("Log store connection test successful")
}

func runMigrations(log *slog.Logger) {
	log.Info("Running database migrations...")

	cmd := exec.Command("goose", "up")
	cmd.Env = append(
		os.Environ(),
		"GOOSE_DRIVER=postgres",
		"GOOSE_DBSTRING="+config.GetEnv().DatabaseDsn,
	)

	cmd.Dir = filepath.Join(config.GetEnv().BackendRootPath, "migrations")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error("Failed to run migrations", "error", err, "output", string(output))
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully", "output", string(output))
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// Setup CORS
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Authorization",
				"Accept",
				"Accept-Language",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
				"Access-Control-Allow-Methods",
				"Access-Control-Allow-Headers",
				"Access-Control-Allow-Origin",
			},
			AllowCredentials: true,
		}))
	}
}
