package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Recursos-api/internal/application/allocation"
	"github.com/jhoicas/Recursos-api/internal/application/analytics"
	"github.com/jhoicas/Recursos-api/internal/application/expense"
	"github.com/jhoicas/Recursos-api/internal/application/ports"
	"github.com/jhoicas/Recursos-api/internal/application/progress"
	"github.com/jhoicas/Recursos-api/internal/application/usecase"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Recursos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/rabbitmq"
	infraredis "github.com/jhoicas/Recursos-api/internal/infrastructure/redis"
	infras3 "github.com/jhoicas/Recursos-api/internal/infrastructure/s3"
	"github.com/jhoicas/Recursos-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Recursos-api/internal/interfaces/http"
	"github.com/jhoicas/Recursos-api/pkg/config"
	"github.com/jhoicas/Recursos-api/pkg/logger"
	"github.com/jhoicas/Recursos-api/pkg/telemetry"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.App.Name, cfg.Telemetry)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas OTLP")
	}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("conexión al almacenamiento")
	}

	// Caché de utilización: opcional, sin Redis se calcula siempre desde el almacenamiento.
	var cache ports.UtilizationCache
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		cache = infraredis.NewUtilizationCache(client, cfg.Redis.TTL)
	}

	// Eventos de asignación: opcionales.
	var events ports.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer publisher.Close()
		events = publisher
	}

	// Archivo de reportes PDF: opcional.
	var archive ports.ReportArchive
	if cfg.Reports.Enabled() {
		a, err := infras3.NewReportArchive(ctx, cfg.Reports)
		if err != nil {
			log.Fatal().Err(err).Msg("configurar archivo S3 de reportes")
		}
		archive = a
	}

	m := metrics.New("recursos")

	userUC := usecase.NewUserUseCase(store.Users, store.Projects)
	projectUC := usecase.NewProjectUseCase(store.Projects, store.Users, cache, log)
	allocationUC := allocation.NewUseCase(store.Projects, store.Users, cache, events, m, log)
	expenseUC := expense.NewUseCase(store.Projects, m)
	progressUC := progress.NewUseCase(store.Projects, m)
	kpiUC := analytics.NewKPIUseCase(store.Users, store.Projects)
	reportUC := analytics.NewReportUseCase(kpiUC, store.Users, infrapdf.NewMarotoReportGenerator(), archive, cfg.Reports.Prefix, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Recursos API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación OpenAPI, /docs deshabilitado")
	}

	if err := httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		UserUC:      userUC,
		ProjectUC:   projectUC,
		Allocations: allocationUC,
		Expenses:    expenseUC,
		Progress:    progressUC,
		KPIs:        kpiUC,
		Reports:     reportUC,
		Metrics:     m,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
	}); err != nil {
		log.Fatal().Err(err).Msg("registrar rutas")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre del almacenamiento")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
