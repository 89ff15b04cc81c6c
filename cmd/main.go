package main

import (
	stdlog "log"

	"license-validation-api/internal/config"
	"license-validation-api/internal/database"
	"license-validation-api/internal/handler"
	"license-validation-api/internal/license"
	"license-validation-api/internal/logger"
	"license-validation-api/internal/middleware"
	"license-validation-api/internal/model"
	"license-validation-api/internal/service"
	"license-validation-api/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal("failed to load configuration:", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		stdlog.Fatal("failed to initialize logger:", err)
	}
	defer log.Sync()

	if err := database.InitDB(cfg.DataDir); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	util.InitToken(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler.InitAuth(cfg.Auth.AdminPasswordHash)

	sheetSync, err := service.NewSheetSyncService(
		cfg.Sheets.Enable,
		cfg.Sheets.CredentialPath,
		cfg.Sheets.SpreadsheetID,
		cfg.Sheets.SheetName,
		log,
	)
	if err != nil {
		log.Fatal("failed to initialize sheet sync", zap.Error(err))
	}

	store := license.NewGormStore(database.DB)
	svc := license.NewService(store, log)
	handler.Init(svc, sheetSync, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).
				JSON(model.ErrorResponse("Internal server error", license.CodeInternalError))
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/token", handler.HandleIssueToken)

	// Public validation surface.
	lic := api.Group("/license")
	lic.Post("/validate", handler.HandleLicenseValidate)
	lic.Get("/status/:prefix", handler.HandleLicenseStatus)
	lic.Get("/health", handler.HandleHealthCheck)

	// Operator surface.
	admin := api.Group("/licenses")
	admin.Use(middleware.Auth())
	admin.Get("/", handler.HandleGetAllLicenses)
	admin.Get("/statistics", handler.HandleLicenseStatistics)
	admin.Get("/:prefix/records", handler.HandleLicenseRecords)
	admin.Post("/sync", handler.HandleSheetSync)

	log.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
