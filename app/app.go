package app

import (
	"fmt"
	"log"
	"os"

	"github.com/wali1264/mihangps/app/controller"
	"github.com/wali1264/mihangps/app/router"
	"github.com/wali1264/mihangps/db"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/service"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// BASE_URL is where Chrome reaches this process for blob handles
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		baseURL = "http://localhost:" + port
	}

	// Shared blob handle store, backing every rendered image the print and
	// export pipelines hand to Chrome
	store := service.NewHandleStore()
	imageCache := service.NewImageCache(store)
	rasterizer := service.NewPrintRasterizer(store)
	chrome := service.NewChromeRenderer()
	printLayer := service.NewPrintLayerRenderer(imageCache)

	// Share path is optional: without Drive credentials, exports always
	// save directly
	var share service.ShareServiceInterface
	credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if credentialsPath != "" {
		shareService, err := service.NewShareService(credentialsPath, os.Getenv("DRIVE_FOLDER_ID"))
		if err != nil {
			log.Printf("⚠️  Share service unavailable, exports will save directly: %v", err)
		} else {
			share = shareService
		}
	} else {
		log.Printf("ℹ️  GOOGLE_APPLICATION_CREDENTIALS not set, exports will save directly")
	}

	// Initialize repositories
	templateRepo := repository.NewTemplateRepository()
	contractRepo := repository.NewContractRepository()
	clientRepo := repository.NewClientRepository()
	userRepo := repository.NewUserRepository()

	// Initialize services
	printService := service.NewPrintService(printLayer, rasterizer, store, chrome, contractRepo, baseURL)
	exportService := service.NewExportService(imageCache, store, chrome, share)
	reportService := service.NewReportService(contractRepo, clientRepo, userRepo)
	canvasSessions := service.NewCanvasSessionManager(imageCache)

	// Create controllers
	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(userRepo),
		Template: controller.NewTemplateController(templateRepo),
		Client:   controller.NewClientController(clientRepo),
		Contract: controller.NewContractController(contractRepo),
		Canvas:   controller.NewCanvasController(canvasSessions, templateRepo),
		Print:    controller.NewPrintController(printService, templateRepo),
		Export:   controller.NewExportController(exportService, templateRepo),
		Report:   controller.NewReportController(reportService, templateRepo),
		Asset:    controller.NewAssetController(store),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
