// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/fbopoint/feesched/app/dto"
	"github.com/fbopoint/feesched/app/handlers"
	"github.com/fbopoint/feesched/app/middleware"
	"github.com/fbopoint/feesched/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                *fiber.App
	calculationHandler handlers.CalculationHandlerInterface
	feeScheduleHandler handlers.FeeScheduleHandlerInterface
	configHandler      handlers.ConfigImportHandlerInterface
	allowedOrigins     []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	calculationHandler handlers.CalculationHandlerInterface,
	feeScheduleHandler handlers.FeeScheduleHandlerInterface,
	configHandler handlers.ConfigImportHandlerInterface,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "FBO Point Fee Schedule API",
		ServerHeader: "feesched",
		ErrorHandler: errorHandler,
		BodyLimit:    8 * 1024 * 1024, // snapshot uploads
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:                app,
		calculationHandler: calculationHandler,
		feeScheduleHandler: feeScheduleHandler,
		configHandler:      configHandler,
		allowedOrigins:     allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Billing endpoints
	billing := api.Group("/billing")
	billing.Post("/calculate", r.calculationHandler.CalculateFees)

	// Admin configuration endpoints
	admin := api.Group("/admin")

	admin.Get("/classifications", r.feeScheduleHandler.ListClassifications)
	admin.Post("/classifications", r.feeScheduleHandler.CreateClassification)
	admin.Put("/classifications/:id", r.feeScheduleHandler.UpdateClassification)
	admin.Delete("/classifications/:id", r.feeScheduleHandler.DeleteClassification)

	admin.Get("/aircraft-types", r.feeScheduleHandler.ListAircraftTypes)
	admin.Post("/aircraft-types", r.feeScheduleHandler.CreateAircraftType)
	admin.Put("/aircraft-types/:id", r.feeScheduleHandler.UpdateAircraftType)
	admin.Delete("/aircraft-types/:id", r.feeScheduleHandler.DeleteAircraftType)

	admin.Get("/fee-rules", r.feeScheduleHandler.ListFeeRules)
	admin.Post("/fee-rules", r.feeScheduleHandler.CreateFeeRule)
	admin.Put("/fee-rules/:id", r.feeScheduleHandler.UpdateFeeRule)
	admin.Delete("/fee-rules/:id", r.feeScheduleHandler.DeleteFeeRule)
	admin.Get("/fee-rules/:id/overrides", r.feeScheduleHandler.ListOverrides)

	admin.Post("/overrides", r.feeScheduleHandler.CreateOverride)
	admin.Put("/overrides/:id", r.feeScheduleHandler.UpdateOverride)
	admin.Delete("/overrides/:id", r.feeScheduleHandler.DeleteOverride)

	admin.Get("/waiver-tiers", r.feeScheduleHandler.ListWaiverTiers)
	admin.Post("/waiver-tiers", r.feeScheduleHandler.CreateWaiverTier)
	admin.Post("/waiver-tiers/reorder", r.feeScheduleHandler.ReorderWaiverTiers)
	admin.Put("/waiver-tiers/:id", r.feeScheduleHandler.UpdateWaiverTier)
	admin.Delete("/waiver-tiers/:id", r.feeScheduleHandler.DeleteWaiverTier)

	schedule := admin.Group("/schedule")
	schedule.Get("/export", r.configHandler.ExportSnapshot)
	schedule.Get("/export/workbook", r.configHandler.ExportWorkbook)
	schedule.Post("/import", r.configHandler.ImportSnapshot)
	schedule.Get("/versions", r.configHandler.ListVersions)
	schedule.Post("/versions", r.configHandler.CreateVersion)
	schedule.Post("/versions/restore", r.configHandler.RestoreVersion)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Exported workbooks are already compressed
			contentType := c.Get("Content-Type")
			return contains(contentType, "spreadsheetml")
		},
	}))

	// Request metrics
	r.app.Use(middleware.Metrics())

	// Structured access log
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "feesched-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)
	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID generates a random request identifier
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}
