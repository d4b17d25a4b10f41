package stubs

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/config"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

// NewServer собирает стаб-бэкенд: REST-площадку для локальной
// разработки клиентского ядра без настоящего бэкенда.
func NewServer(cfg *config.Config) (*fiber.App, *Store) {
	store := NewStore()
	jwtService := utils.NewJWTService(cfg.StubConfig.JWTSecret)

	app := fiber.New(fiber.Config{
		AppName:      "Barter Stub Backend",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	NewAuthService(store, jwtService).SetupRoutes(app)
	NewTradeService(store, jwtService).SetupRoutes(app)
	NewChatService(store, jwtService).SetupRoutes(app)
	NewProfileService(store, jwtService).SetupRoutes(app)

	return app, store
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
