package stubs

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/middleware"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

// ProfileService – стаб-сервис профилей.
// Клиентское ядро обращается сюда за счётчиком успешных сделок
// после завершения обмена.
type ProfileService struct {
	store      *Store
	jwtService *utils.JWTService
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(store *Store, jwtService *utils.JWTService) *ProfileService {
	return &ProfileService{store: store, jwtService: jwtService}
}

// SetupRoutes настраивает маршруты профилей
func (s *ProfileService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/profiles")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/profile/me/", s.Me)
}

// Me возвращает профиль текущего пользователя
func (s *ProfileService) Me(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	profile, ok := s.store.profiles[userID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Профиль не найден"})
	}

	return c.JSON(profile)
}
