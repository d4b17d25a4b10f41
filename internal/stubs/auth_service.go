package stubs

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

// AuthService – стаб-сервис авторизации: выдаёт JWT по логину и паролю
type AuthService struct {
	store      *Store
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(store *Store, jwtService *utils.JWTService) *AuthService {
	return &AuthService{store: store, jwtService: jwtService}
}

// SetupRoutes настраивает маршруты авторизации
func (s *AuthService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/auth")
	api.Post("/login/", s.Login)
}

// Login проверяет логин и пароль, создает JWT и возвращает его
func (s *AuthService) Login(c fiber.Ctx) error {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат данных"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	password, ok := s.store.passwords[payload.Username]
	if !ok || password != payload.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Неверный логин или пароль"})
	}

	var userID int64
	for id, user := range s.store.users {
		if user.Username == payload.Username {
			userID = id
			break
		}
	}

	access, err := s.jwtService.GenerateToken(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Не удалось создать токен"})
	}

	// Стабу не нужен настоящий refresh-процесс, выдаём второй токен
	refresh, err := s.jwtService.GenerateToken(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Не удалось создать токен"})
	}

	return c.JSON(fiber.Map{
		"access":  access,
		"refresh": refresh,
		"user":    s.store.users[userID],
	})
}
