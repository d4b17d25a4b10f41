package stubs

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/middleware"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/trades"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

const offersPageSize = 20

// TradeService представляет стаб-сервис предложений обмена.
// Бэкенд — единственный арбитр переходов статуса, поэтому таблица
// переходов здесь та же, что и в клиентском ядре.
type TradeService struct {
	store      *Store
	jwtService *utils.JWTService
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(store *Store, jwtService *utils.JWTService) *TradeService {
	return &TradeService{store: store, jwtService: jwtService}
}

// SetupRoutes настраивает маршруты для API обменов
func (s *TradeService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/trades")
	api.Get("/statuses/", s.ListStatuses)

	offers := api.Group("/offers")
	offers.Use(middleware.AuthMiddleware(s.jwtService))
	offers.Post("/", s.CreateOffer)
	offers.Get("/", s.ListOffers)
	offers.Get("/:id/", s.GetOffer)
	offers.Post("/:id/:action/", s.OfferAction)
}

// ListStatuses возвращает справочник статусов обмена
func (s *TradeService) ListStatuses(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"count":    len(statuses),
		"next":     nil,
		"previous": nil,
		"results":  statuses,
	})
}

// CreateOffer создает новое предложение обмена
func (s *TradeService) CreateOffer(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	var data models.CreateTradeOfferData
	if err := c.Bind().Body(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат данных"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	receiver, ok := s.store.users[data.ReceiverID]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Пользователь не найден"})
	}
	if data.ReceiverID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Нельзя создать предложение самому себе"})
	}
	if len(data.InitiatorItems) == 0 || len(data.ReceiverItems) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Наборы предметов не могут быть пустыми"})
	}

	initiatorItems, err := s.collectItems(data.InitiatorItems, userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Некоторые предметы не принадлежат вам"})
	}
	receiverItems, err := s.collectItems(data.ReceiverItems, data.ReceiverID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Некоторые предметы не принадлежат получателю"})
	}

	offer := models.TradeOffer{
		ID:             s.store.nextOfferID,
		Initiator:      s.store.users[userID],
		Receiver:       receiver,
		Status:         statusByName(models.StatusPending),
		Location:       data.Location,
		Message:        data.Message,
		InitiatorItems: initiatorItems,
		ReceiverItems:  receiverItems,
		CreatedAt:      time.Now(),
	}
	s.store.nextOfferID++
	s.store.offers[offer.ID] = &offerRecord{offer: offer}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

// collectItems собирает предметы по ID и проверяет владельца, вызывается под мьютексом
func (s *TradeService) collectItems(ids []int64, ownerID int64) ([]models.ItemShort, error) {
	result := make([]models.ItemShort, 0, len(ids))
	for _, id := range ids {
		item, ok := s.store.items[id]
		if !ok || item.Owner != ownerID {
			return nil, fmt.Errorf("предмет %d не принадлежит пользователю %d", id, ownerID)
		}
		result = append(result, item)
	}
	return result, nil
}

// GetOffer возвращает предложение по ID — авторитетная точка синхронизации клиента
func (s *TradeService) GetOffer(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	offerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат ID предложения"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.offers[offerID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Предложение не найдено"})
	}

	if !record.offer.Participant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "У вас нет прав для просмотра этого предложения"})
	}

	return c.JSON(record.offer)
}

// ListOffers возвращает страницу предложений пользователя
func (s *TradeService) ListOffers(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)
	offerType := c.Query("type")

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var matched []models.TradeOffer
	for _, record := range s.store.offers {
		switch offerType {
		case "sent":
			if record.offer.Initiator.ID != userID {
				continue
			}
		case "received":
			if record.offer.Receiver.ID != userID {
				continue
			}
		default:
			if !record.offer.Participant(userID) {
				continue
			}
		}
		matched = append(matched, record.offer)
	}

	// Новые первыми, как отдаёт настоящий бэкенд
	sortOffersByCreatedDesc(matched)

	start := (page - 1) * offersPageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + offersPageSize
	if end > len(matched) {
		end = len(matched)
	}

	var next, previous *string
	if end < len(matched) {
		link := fmt.Sprintf("/api/trades/offers/?page=%d", page+1)
		next = &link
	}
	if page > 1 {
		link := fmt.Sprintf("/api/trades/offers/?page=%d", page-1)
		previous = &link
	}

	return c.JSON(models.TradeOfferPage{
		Count:    len(matched),
		Next:     next,
		Previous: previous,
		Results:  matched[start:end],
	})
}

// OfferAction выполняет переход статуса предложения.
// Роль и исходный статус проверяются той же таблицей, что и на клиенте,
// но здесь проверка авторитетна.
func (s *TradeService) OfferAction(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)
	action := c.Params("action")

	offerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат ID предложения"})
	}

	var data models.TradeActionData
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&data); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат данных"})
		}
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.offers[offerID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Предложение не найдено"})
	}

	if err := trades.CanApply(&record.offer, action, userID); err != nil {
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) && apiErr.Code == apierror.CodePermissionDenied {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": apiErr.Message})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Предложение уже обработано"})
	}

	previous := record.offer.Status.Name
	target, err := trades.NextStatus(previous, action)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Предложение уже обработано"})
	}

	record.offer.Status = statusByName(target)

	if target == models.StatusCompleted {
		now := time.Now()
		record.offer.CompletedAt = &now

		// Завершение — единственный переход с побочным эффектом:
		// у обоих участников растёт счётчик успешных сделок
		if profile, ok := s.store.profiles[record.offer.Initiator.ID]; ok {
			profile.SuccessfulTrades++
		}
		if profile, ok := s.store.profiles[record.offer.Receiver.ID]; ok {
			profile.SuccessfulTrades++
		}
	}

	record.history = append(record.history, historyEntry{
		previousStatus: previous,
		newStatus:      target,
		changedBy:      userID,
		comment:        data.Comment,
		changedAt:      time.Now(),
	})

	return c.JSON(fiber.Map{"success": true, "message": actionMessage(action)})
}

// actionMessage возвращает текст ответа для действия
func actionMessage(action string) string {
	switch action {
	case "accept":
		return "Предложение принято"
	case "reject":
		return "Предложение отклонено"
	case "cancel":
		return "Предложение отменено"
	case "complete":
		return "Обмен завершен"
	}
	return "OK"
}

// sortOffersByCreatedDesc сортирует предложения новыми вперёд
func sortOffersByCreatedDesc(offers []models.TradeOffer) {
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].CreatedAt.Equal(offers[j].CreatedAt) {
			return offers[i].ID > offers[j].ID
		}
		return offers[i].CreatedAt.After(offers[j].CreatedAt)
	})
}
