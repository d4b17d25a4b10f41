package stubs

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/middleware"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

const messagesPageSize = 50

// ChatService представляет стаб-сервис чатов и сообщений
type ChatService struct {
	store      *Store
	jwtService *utils.JWTService
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(store *Store, jwtService *utils.JWTService) *ChatService {
	return &ChatService{store: store, jwtService: jwtService}
}

// SetupRoutes настраивает маршруты для API чатов
func (s *ChatService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/messaging")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/chats/", s.ListChats)
	api.Post("/chats/", s.CreateChat)
	api.Get("/chats/by_trade/", s.GetChatByTrade)
	api.Get("/chats/by_user/", s.GetChatByUser)
	api.Post("/chats/:id/mark_as_read/", s.MarkAsRead)
	api.Post("/chats/:id/toggle_mute/", s.ToggleMute)

	api.Get("/messages/", s.ListMessages)
	api.Post("/messages/", s.CreateMessage)
}

// ListChats возвращает чаты пользователя, последние активные первыми
func (s *ChatService) ListChats(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var chats []models.Chat
	for _, record := range s.store.chats {
		if !participates(record, userID) {
			continue
		}
		chats = append(chats, s.store.chatView(record, userID))
	}

	sortChatsByActivity(chats)

	return c.JSON(models.ChatPage{
		Count:   len(chats),
		Results: chats,
	})
}

// CreateChat создает новый чат. На одно предложение обмена допускается
// ровно один чат: повторное создание — конфликт, который клиент
// разрешает перечитыванием.
func (s *ChatService) CreateChat(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	var data models.CreateChatData
	if err := c.Bind().Body(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат данных"})
	}

	if len(data.Participants) != 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "В чате должно быть ровно два участника"})
	}

	selfIncluded := false
	for _, id := range data.Participants {
		if id == userID {
			selfIncluded = true
		}
	}
	if !selfIncluded {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Нельзя создать чат без своего участия"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, id := range data.Participants {
		if _, ok := s.store.users[id]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Один или несколько пользователей не найдены"})
		}
	}

	if data.TradeOffer != nil {
		record, ok := s.store.offers[*data.TradeOffer]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Указанный обмен не найден"})
		}
		if !record.offer.Participant(userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Вы не участвуете в этой сделке"})
		}
		if existing := s.store.findChatByTrade(*data.TradeOffer); existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Чат для этой сделки уже существует"})
		}
	} else {
		if existing := s.store.findDirectChat(data.Participants[0], data.Participants[1]); existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Чат с этим пользователем уже существует"})
		}
	}

	record := &chatRecord{
		chat: models.Chat{
			ID:           s.store.nextChatID,
			Participants: append([]int64(nil), data.Participants...),
			TradeOffer:   data.TradeOffer,
			IsActive:     true,
			CreatedAt:    time.Now(),
		},
		unread: make(map[int64]int),
		muted:  make(map[int64]bool),
	}
	s.store.nextChatID++
	s.store.chats[record.chat.ID] = record

	return c.Status(fiber.StatusCreated).JSON(s.store.chatView(record, userID))
}

// GetChatByTrade возвращает чат по ID предложения обмена
func (s *ChatService) GetChatByTrade(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	tradeOfferID, err := strconv.ParseInt(c.Query("trade_offer_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "trade_offer_id is required"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record := s.store.findChatByTrade(tradeOfferID)
	if record == nil || !participates(record, userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chat not found"})
	}

	return c.JSON(s.store.chatView(record, userID))
}

// GetChatByUser возвращает прямой чат с указанным пользователем
func (s *ChatService) GetChatByUser(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	otherID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record := s.store.findDirectChat(userID, otherID)
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chat not found"})
	}

	return c.JSON(s.store.chatView(record, userID))
}

// MarkAsRead отмечает все сообщения чата прочитанными, идемпотентно
func (s *ChatService) MarkAsRead(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	chatID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат ID чата"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.chats[chatID]
	if !ok || !participates(record, userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Чат не найден"})
	}

	record.unread[userID] = 0

	now := time.Now()
	for i := range record.messages {
		if record.messages[i].Sender != userID && !record.messages[i].IsRead {
			record.messages[i].IsRead = true
			record.messages[i].ReadAt = &now
		}
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// ToggleMute переключает уведомления чата для пользователя
func (s *ChatService) ToggleMute(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	chatID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат ID чата"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.chats[chatID]
	if !ok || !participates(record, userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Чат не найден"})
	}

	record.muted[userID] = !record.muted[userID]

	return c.JSON(fiber.Map{"is_muted": record.muted[userID]})
}

// ListMessages возвращает страницу сообщений чата, новые первыми
func (s *ChatService) ListMessages(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	chatID, err := strconv.ParseInt(c.Query("chat_id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "chat_id is required"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.chats[chatID]
	if !ok || !participates(record, userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Чат не найден"})
	}

	// Журнал хранится старыми вперёд, страница отдаётся новыми вперёд
	total := len(record.messages)
	newestFirst := make([]models.Message, total)
	for i, msg := range record.messages {
		newestFirst[total-1-i] = msg
	}

	start := (page - 1) * messagesPageSize
	if start > total {
		start = total
	}
	end := start + messagesPageSize
	if end > total {
		end = total
	}

	var next, previous *string
	if end < total {
		link := fmt.Sprintf("/api/messaging/messages/?chat_id=%d&page=%d", chatID, page+1)
		next = &link
	}
	if page > 1 {
		link := fmt.Sprintf("/api/messaging/messages/?chat_id=%d&page=%d", chatID, page-1)
		previous = &link
	}

	return c.JSON(models.MessagePage{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  newestFirst[start:end],
	})
}

// CreateMessage создаёт сообщение с авторитетным монотонным ID
func (s *ChatService) CreateMessage(c fiber.Ctx) error {
	userID := c.Locals("userID").(int64)

	var data models.CreateMessageData
	if err := c.Bind().Body(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Неверный формат данных"})
	}

	if data.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Текст сообщения не может быть пустым"})
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	record, ok := s.store.chats[data.Chat]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Чат не найден"})
	}
	if !participates(record, userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not a participant of this chat"})
	}
	if !record.chat.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Чат неактивен"})
	}

	sender := s.store.users[userID]
	now := time.Now()

	message := models.Message{
		ID:            s.store.nextMessageID,
		Chat:          data.Chat,
		Sender:        userID,
		SenderDetails: &sender,
		Content:       data.Content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.store.nextMessageID++

	record.messages = append(record.messages, message)

	// Растёт счётчик непрочитанных у второго участника
	for _, id := range record.chat.Participants {
		if id != userID {
			record.unread[id]++
		}
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// participates сообщает, состоит ли пользователь в чате
func participates(record *chatRecord, userID int64) bool {
	for _, id := range record.chat.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// sortChatsByActivity сортирует чаты по времени последнего сообщения
func sortChatsByActivity(chats []models.Chat) {
	sort.Slice(chats, func(i, j int) bool {
		ti, tj := chats[i].CreatedAt, chats[j].CreatedAt
		if chats[i].LastMessageTime != nil {
			ti = *chats[i].LastMessageTime
		}
		if chats[j].LastMessageTime != nil {
			tj = *chats[j].LastMessageTime
		}
		return ti.After(tj)
	})
}
