package stubs

import (
	"sync"
	"time"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// Store хранит состояние стаб-бэкенда в памяти.
// Счётчики ID монотонные, ID никогда не переиспользуются — на это
// опирается клиентская дедупликация сообщений.
type Store struct {
	mu sync.Mutex

	users     map[int64]models.User
	passwords map[string]string
	profiles  map[int64]*models.UserProfile
	items     map[int64]models.ItemShort

	offers map[int64]*offerRecord
	chats  map[int64]*chatRecord

	nextOfferID   int64
	nextChatID    int64
	nextMessageID int64
}

// offerRecord хранит предложение вместе с историей изменений статуса
type offerRecord struct {
	offer   models.TradeOffer
	history []historyEntry
}

// historyEntry представляет запись аудита изменения статуса
type historyEntry struct {
	previousStatus string
	newStatus      string
	changedBy      int64
	comment        string
	changedAt      time.Time
}

// chatRecord хранит чат вместе с журналом сообщений и статусами участников
type chatRecord struct {
	chat     models.Chat
	messages []models.Message // старые первыми
	unread   map[int64]int
	muted    map[int64]bool
}

// statuses — справочник статусов обмена
var statuses = []models.TradeStatus{
	{ID: 1, Name: models.StatusPending, Description: "Ожидает ответа получателя"},
	{ID: 2, Name: models.StatusAccepted, Description: "Принято, стороны договариваются о встрече"},
	{ID: 3, Name: models.StatusRejected, Description: "Отклонено получателем"},
	{ID: 4, Name: models.StatusCancelled, Description: "Отменено инициатором"},
	{ID: 5, Name: models.StatusCompleted, Description: "Обмен состоялся"},
}

// NewStore создаёт хранилище с тестовыми пользователями и предметами
func NewStore() *Store {
	s := &Store{
		users:         make(map[int64]models.User),
		passwords:     make(map[string]string),
		profiles:      make(map[int64]*models.UserProfile),
		items:         make(map[int64]models.ItemShort),
		offers:        make(map[int64]*offerRecord),
		chats:         make(map[int64]*chatRecord),
		nextOfferID:   1,
		nextChatID:    1,
		nextMessageID: 1,
	}

	s.seed()
	return s
}

// seed наполняет хранилище данными для локальной разработки
func (s *Store) seed() {
	now := time.Now()

	users := []models.User{
		{ID: 1, Username: "alice", FirstName: "Алиса", AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Alice"},
		{ID: 2, Username: "bob", FirstName: "Борис", AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Bob"},
		{ID: 3, Username: "charlie", FirstName: "Кирилл", AvatarURL: "https://api.dicebear.com/7.x/avataaars/svg?seed=Charlie"},
	}

	for _, user := range users {
		s.users[user.ID] = user
		s.passwords[user.Username] = "password"
		s.profiles[user.ID] = &models.UserProfile{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			AvatarURL: user.AvatarURL,
			CreatedAt: &now,
		}
	}

	items := []models.ItemShort{
		{ID: 1, Title: "Велосипед", Owner: 1, StatusName: "active", CreatedAt: now},
		{ID: 2, Title: "Гитара", Owner: 1, StatusName: "active", CreatedAt: now},
		{ID: 3, Title: "Самокат", Owner: 2, StatusName: "active", CreatedAt: now},
		{ID: 4, Title: "Книжная полка", Owner: 2, StatusName: "active", CreatedAt: now},
		{ID: 5, Title: "Палатка", Owner: 3, StatusName: "active", CreatedAt: now},
	}

	for _, item := range items {
		s.items[item.ID] = item
	}
}

// statusByName возвращает статус из справочника
func statusByName(name string) models.TradeStatus {
	for _, status := range statuses {
		if status.Name == name {
			return status
		}
	}
	return models.TradeStatus{Name: name}
}

// findChatByTrade ищет чат по ID предложения, вызывается под мьютексом
func (s *Store) findChatByTrade(tradeOfferID int64) *chatRecord {
	for _, record := range s.chats {
		if record.chat.TradeOffer != nil && *record.chat.TradeOffer == tradeOfferID {
			return record
		}
	}
	return nil
}

// findDirectChat ищет прямой чат между двумя пользователями, вызывается под мьютексом
func (s *Store) findDirectChat(a, b int64) *chatRecord {
	for _, record := range s.chats {
		if record.chat.TradeOffer != nil {
			continue
		}
		p := record.chat.Participants
		if len(p) == 2 && ((p[0] == a && p[1] == b) || (p[0] == b && p[1] == a)) {
			return record
		}
	}
	return nil
}

// chatView собирает представление чата для конкретного пользователя:
// счётчик непрочитанных и флаг уведомлений у каждого участника свои
func (s *Store) chatView(record *chatRecord, userID int64) models.Chat {
	chat := record.chat

	chat.UnreadCount = record.unread[userID]
	chat.IsMuted = record.muted[userID]

	if len(record.messages) > 0 {
		last := record.messages[len(record.messages)-1]
		chat.LastMessage = &last
		chat.LastMessageTime = &last.CreatedAt
	}

	chat.ParticipantsDetails = nil
	for _, id := range chat.Participants {
		if user, ok := s.users[id]; ok {
			chat.ParticipantsDetails = append(chat.ParticipantsDetails, user)
		}
	}

	return chat
}
