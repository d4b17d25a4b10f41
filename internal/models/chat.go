package models

import "time"

// Chat представляет чат между двумя пользователями
type Chat struct {
	ID                  int64      `json:"id"`
	Participants        []int64    `json:"participants"`
	ParticipantsDetails []User     `json:"participants_details,omitempty"`
	TradeOffer          *int64     `json:"trade_offer,omitempty"`
	IsActive            bool       `json:"is_active"`
	LastMessageTime     *time.Time `json:"last_message_time"`
	LastMessage         *Message   `json:"last_message,omitempty"`
	UnreadCount         int        `json:"unread_count"`
	IsMuted             bool       `json:"is_muted"`
	CreatedAt           time.Time  `json:"created_at"`
}

// Message представляет сообщение в чате.
// ID выдаётся бэкендом и строго возрастает в пределах чата —
// это единственная гарантия порядка, на которую опирается клиент.
type Message struct {
	ID            int64      `json:"id"`
	Chat          int64      `json:"chat"`
	Sender        int64      `json:"sender"`
	SenderDetails *User      `json:"sender_details,omitempty"`
	Content       string     `json:"content"`
	IsRead        bool       `json:"is_read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// CreateChatData представляет данные для создания чата
type CreateChatData struct {
	Participants []int64 `json:"participants"`
	TradeOffer   *int64  `json:"trade_offer,omitempty"`
}

// CreateMessageData представляет данные для отправки сообщения
type CreateMessageData struct {
	Chat    int64  `json:"chat"`
	Content string `json:"content"`
}

// MessagePage представляет страницу сообщений (новые первыми)
type MessagePage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Message `json:"results"`
}

// ChatPage представляет страницу списка чатов
type ChatPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Chat  `json:"results"`
}
