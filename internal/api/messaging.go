package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// GetChatByTrade возвращает чат, привязанный к предложению обмена
func (c *Client) GetChatByTrade(ctx context.Context, tradeOfferID int64) (*models.Chat, error) {
	query := url.Values{}
	query.Set("trade_offer_id", strconv.FormatInt(tradeOfferID, 10))

	var chat models.Chat
	if err := c.get(ctx, "/messaging/chats/by_trade/", query, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatByUser возвращает прямой чат с указанным пользователем
func (c *Client) GetChatByUser(ctx context.Context, userID int64) (*models.Chat, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))

	var chat models.Chat
	if err := c.get(ctx, "/messaging/chats/by_user/", query, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats возвращает список чатов пользователя
func (c *Client) ListChats(ctx context.Context) (*models.ChatPage, error) {
	var page models.ChatPage
	if err := c.get(ctx, "/messaging/chats/", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateChat создает новый чат. Уникальность чата на предложение обмена
// обеспечивает бэкенд, клиент лишь обрабатывает конфликт создания.
func (c *Client) CreateChat(ctx context.Context, data models.CreateChatData) (*models.Chat, error) {
	var chat models.Chat
	if err := c.post(ctx, "/messaging/chats/", data, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListMessages возвращает страницу сообщений чата, новые первыми
func (c *Client) ListMessages(ctx context.Context, chatID int64, page int) (*models.MessagePage, error) {
	query := url.Values{}
	query.Set("chat_id", strconv.FormatInt(chatID, 10))
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	var result models.MessagePage
	if err := c.get(ctx, "/messaging/messages/", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendMessage отправляет сообщение и возвращает его с авторитетным ID
func (c *Client) SendMessage(ctx context.Context, data models.CreateMessageData) (*models.Message, error) {
	var message models.Message
	if err := c.post(ctx, "/messaging/messages/", data, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkChatAsRead отмечает все сообщения чата прочитанными, идемпотентно
func (c *Client) MarkChatAsRead(ctx context.Context, chatID int64) error {
	return c.post(ctx, fmt.Sprintf("/messaging/chats/%d/mark_as_read/", chatID), nil, nil)
}

// ToggleMute переключает уведомления чата и возвращает новое состояние
func (c *Client) ToggleMute(ctx context.Context, chatID int64) (bool, error) {
	var result struct {
		IsMuted bool `json:"is_muted"`
	}
	if err := c.post(ctx, fmt.Sprintf("/messaging/chats/%d/toggle_mute/", chatID), nil, &result); err != nil {
		return false, err
	}
	return result.IsMuted, nil
}
