package models

import "time"

// Названия статусов предложения обмена
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// TradeStatus представляет статус предложения обмена
type TradeStatus struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TradeOffer представляет предложение об обмене
type TradeOffer struct {
	ID              int64         `json:"id"`
	Initiator       User          `json:"initiator"`
	Receiver        User          `json:"receiver"`
	Status          TradeStatus   `json:"status"`
	Location        *int64        `json:"location,omitempty"`
	LocationDetails *UserLocation `json:"location_details,omitempty"`
	Message         string        `json:"message,omitempty"`
	InitiatorItems  []ItemShort   `json:"initiator_items"`
	ReceiverItems   []ItemShort   `json:"receiver_items"`
	CreatedAt       time.Time     `json:"created_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// IsTerminal сообщает, является ли текущий статус предложения конечным
func (t *TradeOffer) IsTerminal() bool {
	switch t.Status.Name {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Participant сообщает, участвует ли пользователь в предложении
func (t *TradeOffer) Participant(userID int64) bool {
	return t.Initiator.ID == userID || t.Receiver.ID == userID
}

// CreateTradeOfferData представляет данные для создания предложения обмена
type CreateTradeOfferData struct {
	ReceiverID     int64   `json:"receiver_id"`
	Location       *int64  `json:"location,omitempty"`
	Message        string  `json:"message,omitempty"`
	InitiatorItems []int64 `json:"initiator_items"`
	ReceiverItems  []int64 `json:"receiver_items"`
}

// TradeActionData представляет комментарий к действию над предложением
type TradeActionData struct {
	Comment string `json:"comment,omitempty"`
}

// TradeOfferPage представляет страницу списка предложений
type TradeOfferPage struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []TradeOffer `json:"results"`
}
