package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// Действия над предложением обмена
const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionCancel   = "cancel"
	ActionComplete = "complete"
)

// TradeOfferFilter представляет фильтр списка предложений
type TradeOfferFilter struct {
	Type string // sent, received или пусто (все)
	Page int
}

// CreateOffer создает новое предложение обмена
func (c *Client) CreateOffer(ctx context.Context, data models.CreateTradeOfferData) (*models.TradeOffer, error) {
	var offer models.TradeOffer
	if err := c.post(ctx, "/trades/offers/", data, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetOffer загружает предложение по ID — авторитетная точка синхронизации
func (c *Client) GetOffer(ctx context.Context, offerID int64) (*models.TradeOffer, error) {
	var offer models.TradeOffer
	if err := c.get(ctx, fmt.Sprintf("/trades/offers/%d/", offerID), nil, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListOffers возвращает страницу предложений пользователя
func (c *Client) ListOffers(ctx context.Context, filter TradeOfferFilter) (*models.TradeOfferPage, error) {
	query := url.Values{}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}

	var page models.TradeOfferPage
	if err := c.get(ctx, "/trades/offers/", query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListStatuses возвращает справочник статусов обмена
func (c *Client) ListStatuses(ctx context.Context) ([]models.TradeStatus, error) {
	var page struct {
		Results []models.TradeStatus `json:"results"`
	}
	if err := c.get(ctx, "/trades/statuses/", nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// OfferAction выполняет действие над предложением (accept/reject/cancel/complete).
// Бэкенд — единственный арбитр допустимости перехода: 400 здесь означает,
// что предложение уже не в подходящем статусе.
func (c *Client) OfferAction(ctx context.Context, offerID int64, action, comment string) error {
	body := models.TradeActionData{Comment: comment}
	err := c.post(ctx, fmt.Sprintf("/trades/offers/%d/%s/", offerID, action), body, nil)

	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && apiErr.Code == apierror.CodeValidation {
		return apierror.InvalidStateTransition(apiErr.Message)
	}
	return err
}

// AcceptOffer принимает предложение обмена
func (c *Client) AcceptOffer(ctx context.Context, offerID int64, comment string) error {
	return c.OfferAction(ctx, offerID, ActionAccept, comment)
}

// RejectOffer отклоняет предложение обмена
func (c *Client) RejectOffer(ctx context.Context, offerID int64, comment string) error {
	return c.OfferAction(ctx, offerID, ActionReject, comment)
}

// CancelOffer отменяет предложение обмена
func (c *Client) CancelOffer(ctx context.Context, offerID int64, comment string) error {
	return c.OfferAction(ctx, offerID, ActionCancel, comment)
}

// CompleteOffer завершает обмен
func (c *Client) CompleteOffer(ctx context.Context, offerID int64, comment string) error {
	return c.OfferAction(ctx, offerID, ActionComplete, comment)
}
