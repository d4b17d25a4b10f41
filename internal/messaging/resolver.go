package messaging

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/api"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// Resolver находит или создаёт чат для предложения обмена.
// Инвариант: на одно предложение существует не больше одного чата.
// Уникальность обеспечивает бэкенд, клиент лишь сглаживает гонки.
type Resolver struct {
	client *api.Client
	group  singleflight.Group
}

// NewResolver создаёт новый экземпляр Resolver
func NewResolver(client *api.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve возвращает чат предложения обмена, создавая его при первом обращении.
// Одновременные вызовы для одного предложения схлопываются в один запрос,
// поэтому оба вызывающих увидят один и тот же ID чата.
func (r *Resolver) Resolve(ctx context.Context, offer *models.TradeOffer) (*models.Chat, error) {
	key := fmt.Sprintf("trade:%d", offer.ID)

	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolveTrade(ctx, offer)
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.Chat), nil
}

// resolveTrade реализует ленивое создание: сначала поиск, затем создание,
// при конфликте создания — повторный поиск.
func (r *Resolver) resolveTrade(ctx context.Context, offer *models.TradeOffer) (*models.Chat, error) {
	chat, err := r.client.GetChatByTrade(ctx, offer.ID)
	if err == nil {
		return chat, nil
	}
	if !apierror.HasCode(err, apierror.CodeNotFound) {
		return nil, err
	}

	tradeID := offer.ID
	created, err := r.client.CreateChat(ctx, models.CreateChatData{
		Participants: []int64{offer.Initiator.ID, offer.Receiver.ID},
		TradeOffer:   &tradeID,
	})
	if err == nil {
		return created, nil
	}

	// Вторая сторона могла создать чат одновременно с нами. Это штатная
	// гонка: конфликт не показываем пользователю, а просто перечитываем.
	if apierror.HasCode(err, apierror.CodeConflict) {
		log.Printf("Чат для предложения %d уже создан второй стороной, перечитываем", offer.ID)
		return r.client.GetChatByTrade(ctx, offer.ID)
	}

	return nil, err
}

// ResolveUser возвращает прямой чат с пользователем, создавая его при
// первом обращении. Та же схема, что и для чата предложения.
func (r *Resolver) ResolveUser(ctx context.Context, currentUserID, userID int64) (*models.Chat, error) {
	key := fmt.Sprintf("user:%d", userID)

	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		chat, err := r.client.GetChatByUser(ctx, userID)
		if err == nil {
			return chat, nil
		}
		if !apierror.HasCode(err, apierror.CodeNotFound) {
			return nil, err
		}

		created, err := r.client.CreateChat(ctx, models.CreateChatData{
			Participants: []int64{currentUserID, userID},
		})
		if err == nil {
			return created, nil
		}

		if apierror.HasCode(err, apierror.CodeConflict) {
			return r.client.GetChatByUser(ctx, userID)
		}

		return nil, err
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.Chat), nil
}
