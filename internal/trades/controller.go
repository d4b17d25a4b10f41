package trades

import (
	"context"
	"errors"
	"log"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/api"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// ProfileRefresher обновляет профиль текущего пользователя.
// Завершение обмена — единственный переход с побочным эффектом вне
// агрегата предложения: меняется счётчик успешных сделок.
type ProfileRefresher interface {
	Refresh(ctx context.Context) error
}

// Controller управляет жизненным циклом предложений обмена
type Controller struct {
	client  *api.Client
	store   *Store
	profile ProfileRefresher
	userID  int64
}

// NewController создаёт новый экземпляр Controller
func NewController(client *api.Client, store *Store, profile ProfileRefresher, userID int64) *Controller {
	return &Controller{
		client:  client,
		store:   store,
		profile: profile,
		userID:  userID,
	}
}

// Create создает новое предложение обмена.
// Валидация выполняется до сетевого вызова.
func (c *Controller) Create(ctx context.Context, data models.CreateTradeOfferData) (*models.TradeOffer, error) {
	if data.ReceiverID == 0 {
		return nil, apierror.Validation("не указан получатель предложения")
	}
	if data.ReceiverID == c.userID {
		return nil, apierror.Validation("нельзя создать предложение самому себе")
	}
	if len(data.InitiatorItems) == 0 {
		return nil, apierror.Validation("нужно выбрать хотя бы один свой предмет")
	}
	if len(data.ReceiverItems) == 0 {
		return nil, apierror.Validation("нужно выбрать хотя бы один предмет получателя")
	}

	offer, err := c.client.CreateOffer(ctx, data)
	if err != nil {
		return nil, err
	}

	c.store.Replace(*offer)
	return offer, nil
}

// Accept принимает предложение обмена
func (c *Controller) Accept(ctx context.Context, offerID int64, comment string) error {
	return c.transition(ctx, offerID, api.ActionAccept, comment)
}

// Reject отклоняет предложение обмена
func (c *Controller) Reject(ctx context.Context, offerID int64, comment string) error {
	return c.transition(ctx, offerID, api.ActionReject, comment)
}

// Cancel отменяет предложение обмена
func (c *Controller) Cancel(ctx context.Context, offerID int64, comment string) error {
	return c.transition(ctx, offerID, api.ActionCancel, comment)
}

// Complete завершает обмен и обновляет статистику профиля
func (c *Controller) Complete(ctx context.Context, offerID int64, comment string) error {
	return c.transition(ctx, offerID, api.ActionComplete, comment)
}

// transition выполняет переход статуса по общей схеме:
// локальная предварительная проверка, мутация на бэкенде и обязательная
// перезагрузка предложения. Статус из ответа мутации никогда не
// подставляется в кэш — только результат перезагрузки.
func (c *Controller) transition(ctx context.Context, offerID int64, action, comment string) error {
	// Предварительная проверка по кэшу. Она экономит сетевой вызов,
	// но не заменяет проверку бэкенда: кэш может отставать от
	// одновременного действия второго участника.
	if cached, ok := c.store.Get(offerID); ok {
		if err := CanApply(&cached, action, c.userID); err != nil {
			return err
		}
	}

	if err := c.client.OfferAction(ctx, offerID, action, comment); err != nil {
		c.resyncAfterRejection(ctx, offerID, err)
		return err
	}

	// Перезагрузка — точка синхронизации, разрешающая гонку двух
	// участников. Если она не удалась, мутация уже могла примениться,
	// поэтому ошибка помечается как повторяемая, а кэш не трогаем.
	offer, err := c.client.GetOffer(ctx, offerID)
	if err != nil {
		return apierror.Transient("статус изменён, но не удалось обновить предложение", err)
	}

	c.store.Replace(*offer)

	if action == api.ActionComplete && c.profile != nil {
		if err := c.profile.Refresh(ctx); err != nil {
			log.Printf("⚠️ Не удалось обновить статистику профиля после завершения обмена: %v", err)
		}
	}

	return nil
}

// resyncAfterRejection подтягивает актуальное состояние после отказа бэкенда.
// Без этого обе стороны гонки могли бы остаться при своих версиях статуса.
func (c *Controller) resyncAfterRejection(ctx context.Context, offerID int64, cause error) {
	var apiErr *apierror.Error
	if !errors.As(cause, &apiErr) {
		return
	}

	switch apiErr.Code {
	case apierror.CodeInvalidStateTransition, apierror.CodePermissionDenied, apierror.CodeConflict:
		offer, err := c.client.GetOffer(ctx, offerID)
		if err != nil {
			log.Printf("⚠️ Не удалось пересинхронизировать предложение %d: %v", offerID, err)
			return
		}
		c.store.Replace(*offer)
	}
}

// Refresh перезагружает предложение с бэкенда и обновляет кэш
func (c *Controller) Refresh(ctx context.Context, offerID int64) (*models.TradeOffer, error) {
	offer, err := c.client.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	c.store.Replace(*offer)
	return offer, nil
}

// LoadOffers загружает страницу предложений и обновляет кэш
func (c *Controller) LoadOffers(ctx context.Context, filter api.TradeOfferFilter) (*models.TradeOfferPage, error) {
	page, err := c.client.ListOffers(ctx, filter)
	if err != nil {
		return nil, err
	}

	for _, offer := range page.Results {
		c.store.Replace(offer)
	}
	return page, nil
}
