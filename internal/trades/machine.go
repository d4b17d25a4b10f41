package trades

import (
	"fmt"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// Роли участника относительно предложения обмена
const (
	roleInitiator = "initiator"
	roleReceiver  = "receiver"
	roleAny       = "any" // любой из двух участников
)

// rule описывает разрешённый переход: кто и из какого статуса
type rule struct {
	role   string
	source string
	target string
}

// Таблица переходов машины состояний предложения обмена.
// Принять и отклонить может только получатель и только из pending,
// отменить — только инициатор и только из pending,
// завершить — любой участник и только из accepted.
// Статусы rejected, cancelled и completed конечные.
var transitions = map[string]rule{
	"accept":   {role: roleReceiver, source: models.StatusPending, target: models.StatusAccepted},
	"reject":   {role: roleReceiver, source: models.StatusPending, target: models.StatusRejected},
	"cancel":   {role: roleInitiator, source: models.StatusPending, target: models.StatusCancelled},
	"complete": {role: roleAny, source: models.StatusAccepted, target: models.StatusCompleted},
}

// CanApply проверяет, может ли пользователь выполнить действие над предложением.
// Роль проверяется раньше статуса: чужое действие — всегда PermissionDenied,
// в каком бы статусе предложение ни находилось.
func CanApply(offer *models.TradeOffer, action string, actorID int64) error {
	r, ok := transitions[action]
	if !ok {
		return apierror.Validation(fmt.Sprintf("неизвестное действие %q", action))
	}

	switch r.role {
	case roleReceiver:
		if offer.Receiver.ID != actorID {
			return apierror.PermissionDenied("только получатель предложения может его принять или отклонить")
		}
	case roleInitiator:
		if offer.Initiator.ID != actorID {
			return apierror.PermissionDenied("только инициатор предложения может его отменить")
		}
	case roleAny:
		if !offer.Participant(actorID) {
			return apierror.PermissionDenied("только участники обмена могут подтвердить завершение")
		}
	}

	if offer.Status.Name != r.source {
		return apierror.InvalidStateTransition(
			fmt.Sprintf("действие %q недопустимо в статусе %q", action, offer.Status.Name))
	}

	return nil
}

// NextStatus возвращает целевой статус действия из исходного статуса.
// Используется стаб-бэкендом, который выступает арбитром переходов.
func NextStatus(source, action string) (string, error) {
	r, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("неизвестное действие %q", action)
	}
	if r.source != source {
		return "", fmt.Errorf("действие %q недопустимо в статусе %q", action, source)
	}
	return r.target, nil
}

// IsTerminalStatus сообщает, есть ли у статуса исходящие переходы
func IsTerminalStatus(status string) bool {
	for _, r := range transitions {
		if r.source == status {
			return false
		}
	}
	return true
}
