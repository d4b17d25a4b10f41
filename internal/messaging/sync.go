package messaging

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/api"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// SyncEngine поддерживает локальный журнал сообщений одного чата в
// актуальном состоянии, опрашивая бэкенд с фиксированным интервалом,
// пока экран чата открыт.
//
// Журнал только дописывается и упорядочен по ID сообщений. Единственный
// механизм дедупликации — отметка highWaterMark: в журнал попадают только
// сообщения с ID строго больше неё. Это корректно, потому что бэкенд
// выдаёт ID монотонно и никогда не переиспользует.
type SyncEngine struct {
	client   *api.Client
	chatID   int64
	interval time.Duration

	// onAppend вызывается после дописывания новых сообщений,
	// сюда вешается прокрутка чата вниз
	onAppend func([]models.Message)

	// opMu сериализует опрос, отправку и ручное обновление:
	// два слияния не должны гоняться друг с другом
	opMu sync.Mutex

	mu        sync.RWMutex
	messages  []models.Message // старые первыми
	highWater int64
	open      bool
	stop      chan struct{}
}

// NewSyncEngine создаёт движок синхронизации для чата
func NewSyncEngine(client *api.Client, chatID int64, interval time.Duration, onAppend func([]models.Message)) *SyncEngine {
	return &SyncEngine{
		client:   client,
		chatID:   chatID,
		interval: interval,
		onAppend: onAppend,
	}
}

// Open загружает первую страницу сообщений и запускает периодический опрос.
// Сообщения приходят новыми вперёд, для отображения порядок инвертируется.
func (e *SyncEngine) Open(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if e.open {
		e.mu.Unlock()
		return nil
	}
	e.open = true
	e.stop = make(chan struct{})
	e.mu.Unlock()

	page, err := e.client.ListMessages(ctx, e.chatID, 1)
	if err != nil {
		e.shutdown()
		return err
	}

	ordered := invert(page.Results)

	e.mu.Lock()
	e.messages = ordered
	if len(ordered) > 0 {
		e.highWater = ordered[len(ordered)-1].ID
	}
	e.mu.Unlock()

	e.markRead(ctx)

	go e.run(ctx)
	return nil
}

// Close останавливает опрос и сбрасывает журнал.
// Запрос, оставшийся в полёте, доработает впустую: его результат
// отбрасывается, потому что движок уже закрыт.
func (e *SyncEngine) Close() {
	e.shutdown()

	e.mu.Lock()
	e.messages = nil
	e.highWater = 0
	e.mu.Unlock()
}

// shutdown переводит движок в закрытое состояние и гасит таймер опроса
func (e *SyncEngine) shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.open {
		return
	}
	e.open = false
	close(e.stop)
}

// run крутит таймер опроса до закрытия чата
func (e *SyncEngine) run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.mu.RLock()
	stop := e.stop
	e.mu.RUnlock()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.poll(ctx)
		}
	}
}

// poll выполняет один цикл опроса. Если предыдущий опрос, отправка или
// обновление ещё в полёте, цикл пропускается. Ошибки сети проглатываются:
// на фоне пятисекундного интервала они случаются часто и лечатся
// следующим тиком.
func (e *SyncEngine) poll(ctx context.Context) {
	if !e.opMu.TryLock() {
		return
	}
	defer e.opMu.Unlock()

	page, err := e.client.ListMessages(ctx, e.chatID, 1)
	if err != nil {
		log.Printf("Ошибка опроса чата %d: %v", e.chatID, err)
		return
	}

	if appended := e.merge(page.Results); len(appended) > 0 {
		e.markRead(ctx)
		if e.onAppend != nil {
			e.onAppend(appended)
		}
	}
}

// Refresh выполняет ручное обновление журнала. В отличие от первой
// загрузки, отметка highWaterMark никогда не откатывается назад, а уже
// виденные сообщения не вставляются повторно.
func (e *SyncEngine) Refresh(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	page, err := e.client.ListMessages(ctx, e.chatID, 1)
	if err != nil {
		return err
	}

	if appended := e.merge(page.Results); len(appended) > 0 {
		e.markRead(ctx)
		if e.onAppend != nil {
			e.onAppend(appended)
		}
	}
	return nil
}

// Send отправляет сообщение и сразу дописывает подтверждённую бэкендом
// копию в журнал. Отметка highWaterMark продвигается синхронно, поэтому
// следующий опрос отфильтрует только что отправленное сообщение и не
// продублирует его.
func (e *SyncEngine) Send(ctx context.Context, content string) (*models.Message, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	message, err := e.client.SendMessage(ctx, models.CreateMessageData{
		Chat:    e.chatID,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	if appended := e.merge([]models.Message{*message}); len(appended) > 0 && e.onAppend != nil {
		e.onAppend(appended)
	}

	return message, nil
}

// merge дописывает в журнал сообщения с ID выше отметки, старые первыми,
// и продвигает отметку. Пустой результат фильтра — идемпотентный no-op:
// журнал не перестраивается и не переупорядочивается.
func (e *SyncEngine) merge(incoming []models.Message) []models.Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Поздний ответ после закрытия чата просто отбрасывается
	if !e.open {
		return nil
	}

	fresh := make([]models.Message, 0, len(incoming))
	for _, msg := range invert(incoming) {
		if msg.ID > e.highWater {
			fresh = append(fresh, msg)
			e.highWater = msg.ID
		}
	}

	if len(fresh) == 0 {
		return nil
	}

	e.messages = append(e.messages, fresh...)
	return fresh
}

// markRead отмечает чат прочитанным. Ошибка не фатальна:
// операция идемпотентна и повторится при следующем слиянии.
func (e *SyncEngine) markRead(ctx context.Context) {
	if err := e.client.MarkChatAsRead(ctx, e.chatID); err != nil {
		log.Printf("Ошибка отметки чата %d прочитанным: %v", e.chatID, err)
	}
}

// Messages возвращает копию журнала, старые первыми
func (e *SyncEngine) Messages() []models.Message {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]models.Message, len(e.messages))
	copy(result, e.messages)
	return result
}

// HighWaterMark возвращает ID последнего слитого сообщения
func (e *SyncEngine) HighWaterMark() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.highWater
}

// invert разворачивает порядок сообщений: бэкенд отдаёт новые первыми,
// журнал хранит старые первыми
func invert(messages []models.Message) []models.Message {
	result := make([]models.Message, len(messages))
	for i, msg := range messages {
		result[len(messages)-1-i] = msg
	}
	return result
}
