package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair представляет пару токенов, выданную бэкендом
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenManager хранит токены доступа и подставляет их в запросы.
// Обновление истёкшего токена выполняет внешний слой авторизации,
// ядро лишь сообщает о необходимости обновления через ErrTokenExpired.
type TokenManager struct {
	mu   sync.RWMutex
	pair TokenPair
	file string
}

// ErrTokenExpired сигнализирует, что access-токен истёк и нужен refresh
var ErrTokenExpired = fmt.Errorf("токен доступа истёк")

// NewTokenManager создаёт менеджер токенов с файловым хранилищем.
// Если файл существует, токены загружаются из него.
func NewTokenManager(file string) *TokenManager {
	m := &TokenManager{file: file}

	if file != "" {
		if data, err := os.ReadFile(file); err == nil {
			var pair TokenPair
			if err := json.Unmarshal(data, &pair); err == nil {
				m.pair = pair
			}
		}
	}

	return m
}

// SetTokens сохраняет новую пару токенов
func (m *TokenManager) SetTokens(access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = TokenPair{Access: access, Refresh: refresh}
	return m.persist()
}

// AccessToken возвращает текущий access-токен для подстановки в запрос
func (m *TokenManager) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pair.Access == "" {
		return "", fmt.Errorf("токен доступа отсутствует")
	}

	if expired(m.pair.Access) {
		return "", ErrTokenExpired
	}

	return m.pair.Access, nil
}

// RefreshToken возвращает refresh-токен для внешнего слоя авторизации
func (m *TokenManager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pair.Refresh
}

// Clear удаляет сохранённые токены
func (m *TokenManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = TokenPair{}
	if m.file != "" {
		if err := os.Remove(m.file); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// persist записывает токены в файл, вызывается под мьютексом
func (m *TokenManager) persist() error {
	if m.file == "" {
		return nil
	}

	data, err := json.Marshal(m.pair)
	if err != nil {
		return err
	}

	return os.WriteFile(m.file, data, 0o600)
}

// expired проверяет exp-клейм токена без проверки подписи.
// Подпись проверяет бэкенд, клиенту достаточно срока действия.
func expired(tokenString string) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		// Нечитаемый токен считаем истёкшим, бэкенд всё равно его отклонит
		return true
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
