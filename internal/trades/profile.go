package trades

import (
	"context"
	"sync"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/api"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// ProfileCache хранит последний загруженный профиль текущего пользователя
type ProfileCache struct {
	mu      sync.RWMutex
	client  *api.Client
	profile *models.UserProfile
}

// NewProfileCache создаёт кэш профиля поверх API-клиента
func NewProfileCache(client *api.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

// Refresh перезагружает профиль с бэкенда
func (p *ProfileCache) Refresh(ctx context.Context) error {
	profile, err := p.client.GetMyProfile(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.profile = profile
	p.mu.Unlock()
	return nil
}

// Current возвращает копию последнего загруженного профиля
func (p *ProfileCache) Current() (models.UserProfile, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.profile == nil {
		return models.UserProfile{}, false
	}
	return *p.profile, true
}
