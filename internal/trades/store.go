package trades

import (
	"sort"
	"sync"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// Store хранит канонические копии предложений обмена на клиенте.
// Единственный писатель — Controller, читать могут все.
type Store struct {
	mu     sync.RWMutex
	offers map[int64]models.TradeOffer
}

// NewStore создаёт пустое хранилище предложений
func NewStore() *Store {
	return &Store{offers: make(map[int64]models.TradeOffer)}
}

// Get возвращает копию предложения по ID
func (s *Store) Get(offerID int64) (models.TradeOffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offer, ok := s.offers[offerID]
	return offer, ok
}

// Replace целиком заменяет кэшированное предложение свежей копией с бэкенда.
// Частичных правок статуса не бывает: перезагрузка — точка синхронизации.
func (s *Store) Replace(offer models.TradeOffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers[offer.ID] = offer
}

// SetAll заменяет содержимое хранилища результатом загрузки списка
func (s *Store) SetAll(offers []models.TradeOffer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers = make(map[int64]models.TradeOffer, len(offers))
	for _, offer := range offers {
		s.offers[offer.ID] = offer
	}
}

// List возвращает все предложения, новые первыми
func (s *Store) List() []models.TradeOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.TradeOffer, 0, len(s.offers))
	for _, offer := range s.offers {
		result = append(result, offer)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result
}

// Len возвращает количество предложений в хранилище
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.offers)
}
