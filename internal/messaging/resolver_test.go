package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/api"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/config"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

type staticTokens struct{}

func (staticTokens) AccessToken() (string, error) { return "test-token", nil }

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}
	return api.NewClient(cfg, staticTokens{})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func testOffer() *models.TradeOffer {
	return &models.TradeOffer{
		ID:        5,
		Initiator: models.User{ID: 10, Username: "alice"},
		Receiver:  models.User{ID: 20, Username: "bob"},
		Status:    models.TradeStatus{Name: models.StatusAccepted},
	}
}

func TestResolver_ReturnsExistingChat(t *testing.T) {
	var created int32
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_trade/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("trade_offer_id"))
		tradeID := int64(5)
		writeJSON(t, w, http.StatusOK, models.Chat{ID: 33, TradeOffer: &tradeID})
	})
	mux.HandleFunc("/messaging/chats/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&created, 1)
	})

	resolver := NewResolver(newTestClient(t, mux))

	chat, err := resolver.Resolve(context.Background(), testOffer())
	require.NoError(t, err)
	assert.Equal(t, int64(33), chat.ID)
	assert.Zero(t, atomic.LoadInt32(&created), "существующий чат не пересоздаётся")
}

func TestResolver_CreatesChatLazily(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_trade/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Chat not found"})
	})
	mux.HandleFunc("/messaging/chats/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var data models.CreateChatData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
		assert.ElementsMatch(t, []int64{10, 20}, data.Participants)
		require.NotNil(t, data.TradeOffer)
		assert.Equal(t, int64(5), *data.TradeOffer)

		writeJSON(t, w, http.StatusCreated, models.Chat{ID: 34, TradeOffer: data.TradeOffer})
	})

	resolver := NewResolver(newTestClient(t, mux))

	chat, err := resolver.Resolve(context.Background(), testOffer())
	require.NoError(t, err)
	assert.Equal(t, int64(34), chat.ID)
}

func TestResolver_ConflictFallsBackToRefetch(t *testing.T) {
	// Вторая сторона успела создать чат между нашим поиском и созданием.
	// Конфликт создания лечится повторным поиском, без ошибки наружу.
	var lookups int32
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_trade/", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&lookups, 1) == 1 {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Chat not found"})
			return
		}
		tradeID := int64(5)
		writeJSON(t, w, http.StatusOK, models.Chat{ID: 35, TradeOffer: &tradeID})
	})
	mux.HandleFunc("/messaging/chats/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusConflict, map[string]string{
			"detail": "Чат для этого предложения уже существует",
		})
	})

	resolver := NewResolver(newTestClient(t, mux))

	chat, err := resolver.Resolve(context.Background(), testOffer())
	require.NoError(t, err)
	assert.Equal(t, int64(35), chat.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&lookups))
}

func TestResolver_PropagatesUnexpectedErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_trade/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]string{"detail": "база недоступна"})
	})

	resolver := NewResolver(newTestClient(t, mux))

	_, err := resolver.Resolve(context.Background(), testOffer())
	require.Error(t, err)
	assert.True(t, apierror.IsTransient(err))
}

func TestResolver_ConcurrentCallsCollapse(t *testing.T) {
	// Десять одновременных открытий одного чата должны схлопнуться
	// в одну цепочку запросов и вернуть один и тот же ID
	var creates int32
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_trade/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond) // даём остальным вызовам встать в очередь
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Chat not found"})
	})
	mux.HandleFunc("/messaging/chats/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&creates, 1)
		tradeID := int64(5)
		writeJSON(t, w, http.StatusCreated, models.Chat{ID: 36, TradeOffer: &tradeID})
	})

	resolver := NewResolver(newTestClient(t, mux))

	var wg sync.WaitGroup
	ids := make([]int64, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			chat, err := resolver.Resolve(context.Background(), testOffer())
			if assert.NoError(t, err) {
				ids[i] = chat.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&creates))
	for _, id := range ids {
		assert.Equal(t, int64(36), id)
	}
}

func TestResolver_ResolveUserCreatesDirectChat(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messaging/chats/by_user/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("user_id"))
		writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "Chat not found"})
	})
	mux.HandleFunc("/messaging/chats/", func(w http.ResponseWriter, r *http.Request) {
		var data models.CreateChatData
		require.NoError(t, json.NewDecoder(r.Body).Decode(&data))
		assert.ElementsMatch(t, []int64{10, 20}, data.Participants)
		assert.Nil(t, data.TradeOffer, "прямой чат не привязан к предложению")

		writeJSON(t, w, http.StatusCreated, models.Chat{ID: 40})
	})

	resolver := NewResolver(newTestClient(t, mux))

	chat, err := resolver.ResolveUser(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(40), chat.ID)
}
