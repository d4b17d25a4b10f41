package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/config"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

type staticTokens struct{}

func (staticTokens) AccessToken() (string, error) { return "test-token", nil }

type brokenTokens struct{}

func (brokenTokens) AccessToken() (string, error) {
	return "", errors.New("токен истёк")
}

func newTestClient(t *testing.T, handler http.Handler, tokens TokenProvider) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
	}
	return NewClient(cfg, tokens)
}

func TestClient_RequestHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.TradeOffer{ID: 1})
	})

	client := newTestClient(t, handler, staticTokens{})

	_, err := client.GetOffer(context.Background(), 1)
	require.NoError(t, err)
}

func TestClient_TokenFailureIsUnauthorized(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})

	client := newTestClient(t, handler, brokenTokens{})

	_, err := client.GetOffer(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apierror.HasCode(err, apierror.CodeUnauthorized))
	assert.Zero(t, atomic.LoadInt32(&requests), "без токена запрос не уходит")
}

func TestClient_StatusCodeMapping(t *testing.T) {
	tests := []struct {
		status int
		code   apierror.Code
	}{
		{http.StatusBadRequest, apierror.CodeValidation},
		{http.StatusUnauthorized, apierror.CodeUnauthorized},
		{http.StatusForbidden, apierror.CodePermissionDenied},
		{http.StatusNotFound, apierror.CodeNotFound},
		{http.StatusConflict, apierror.CodeConflict},
		{http.StatusInternalServerError, apierror.CodeTransient},
		{http.StatusBadGateway, apierror.CodeTransient},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"detail": "что-то пошло не так"})
			})

			client := newTestClient(t, handler, staticTokens{})

			_, err := client.GetOffer(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, apierror.HasCode(err, tt.code),
				"статус %d должен давать код %s, получено: %v", tt.status, tt.code, err)
		})
	}
}

func TestClient_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // сервер уже мёртв

	cfg := &config.Config{APIBaseURL: srv.URL, RequestTimeout: time.Second}
	client := NewClient(cfg, staticTokens{})

	_, err := client.GetOffer(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apierror.IsTransient(err))
}

func TestClient_OfferActionRemapsValidation(t *testing.T) {
	// 400 на эндпоинте действия означает недопустимый переход статуса,
	// а не ошибку формы
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades/offers/1/accept/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Предложение уже принято"})
	})

	client := newTestClient(t, handler, staticTokens{})

	err := client.OfferAction(context.Background(), 1, ActionAccept, "")
	require.Error(t, err)
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidStateTransition))
	assert.Contains(t, err.Error(), "Предложение уже принято")
}

func TestClient_ListOffersQuery(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades/offers/", r.URL.Path)
		assert.Equal(t, "received", r.URL.Query().Get("type"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.TradeOfferPage{Count: 0, Results: []models.TradeOffer{}})
	})

	client := newTestClient(t, handler, staticTokens{})

	page, err := client.ListOffers(context.Background(), TradeOfferFilter{Type: "received", Page: 2})
	require.NoError(t, err)
	assert.Zero(t, page.Count)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail": "не найдено"}`, "не найдено"},
		{"error", `{"error": "Chat not found"}`, "Chat not found"},
		{"message", `{"message": "ошибка"}`, "ошибка"},
		{"detail приоритетнее", `{"detail": "главное", "error": "второстепенное"}`, "главное"},
		{"не JSON", "Internal Server Error\n", "Internal Server Error"},
		{"пусто", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorMessage(strings.NewReader(tt.body)))
		})
	}
}
