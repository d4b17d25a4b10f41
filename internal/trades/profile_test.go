package trades

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

func TestProfileCache_Refresh(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profiles/profile/me/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.UserProfile{
			ID:               10,
			Username:         "alice",
			SuccessfulTrades: 3,
		})
	})

	cache := NewProfileCache(newTestClient(t, mux))

	_, ok := cache.Current()
	assert.False(t, ok, "до первой загрузки профиля нет")

	require.NoError(t, cache.Refresh(context.Background()))

	profile, ok := cache.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 3, profile.SuccessfulTrades)
}

func TestProfileCache_RefreshFailureKeepsLastValue(t *testing.T) {
	var fail bool
	mux := http.NewServeMux()
	mux.HandleFunc("/profiles/profile/me/", func(w http.ResponseWriter, r *http.Request) {
		if fail {
			writeJSON(t, w, http.StatusInternalServerError, map[string]string{"detail": "база недоступна"})
			return
		}
		writeJSON(t, w, http.StatusOK, models.UserProfile{ID: 10, SuccessfulTrades: 3})
	})

	cache := NewProfileCache(newTestClient(t, mux))
	require.NoError(t, cache.Refresh(context.Background()))

	fail = true
	require.Error(t, cache.Refresh(context.Background()))

	profile, ok := cache.Current()
	require.True(t, ok)
	assert.Equal(t, 3, profile.SuccessfulTrades)
}
