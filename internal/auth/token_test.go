package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/utils"
)

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": int64(10),
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenManager_AccessToken(t *testing.T) {
	m := NewTokenManager("")

	access := signedToken(t, time.Hour)
	require.NoError(t, m.SetTokens(access, "refresh-token"))

	got, err := m.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, access, got)
	assert.Equal(t, "refresh-token", m.RefreshToken())
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	m := NewTokenManager("")
	require.NoError(t, m.SetTokens(signedToken(t, -time.Minute), "refresh-token"))

	_, err := m.AccessToken()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenManager_MalformedTokenTreatedAsExpired(t *testing.T) {
	m := NewTokenManager("")
	require.NoError(t, m.SetTokens("не-jwt-вовсе", ""))

	_, err := m.AccessToken()
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenManager_MissingToken(t *testing.T) {
	m := NewTokenManager("")

	_, err := m.AccessToken()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenManager_PersistsAcrossRestart(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tokens.json")

	access := signedToken(t, time.Hour)
	first := NewTokenManager(file)
	require.NoError(t, first.SetTokens(access, "refresh-token"))

	// Новый менеджер с тем же файлом подхватывает сохранённую пару
	second := NewTokenManager(file)
	got, err := second.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, access, got)
	assert.Equal(t, "refresh-token", second.RefreshToken())
}

func TestTokenManager_Clear(t *testing.T) {
	file := filepath.Join(t.TempDir(), "tokens.json")

	m := NewTokenManager(file)
	require.NoError(t, m.SetTokens(signedToken(t, time.Hour), "refresh-token"))
	require.NoError(t, m.Clear())

	_, err := m.AccessToken()
	assert.Error(t, err)

	// Файл удалён: после перезапуска токенов нет
	reloaded := NewTokenManager(file)
	_, err = reloaded.AccessToken()
	assert.Error(t, err)
}

func TestTokenManager_AcceptsBackendIssuedToken(t *testing.T) {
	// Токены стаб-бэкенда проходят проверку срока действия
	svc := utils.NewJWTService("test-secret")
	access, err := svc.GenerateToken(10)
	require.NoError(t, err)

	m := NewTokenManager("")
	require.NoError(t, m.SetTokens(access, ""))

	got, err := m.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, access, got)
}
