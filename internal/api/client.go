package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/apierror"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/config"
)

// TokenProvider выдаёт access-токен для подстановки в запросы.
// Обновлением истёкших токенов занимается внешний слой авторизации.
type TokenProvider interface {
	AccessToken() (string, error)
}

// Client представляет HTTP-клиент бэкенда
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

// NewClient создаёт новый экземпляр Client
func NewClient(cfg *config.Config, tokens TokenProvider) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		tokens:  tokens,
	}
}

// get выполняет GET-запрос и декодирует ответ в out
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// post выполняет POST-запрос с JSON-телом и декодирует ответ в out
func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// do выполняет запрос к бэкенду, подставляя токен и классифицируя ошибки
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования тела запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		token, err := c.tokens.AccessToken()
		if err != nil {
			return apierror.Wrap(apierror.CodeUnauthorized, "токен недоступен", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apierror.Transient("запрос не выполнен", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apierror.Transient("ошибка декодирования ответа", err)
		}
		return nil
	}

	return c.statusError(resp)
}

// statusError превращает не-2xx ответ в классифицированную ошибку
func (c *Client) statusError(resp *http.Response) error {
	message := errorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return apierror.Validation(message)
	case resp.StatusCode == http.StatusUnauthorized:
		return apierror.New(apierror.CodeUnauthorized, message)
	case resp.StatusCode == http.StatusForbidden:
		return apierror.PermissionDenied(message)
	case resp.StatusCode == http.StatusNotFound:
		return apierror.NotFound(message)
	case resp.StatusCode == http.StatusConflict:
		return apierror.Conflict(message)
	case resp.StatusCode >= 500:
		return apierror.Transient(message, nil)
	default:
		return apierror.New(apierror.CodeTransient, fmt.Sprintf("неожиданный статус %d: %s", resp.StatusCode, message))
	}
}

// errorMessage извлекает текст ошибки из тела ответа.
// Бэкенд отвечает либо {"detail": ...}, либо {"error": ...}.
func errorMessage(body io.Reader) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	data, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}

	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}

	switch {
	case payload.Detail != "":
		return payload.Detail
	case payload.Error != "":
		return payload.Error
	default:
		return payload.Message
	}
}
