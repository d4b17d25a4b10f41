package api

import (
	"context"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/models"
)

// GetMyProfile возвращает профиль текущего пользователя.
// Используется контроллером переговоров для обновления счётчика
// успешных сделок после завершения обмена.
func (c *Client) GetMyProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.get(ctx, "/profiles/profile/me/", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
