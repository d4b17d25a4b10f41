package models

import "time"

// User представляет минимальную информацию о пользователе для API
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UserProfile представляет профиль пользователя со статистикой сделок
type UserProfile struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	Rating           string     `json:"rating,omitempty"`
	TotalReviews     int        `json:"total_reviews,omitempty"`
	SuccessfulTrades int        `json:"successful_trades"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// UserLocation представляет сохранённый адрес пользователя
type UserLocation struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Region     string  `json:"region,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	IsPrimary  bool    `json:"is_primary"`
}
