package models

import "time"

// ItemShort представляет краткую информацию о предмете в составе предложения
type ItemShort struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug,omitempty"`
	Description   string    `json:"description,omitempty"`
	Owner         int64     `json:"owner"`
	OwnerDetails  *User     `json:"owner_details,omitempty"`
	ConditionName string    `json:"condition_name,omitempty"`
	StatusName    string    `json:"status_name,omitempty"`
	PrimaryImage  string    `json:"primary_image,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}
