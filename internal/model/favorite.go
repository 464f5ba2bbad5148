package model

import (
	"github.com/google/uuid"
)

// Favorite item kinds
const (
	FavoriteTypeMatch  = "match"
	FavoriteTypePlayer = "player"
)

// Favorite is a bookmarked match or player.
type Favorite struct {
	Base
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	ItemID string    `json:"item_id" db:"item_id"`
	Type   string    `json:"type" db:"type"`
	Title  string    `json:"title" db:"title"`
	Data   JSONMap   `json:"data" db:"data"`
}

type CreateFavoriteRequest struct {
	ItemID string  `json:"item_id" binding:"required"`
	Type   string  `json:"type" binding:"required,oneof=match player"`
	Title  string  `json:"title"`
	Data   JSONMap `json:"data"`
}
