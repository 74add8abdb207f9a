package model

import (
	"slices"
	"time"
)

type Game struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	GameType      string    `json:"game_type" bson:"game_type"`
	PlayersNeeded int       `json:"players_needed" bson:"players_needed"`
	CreatorID     string    `json:"creator_id" bson:"creator_id"`
	RentalID      string    `json:"rental_id" bson:"rental_id"`
	FieldID       string    `json:"field_id" bson:"field_id"`
	Date          time.Time `json:"date" bson:"date"`
	Duration      int       `json:"duration" bson:"duration"`
	JoinedPlayers []string  `json:"joined_players" bson:"joined_players"`
	Version       int64     `json:"version" bson:"version"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// HasJoined reports whether userID is already in the roster.
func (g *Game) HasJoined(userID string) bool {
	return slices.Contains(g.JoinedPlayers, userID)
}

type GameRequest struct {
	Title         string `json:"title" validate:"required,min=2,max=100"`
	Description   string `json:"description,omitempty" validate:"max=1000"`
	GameType      string `json:"game_type" validate:"required,min=2,max=50"`
	PlayersNeeded int    `json:"players_needed" validate:"required,min=1,max=100"`
	RentalID      string `json:"rental_id" validate:"required,mongodb"`
}
