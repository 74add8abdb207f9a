package eligibility

import (
	"errors"

	"playday/pkg/model"
)

var (
	ErrGameFull      = errors.New("game has no open spots")
	ErrNotLoggedIn   = errors.New("sign in to join a game")
	ErrAlreadyJoined = errors.New("already joined this game")
)

// Eligibility is what a viewer sees about joining a game.
type Eligibility struct {
	Available bool `json:"available"`
	LoggedIn  bool `json:"logged_in"`
	NotJoined bool `json:"not_joined"`
}

func (e Eligibility) CanJoin() bool {
	return e.Available && e.LoggedIn && e.NotJoined
}

// Evaluate computes eligibility for viewerID; an empty id is an anonymous viewer.
func Evaluate(game *model.Game, viewerID string) Eligibility {
	return Eligibility{
		Available: game.PlayersNeeded > 0,
		LoggedIn:  viewerID != "",
		NotJoined: !game.HasJoined(viewerID),
	}
}

// ApplyJoin returns the game after viewerID takes one spot. The input is
// left untouched.
func ApplyJoin(game *model.Game, viewerID string) (*model.Game, error) {
	e := Evaluate(game, viewerID)
	switch {
	case !e.LoggedIn:
		return nil, ErrNotLoggedIn
	case !e.Available:
		return nil, ErrGameFull
	case !e.NotJoined:
		return nil, ErrAlreadyJoined
	}

	next := *game
	next.PlayersNeeded--
	next.JoinedPlayers = append(append([]string(nil), game.JoinedPlayers...), viewerID)
	next.Version++
	return &next, nil
}
