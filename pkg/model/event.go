package model

import "time"

const (
	CollectionFields  = "fields"
	CollectionRentals = "rentals"
	CollectionGames   = "games"
	CollectionAuth    = "auth"
	// CollectionSubscribers is published on the event bus only; it has no live topic.
	CollectionSubscribers = "subscribers"
)

type ChangeType string

const (
	ChangeCreated   ChangeType = "created"
	ChangeUpdated   ChangeType = "updated"
	ChangeDeleted   ChangeType = "deleted"
	ChangeSignedIn  ChangeType = "signed_in"
	ChangeSignedOut ChangeType = "signed_out"
)

// ChangeEvent describes one committed write. Attributes carry the values live
// subscribers filter on, such as owner_id or renter_id.
type ChangeEvent struct {
	Collection string            `json:"collection"`
	Type       ChangeType        `json:"type"`
	DocumentID string            `json:"document_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Document   any               `json:"document,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventType is the dotted name used on the event bus, e.g. "rental.created".
// Join transitions on games are published as "game.joined".
func (e ChangeEvent) EventType() string {
	if e.Collection == CollectionGames && e.Attributes["action"] == "join" {
		return "game.joined"
	}
	return singular(e.Collection) + "." + string(e.Type)
}

func singular(collection string) string {
	switch collection {
	case CollectionFields:
		return "field"
	case CollectionRentals:
		return "rental"
	case CollectionGames:
		return "game"
	case CollectionSubscribers:
		return "subscriber"
	default:
		return collection
	}
}
