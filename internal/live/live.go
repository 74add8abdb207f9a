package live

import (
	"context"
	"errors"
	"net/http"
	"time"

	"playday/pkg/auth"
	apperrors "playday/pkg/errors"
	"playday/pkg/feed"
	httputil "playday/pkg/http"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/julienschmidt/httprouter"
)

const (
	Path         = "/api/v1/live"
	writeTimeout = 5 * time.Second
)

const (
	MessageSnapshot = "snapshot"
	MessageChange   = "change"
)

// Message is one frame sent to a live client.
type Message struct {
	Type       string             `json:"type"`
	Collection string             `json:"collection"`
	Data       any                `json:"data,omitempty"`
	Event      *model.ChangeEvent `json:"event,omitempty"`
}

// SnapshotFunc loads the current state of a query before changes stream.
type SnapshotFunc func(ctx context.Context, caller auth.Identity, filter feed.Filter) (any, error)

// Query is a resolved live subscription request.
type Query struct {
	Collection string
	Filter     feed.Filter
}

type LiveHandler struct {
	broker    feed.Broker
	snapshots map[string]SnapshotFunc
	origins   []string
	log       *logger.Logger
}

func NewLiveHandler(broker feed.Broker, snapshots map[string]SnapshotFunc, origins []string, log *logger.Logger) *LiveHandler {
	return &LiveHandler{
		broker:    broker,
		snapshots: snapshots,
		origins:   origins,
		log:       log,
	}
}

// ResolveQuery validates the requested collection and narrows the filter to
// what the caller may see.
func ResolveQuery(r *http.Request) (Query, error) {
	q := r.URL.Query()
	caller, signedIn := auth.FromContext(r.Context())
	collection := q.Get("collection")

	switch collection {
	case model.CollectionFields:
		filter := feed.Filter{}
		if owner := q.Get("owner_id"); owner != "" {
			filter["owner_id"] = owner
		}
		return Query{Collection: collection, Filter: filter}, nil

	case model.CollectionGames:
		return Query{Collection: collection, Filter: feed.Filter{}}, nil

	case model.CollectionRentals:
		if !signedIn {
			return Query{}, apperrors.Unauthorized("Sign in required")
		}
		renter, owner := q.Get("renter_id"), q.Get("owner_id")
		switch {
		case owner != "":
			if owner != caller.UserID {
				return Query{}, apperrors.Forbidden("Rentals can only be watched for your own fields")
			}
			return Query{Collection: collection, Filter: feed.Filter{"owner_id": owner}}, nil
		case renter != "" && renter != caller.UserID:
			return Query{}, apperrors.Forbidden("Rentals can only be watched for yourself")
		default:
			return Query{Collection: collection, Filter: feed.Filter{"renter_id": caller.UserID}}, nil
		}

	case model.CollectionAuth:
		if !signedIn {
			return Query{}, apperrors.Unauthorized("Sign in required")
		}
		return Query{Collection: collection, Filter: feed.Filter{"user_id": caller.UserID}}, nil

	default:
		return Query{}, apperrors.InvalidInput("collection must be one of fields, rentals, games, auth")
	}
}

// Subscribe streams a snapshot followed by matching change events until the
// client leaves, a write fails or the broker shuts down.
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query, err := ResolveQuery(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Subscribe", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	caller, _ := auth.FromContext(r.Context())

	// The server-wide write timeout would cut long-lived streams.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("Failed to clear write deadline", "error", err)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		h.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	sub, err := h.broker.Subscribe(r.Context(), query.Collection, query.Filter)
	if err != nil {
		h.log.Error("Failed to open live subscription", "collection", query.Collection, "error", err)
		conn.Close(websocket.StatusTryAgainLater, "subscriptions unavailable")
		return
	}
	defer func() {
		sub.Close()
		h.log.Info("Live subscription closed",
			"subscription_id", sub.ID,
			"collection", query.Collection,
			"dropped", sub.Dropped(),
		)
	}()

	h.log.Info("Live subscription opened",
		"subscription_id", sub.ID,
		"collection", query.Collection,
		"user_id", caller.UserID,
	)

	// CloseRead discards client frames and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if snapshot, ok := h.snapshots[query.Collection]; ok && snapshot != nil {
		data, err := snapshot(ctx, caller, query.Filter)
		if err != nil {
			h.log.Error("Failed to load live snapshot", "collection", query.Collection, "error", err)
			conn.Close(websocket.StatusInternalError, "snapshot failed")
			return
		}
		if err := write(ctx, conn, Message{Type: MessageSnapshot, Collection: query.Collection, Data: data}); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := write(ctx, conn, Message{Type: MessageChange, Collection: query.Collection, Event: &event}); err != nil {
				h.log.Debug("Live write failed", "subscription_id", sub.ID, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func (h *LiveHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(Path, h.Subscribe)
}
