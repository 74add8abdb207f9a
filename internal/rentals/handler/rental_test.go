package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"playday/pkg/auth"
	apperrors "playday/pkg/errors"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRentalService struct {
	quoteFunc  func(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error)
	createFunc func(ctx context.Context, caller auth.Identity, req *model.RentalRequest) (*model.Rental, error)
	mineFunc   func(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error)
}

func (m *mockRentalService) Quote(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error) {
	if m.quoteFunc != nil {
		return m.quoteFunc(ctx, fieldID, start, end)
	}
	return &model.RentalQuote{FieldID: fieldID}, nil
}

func (m *mockRentalService) Create(ctx context.Context, caller auth.Identity, req *model.RentalRequest) (*model.Rental, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, caller, req)
	}
	return &model.Rental{ID: "r1"}, nil
}

func (m *mockRentalService) GetByID(ctx context.Context, caller auth.Identity, id string) (*model.Rental, error) {
	return nil, apperrors.Forbidden("no")
}

func (m *mockRentalService) GetMine(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error) {
	if m.mineFunc != nil {
		return m.mineFunc(ctx, caller, limit, offset)
	}
	return []*model.Rental{}, 0, nil
}

func (m *mockRentalService) GetBookings(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error) {
	return []*model.Rental{}, 0, nil
}

func newRouter(svc *mockRentalService) *httprouter.Router {
	router := httprouter.New()
	NewRentalHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func asPlayer(r *http.Request) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: "player-1", Role: model.RolePlayer}))
}

func TestQuote_ParsesTimes(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockRentalService{quoteFunc: func(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error) {
		gotStart, gotEnd = start, end
		return &model.RentalQuote{FieldID: fieldID, Hours: 3, Price: 30}, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/rentals/quote?field_id=f1&start_time=2025-06-01T09:00:00Z&end_time=2025-06-01T11:30:00Z", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 150*time.Minute, gotEnd.Sub(gotStart))

	var body struct {
		Data model.RentalQuote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.Hours)
	assert.Equal(t, 30.0, body.Data.Price)
}

func TestQuote_MissingOrBadTimes(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing start", "?field_id=f1&end_time=2025-06-01T11:30:00Z"},
		{"bad end", "?field_id=f1&start_time=2025-06-01T09:00:00Z&end_time=tomorrow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&mockRentalService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rentals/quote"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestQuote_TooShortReturnsZeroQuote(t *testing.T) {
	svc := &mockRentalService{quoteFunc: func(ctx context.Context, fieldID string, start, end time.Time) (*model.RentalQuote, error) {
		return nil, apperrors.Validation("Rental must be at least one hour long", map[string]any{"hours": 0, "price": 0})
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/rentals/quote?field_id=f1&start_time=2025-06-01T09:00:00Z&end_time=2025-06-01T09:10:00Z", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hours":0`)
	assert.Contains(t, rec.Body.String(), `"price":0`)
}

func TestCreate_RequiresSignIn(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockRentalService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/rentals", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreate_Conflict(t *testing.T) {
	svc := &mockRentalService{createFunc: func(ctx context.Context, caller auth.Identity, req *model.RentalRequest) (*model.Rental, error) {
		assert.Equal(t, "player-1", caller.UserID)
		assert.Equal(t, "f1", req.FieldID)
		return nil, apperrors.Conflict("overlap")
	}}

	body := `{"field_id":"f1","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T10:00:00Z"}`
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, asPlayer(httptest.NewRequest(http.MethodPost, "/api/v1/rentals", strings.NewReader(body))))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetMine_Paginated(t *testing.T) {
	svc := &mockRentalService{mineFunc: func(ctx context.Context, caller auth.Identity, limit int, offset int64) ([]*model.Rental, int64, error) {
		return []*model.Rental{{ID: "r1"}}, 7, nil
	}}

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, asPlayer(httptest.NewRequest(http.MethodGet, "/api/v1/rentals/mine?limit=1", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       []model.Rental `json:"data"`
		TotalCount int64          `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.TotalCount)
	assert.Len(t, body.Data, 1)
}

func TestGetByID_Forbidden(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockRentalService{}).ServeHTTP(rec, asPlayer(httptest.NewRequest(http.MethodGet, "/api/v1/rentals/id/r1", nil)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
