package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"playday/pkg/auth"
	apperrors "playday/pkg/errors"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFieldService struct {
	createFunc func(ctx context.Context, caller auth.Identity, field *model.Field) error
	getAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Field, int64, error)
	updateFunc func(ctx context.Context, caller auth.Identity, id string, updates *model.FieldUpdate) (*model.Field, error)
	deleteFunc func(ctx context.Context, caller auth.Identity, id string, confirmed bool) error
}

func (m *mockFieldService) Create(ctx context.Context, caller auth.Identity, field *model.Field) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, caller, field)
	}
	return nil
}

func (m *mockFieldService) GetByID(ctx context.Context, id string) (*model.Field, error) {
	return nil, apperrors.NotFoundWithID("Field", id)
}

func (m *mockFieldService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Field, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Field{}, 0, nil
}

func (m *mockFieldService) GetByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Field, int64, error) {
	return []*model.Field{}, 0, nil
}

func (m *mockFieldService) Update(ctx context.Context, caller auth.Identity, id string, updates *model.FieldUpdate) (*model.Field, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, caller, id, updates)
	}
	return &model.Field{ID: id}, nil
}

func (m *mockFieldService) Delete(ctx context.Context, caller auth.Identity, id string, confirmed bool) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, caller, id, confirmed)
	}
	return nil
}

func newRouter(svc *mockFieldService) *httprouter.Router {
	router := httprouter.New()
	NewFieldHandler(svc, logger.Discard()).RegisterRoutes(router)
	return router
}

func asOwner(r *http.Request) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: "owner-1", Role: model.RoleOwner}))
}

func TestCreate_RequiresSignIn(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fields", strings.NewReader(`{"name":"Pitch"}`))
	rec := httptest.NewRecorder()
	newRouter(&mockFieldService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreate_PassesCallerAndBody(t *testing.T) {
	var gotCaller auth.Identity
	svc := &mockFieldService{createFunc: func(ctx context.Context, caller auth.Identity, field *model.Field) error {
		gotCaller = caller
		field.ID = "f1"
		return nil
	}}

	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/fields", strings.NewReader(`{"name":"Pitch","location":"Haifa","hourly_price":12.5}`)))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "owner-1", gotCaller.UserID)

	var body struct {
		Data model.Field `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "f1", body.Data.ID)
	assert.Equal(t, 12.5, body.Data.HourlyPrice)
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	req := asOwner(httptest.NewRequest(http.MethodPost, "/api/v1/fields", strings.NewReader(`{"name":"Pitch","owner":"x"}`)))
	rec := httptest.NewRecorder()
	newRouter(&mockFieldService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAll_InvalidQueryParameters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"defaults", "", http.StatusOK},
		{"valid", "?limit=5&offset=10", http.StatusOK},
		{"bad limit", "?limit=abc", http.StatusBadRequest},
		{"bad offset", "?offset=1.5", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&mockFieldService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/fields"+tt.query, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetByID_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&mockFieldService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/fields/id/507f1f77bcf86cd799439011", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_ForwardsConfirmation(t *testing.T) {
	var confirmed []bool
	svc := &mockFieldService{deleteFunc: func(ctx context.Context, caller auth.Identity, id string, c bool) error {
		confirmed = append(confirmed, c)
		if !c {
			return apperrors.InvalidInput("confirm")
		}
		return nil
	}}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/fields/id/f1", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asOwner(httptest.NewRequest(http.MethodDelete, "/api/v1/fields/id/f1?confirm=true", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []bool{false, true}, confirmed)
}

func TestUpdate_ConflictMapsTo409(t *testing.T) {
	svc := &mockFieldService{updateFunc: func(ctx context.Context, caller auth.Identity, id string, updates *model.FieldUpdate) (*model.Field, error) {
		return nil, apperrors.Conflict("modified concurrently")
	}}

	req := asOwner(httptest.NewRequest(http.MethodPatch, "/api/v1/fields/id/f1", strings.NewReader(`{"name":"New"}`)))
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
