package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	fieldserrors "playday/internal/fields/errors"
	rentalserrors "playday/internal/rentals/errors"
	"playday/internal/rentals/validator"
	"playday/pkg/auth"
	"playday/pkg/config"
	mongotx "playday/pkg/db/mongo"
	apperrors "playday/pkg/errors"
	"playday/pkg/logger"
	"playday/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockRentalRepository struct {
	mu sync.Mutex

	createFunc     func(ctx context.Context, rental *model.Rental) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Rental, error)
	hasOverlapFunc func(ctx context.Context, fieldID string, start, end time.Time) (bool, error)
	countByFields  func(ctx context.Context, fieldIDs []string) (int64, error)
	findByFields   func(ctx context.Context, fieldIDs []string, limit int, offset int64) ([]*model.Rental, error)

	created      []*model.Rental
	transactions int
}

func (m *mockRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rental)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rental.ID = fmt.Sprintf("rental-%d", len(m.created)+1)
	m.created = append(m.created, rental)
	return nil
}

func (m *mockRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", rentalserrors.ErrNotFound, id)
}

func (m *mockRentalRepository) FindByRenter(ctx context.Context, renterID string, limit int, offset int64) ([]*model.Rental, error) {
	return []*model.Rental{{RenterID: renterID}}, nil
}

func (m *mockRentalRepository) CountByRenter(ctx context.Context, renterID string) (int64, error) {
	return 1, nil
}

func (m *mockRentalRepository) FindByFields(ctx context.Context, fieldIDs []string, limit int, offset int64) ([]*model.Rental, error) {
	if m.findByFields != nil {
		return m.findByFields(ctx, fieldIDs, limit, offset)
	}
	return []*model.Rental{}, nil
}

func (m *mockRentalRepository) CountByFields(ctx context.Context, fieldIDs []string) (int64, error) {
	if m.countByFields != nil {
		return m.countByFields(ctx, fieldIDs)
	}
	return 0, nil
}

// HasOverlap defaults to checking the rentals created through this mock.
func (m *mockRentalRepository) HasOverlap(ctx context.Context, fieldID string, start, end time.Time) (bool, error) {
	if m.hasOverlapFunc != nil {
		return m.hasOverlapFunc(ctx, fieldID, start, end)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.created {
		if r.FieldID == fieldID && r.StartTime.Before(end) && r.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRentalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	m.transactions++
	m.mu.Unlock()
	return fn(nil)
}

// mockLockRepository behaves like the unique _id index on rental_locks.
type mockLockRepository struct {
	mu       sync.Mutex
	locks    map[string]*model.RentalLock
	created  int
	released int
	createFn func(ctx context.Context, lock *model.RentalLock) error
}

func newLockRepo() *mockLockRepository {
	return &mockLockRepository{locks: map[string]*model.RentalLock{}}
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.RentalLock) error {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locks[lock.ID]; ok {
		return fmt.Errorf("%w: %s", rentalserrors.ErrLockHeld, lock.ID)
	}
	m.locks[lock.ID] = lock
	m.created++
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, ok := m.locks[lockID]; !ok || lock.Token != token {
		return fmt.Errorf("%w: %s", rentalserrors.ErrLockLost, lockID)
	}
	delete(m.locks, lockID)
	m.released++
	return nil
}

func (m *mockLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lock, ok := m.locks[lockID]; ok && !lock.ExpiresAt.After(now) {
		delete(m.locks, lockID)
		return true, nil
	}
	return false, nil
}

type mockFieldReader struct {
	fields map[string]*model.Field
	err    error
}

func (m *mockFieldReader) FindByID(ctx context.Context, id string) (*model.Field, error) {
	if m.err != nil {
		return nil, m.err
	}
	if f, ok := m.fields[id]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", fieldserrors.ErrNotFound, id)
}

func (m *mockFieldReader) FindIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	for id, f := range m.fields {
		if f.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event model.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

const fieldID = "507f1f77bcf86cd799439011"

var (
	owner  = auth.Identity{UserID: "owner-1", Role: model.RoleOwner}
	renter = auth.Identity{UserID: "player-1", Email: "p1@example.com", Role: model.RolePlayer}
	nine   = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

func testConfig() *config.Config {
	return &config.Config{
		Log:           logger.Discard(),
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		RentalLockTTL: 10 * time.Second,
	}
}

func fieldsFixture() *mockFieldReader {
	return &mockFieldReader{fields: map[string]*model.Field{
		fieldID: {ID: fieldID, OwnerID: owner.UserID, Name: "Center Court", Location: "Tel Aviv", HourlyPrice: 10},
	}}
}

type fixture struct {
	repo  *mockRentalRepository
	locks *mockLockRepository
	pub   *recordingPublisher
	svc   *rentalService
}

func newFixture() *fixture {
	f := &fixture{repo: &mockRentalRepository{}, locks: newLockRepo(), pub: &recordingPublisher{}}
	f.svc = NewRentalService(f.repo, f.locks, fieldsFixture(), validator.NewRentalValidator(), f.pub, testConfig()).(*rentalService)
	return f
}

func request(start time.Time, d time.Duration) *model.RentalRequest {
	return &model.RentalRequest{FieldID: fieldID, StartTime: start, EndTime: start.Add(d)}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "want %s, got %v", code, err)
}

// ────────────────────────────────────────────────
// Quote
// ────────────────────────────────────────────────

func TestQuote_UsesFieldPrice(t *testing.T) {
	q, err := newFixture().svc.Quote(context.Background(), fieldID, nine, nine.Add(150*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, q.Hours)
	assert.Equal(t, 30.0, q.Price)
	assert.Equal(t, 10.0, q.HourlyPrice)
}

func TestQuote_TooShortCarriesZeroQuote(t *testing.T) {
	_, err := newFixture().svc.Quote(context.Background(), fieldID, nine, nine.Add(10*time.Minute))
	requireCode(t, err, apperrors.CodeValidation)

	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 0, appErr.Details["hours"])
	assert.Equal(t, 0.0, appErr.Details["price"])
}

func TestQuote_UnknownField(t *testing.T) {
	_, err := newFixture().svc.Quote(context.Background(), "507f1f77bcf86cd799439099", nine, nine.Add(time.Hour))
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = newFixture().svc.Quote(context.Background(), "", nine, nine.Add(time.Hour))
	requireCode(t, err, apperrors.CodeInvalidInput)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_PricesServerSideAndPublishes(t *testing.T) {
	f := newFixture()

	rental, err := f.svc.Create(context.Background(), renter, request(nine, 90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, rental.Hours)
	assert.Equal(t, 20.0, rental.Price)
	assert.Equal(t, renter.UserID, rental.RenterID)
	assert.Equal(t, "Center Court", rental.FieldName)
	assert.Equal(t, 1, f.repo.transactions)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, model.CollectionRentals, ev.Collection)
	assert.Equal(t, "rental.created", ev.EventType())
	assert.Equal(t, owner.UserID, ev.Attributes["owner_id"])
	assert.Equal(t, renter.Email, ev.Attributes["renter_email"])
	assert.Equal(t, "20.00", ev.Attributes["price"])
}

func TestCreate_ReleasesLock(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), renter, request(nine, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, f.locks.created)
	assert.Equal(t, 1, f.locks.released)
	assert.Empty(t, f.locks.locks)
}

func TestCreate_OverlapConflicts(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), renter, request(nine, 2*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), renter, request(nine.Add(time.Hour), time.Hour))
	requireCode(t, err, apperrors.CodeConflict)
	assert.Len(t, f.repo.created, 1)
	assert.Empty(t, f.locks.locks, "lock must be released on failure")

	_, err = f.svc.Create(context.Background(), renter, request(nine.Add(2*time.Hour), time.Hour))
	require.NoError(t, err, "adjacent slots do not overlap")
}

func TestCreate_ConcurrentSameSlotOneWins(t *testing.T) {
	f := newFixture()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), renter, request(nine, time.Hour))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireCode(t, err, apperrors.CodeConflict)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.repo.created, 1)
}

func TestCreate_TooShortRejectedBeforeLock(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), renter, request(nine, 10*time.Minute))
	requireCode(t, err, apperrors.CodeValidation)
	assert.Zero(t, f.locks.created)
	assert.Empty(t, f.repo.created)
}

func TestCreate_ValidatesRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), renter, &model.RentalRequest{FieldID: "not-an-id", StartTime: nine, EndTime: nine.Add(time.Hour)})
	requireCode(t, err, apperrors.CodeValidation)
	_, err = f.svc.Create(context.Background(), renter, &model.RentalRequest{FieldID: fieldID})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestCreate_ClearsExpiredLock(t *testing.T) {
	f := newFixture()
	f.locks.locks["rental_lock_"+fieldID] = &model.RentalLock{
		ID:        "rental_lock_" + fieldID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := f.svc.Create(context.Background(), renter, request(nine, time.Hour))
	require.NoError(t, err)
}

func TestCreate_DoesNotReleaseTakenOverLock(t *testing.T) {
	f := newFixture()
	lockID := "rental_lock_" + fieldID
	var ours *model.RentalLock
	f.repo.hasOverlapFunc = func(ctx context.Context, fieldID string, start, end time.Time) (bool, error) {
		f.locks.mu.Lock()
		defer f.locks.mu.Unlock()
		ours = f.locks.locks[lockID]
		f.locks.locks[lockID] = &model.RentalLock{
			ID:        lockID,
			Token:     "other-creator",
			ExpiresAt: time.Now().Add(time.Minute),
		}
		return false, nil
	}

	_, err := f.svc.Create(context.Background(), renter, request(nine, time.Hour))
	require.NoError(t, err)

	require.NotNil(t, ours)
	assert.NotEmpty(t, ours.Token)
	assert.NotEqual(t, "other-creator", ours.Token)
	require.Contains(t, f.locks.locks, lockID)
	assert.Equal(t, "other-creator", f.locks.locks[lockID].Token)
	assert.Zero(t, f.locks.released)
}

func TestCreate_LockTokensDifferPerAcquisition(t *testing.T) {
	f := newFixture()
	var tokens []string
	inner := f.locks
	f.locks.createFn = func(ctx context.Context, lock *model.RentalLock) error {
		tokens = append(tokens, lock.Token)
		inner.mu.Lock()
		defer inner.mu.Unlock()
		inner.locks[lock.ID] = lock
		return nil
	}

	_, err := f.svc.Create(context.Background(), renter, request(nine, time.Hour))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), renter, request(nine.Add(time.Hour), time.Hour))
	require.NoError(t, err)

	require.Len(t, tokens, 2)
	assert.NotEqual(t, tokens[0], tokens[1])
	assert.Empty(t, f.locks.locks)
}

func TestCreate_HeldLockHonoursContext(t *testing.T) {
	f := newFixture()
	f.locks.locks["rental_lock_"+fieldID] = &model.RentalLock{
		ID:        "rental_lock_" + fieldID,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := f.svc.Create(ctx, renter, request(nine, time.Hour))
	requireCode(t, err, apperrors.CodeTimeout)
	assert.Empty(t, f.repo.created)
}

func TestCreate_LockStoreFailure(t *testing.T) {
	f := newFixture()
	f.locks.createFn = func(ctx context.Context, lock *model.RentalLock) error {
		return fmt.Errorf("connection refused")
	}

	_, err := f.svc.Create(context.Background(), renter, request(nine, time.Hour))
	requireCode(t, err, apperrors.CodeInternal)
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestGetByID_RenterOrOwnerOnly(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Rental, error) {
		return &model.Rental{ID: id, FieldID: fieldID, RenterID: renter.UserID}, nil
	}

	_, err := f.svc.GetByID(context.Background(), renter, "r1")
	require.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), owner, "r1")
	require.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), auth.Identity{UserID: "stranger"}, "r1")
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := newFixture().svc.GetByID(context.Background(), renter, "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestGetBookings_JoinsOnOwnedFields(t *testing.T) {
	f := newFixture()
	var gotIDs []string
	f.repo.findByFields = func(ctx context.Context, fieldIDs []string, limit int, offset int64) ([]*model.Rental, error) {
		gotIDs = fieldIDs
		return []*model.Rental{{FieldID: fieldID}}, nil
	}
	f.repo.countByFields = func(ctx context.Context, fieldIDs []string) (int64, error) { return 1, nil }

	rentals, total, err := f.svc.GetBookings(context.Background(), owner, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{fieldID}, gotIDs)
	assert.Len(t, rentals, 1)
	assert.Equal(t, int64(1), total)
}

func TestGetBookings_NoFieldsIsEmpty(t *testing.T) {
	f := newFixture()
	other := auth.Identity{UserID: "owner-2", Role: model.RoleOwner}

	rentals, total, err := f.svc.GetBookings(context.Background(), other, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, rentals)
	assert.NotNil(t, rentals)
	assert.Zero(t, total)
}

func TestGetBookings_PlayersForbidden(t *testing.T) {
	_, _, err := newFixture().svc.GetBookings(context.Background(), renter, 10, 0)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestGetMine(t *testing.T) {
	rentals, total, err := newFixture().svc.GetMine(context.Background(), renter, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rentals, 1)
	assert.Equal(t, renter.UserID, rentals[0].RenterID)
}
