package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"playday/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var testHashParams = HashParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func testUser() *model.User {
	return &model.User{ID: "507f1f77bcf86cd799439011", Email: "owner@example.com", Role: model.RoleOwner}
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, expiresAt, err := tm.Issue(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "507f1f77bcf86cd799439011", id.UserID)
	assert.Equal(t, "owner@example.com", id.Email)
	assert.Equal(t, model.RoleOwner, id.Role)
	assert.NotEmpty(t, id.TokenID)
	assert.True(t, id.IsOwner())
}

func TestTokenManager_TokenIDsAreUnique(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	a, _, err := tm.Issue(testUser())
	require.NoError(t, err)
	b, _, err := tm.Issue(testUser())
	require.NoError(t, err)

	idA, err := tm.Parse(a)
	require.NoError(t, err)
	idB, err := tm.Parse(b)
	require.NoError(t, err)
	assert.NotEqual(t, idA.TokenID, idB.TokenID)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := tm.Issue(testUser())
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager(testSecret, time.Hour)
	verifier := NewTokenManager(strings.Repeat("x", 32), time.Hour)

	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	claims := Claims{
		Role: model.RolePlayer,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Subject:   "u1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	_, err := tm.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(testHashParams)

	encoded, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := h.Verify("secret123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("secret124", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltsDiffer(t *testing.T) {
	h := NewPasswordHasher(testHashParams)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_InvalidHash(t *testing.T) {
	h := NewPasswordHasher(testHashParams)

	_, err := h.Verify("secret123", "$bcrypt$nope")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = h.Verify("secret123", "$argon2id$v=1$m=1024,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1", Role: model.RolePlayer})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
	assert.False(t, id.IsOwner())
}

func TestMemoryRevocationStore(t *testing.T) {
	store := NewMemoryRevocationStore(time.Hour)
	defer store.Stop()
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Second)))
	revoked, err = store.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation past token expiry is moot")

	store.Stop()
}
