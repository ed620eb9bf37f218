package mwAuth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timetable-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claims(sub, role string, instructorID *int64, exp time.Time) Claims {
	return Claims{
		Role:         role,
		InstructorID: instructorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestParseToken(t *testing.T) {
	id := int64(7)
	future := time.Now().Add(time.Hour)

	p, err := ParseToken(sign(t, jwt.SigningMethodHS256, []byte(secret), claims("70", "instrutor", &id, future)), secret)
	require.NoError(t, err)
	assert.Equal(t, int64(70), p.UserID)
	assert.Equal(t, models.RoleInstructor, p.Role)
	require.NotNil(t, p.InstructorID)
	assert.Equal(t, id, *p.InstructorID)

	p, err = ParseToken(sign(t, jwt.SigningMethodHS256, []byte(secret), claims("1", "admin", nil, future)), secret)
	require.NoError(t, err)
	assert.True(t, p.IsAdminLike())
	assert.Nil(t, p.InstructorID)
}

func TestParseTokenRejects(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), claims("1", "admin", nil, future)),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(secret), claims("1", "admin", nil, time.Now().Add(-time.Hour))),
		"bad subject":  sign(t, jwt.SigningMethodHS256, []byte(secret), claims("alice", "admin", nil, future)),
		"none alg":     sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims("1", "admin", nil, future)),
		"zero subject": sign(t, jwt.SigningMethodHS256, []byte(secret), claims("0", "admin", nil, future)),
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(token, secret)
			assert.Error(t, err)
		})
	}
}

func TestMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var got models.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := PrincipalFromContext(r.Context())
		require.NoError(t, err)
		got = p
		w.WriteHeader(http.StatusNoContent)
	})
	h := New(log, secret)(next)

	req := httptest.NewRequest(http.MethodGet, "/approvals", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	token := sign(t, jwt.SigningMethodHS256, []byte(secret), claims("5", "programmer", nil, time.Now().Add(time.Hour)))
	req = httptest.NewRequest(http.MethodGet, "/approvals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(5), got.UserID)
	assert.Equal(t, models.RoleProgrammer, got.Role)
}

func TestPrincipalFromContextMissing(t *testing.T) {
	_, err := PrincipalFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.ErrorIs(t, err, ErrNoPrincipal)
}
