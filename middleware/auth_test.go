package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/Toleubekov/auction-system/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(t *testing.T, wantUserID int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		require.Equal(t, wantUserID, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateValidToken(t *testing.T) {
	a := NewAuthenticator(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"user_id": 7, "role": "organizer", "name": "boss"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	a.Authenticate(protectedHandler(t, 7)).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateRejectsBadRequests(t *testing.T) {
	a := NewAuthenticator(testSecret)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"user_id": 7, "role": "organizer"})},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"user_id": 7, "role": "organizer", "exp": time.Now().Add(-time.Minute).Unix(),
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			a.Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler must not be reached")
			})).ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthorizeByRole(t *testing.T) {
	a := NewAuthenticator(testSecret)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	chain := a.Authenticate(Authorize(models.RoleOrganizer, models.RoleAdmin)(next))

	organizerToken := signToken(t, testSecret, jwt.MapClaims{"user_id": 1, "role": "organizer"})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+organizerToken)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	playerToken := signToken(t, testSecret, jwt.MapClaims{"user_id": 2, "role": "player"})
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+playerToken)
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUserIDFromContextValidation(t *testing.T) {
	_, err := GetUserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.Error(t, err)
}
