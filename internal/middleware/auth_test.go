package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(email string) Claims {
	return Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

// actorEcho responds with the actor stored by the middleware.
var actorEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if actor := ActorFromContext(r.Context()); actor != nil {
		_, _ = w.Write([]byte(*actor))
	}
})

func TestAuthMiddleware(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{
		Secret:              testSecret,
		Audience:            "authenticated",
		AllowedEmailDomains: []string{"@Celtics.com"},
	}, nil)
	h := mw(actorEcho)

	expired := validClaims("coach@celtics.com")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := validClaims("coach@celtics.com")
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{
			name:       "wrong secret",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("coach@celtics.com")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong audience",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unsupported algorithm",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("coach@celtics.com")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no email",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "domain not allowed",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("fan@example.com")),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "valid",
			header:     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("Coach@Celtics.com")),
			wantStatus: http.StatusOK,
			wantBody:   "coach@celtics.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_DisabledWithoutSecret(t *testing.T) {
	h := NewAuthMiddleware(AuthConfig{}, nil)(actorEcho)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/inventory", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
