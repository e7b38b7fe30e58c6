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

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func authed(t *testing.T, header string) (*httptest.ResponseRecorder, string, string) {
	t.Helper()
	var owner, role string
	h := JWTAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner = GetOwnerFromContext(r.Context())
		role = GetRoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, owner, role
}

func TestJWTAuthAcceptsStringAndNumericIDs(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	rec, owner, role := authed(t, "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u-1", "role": "Doctor", "exp": exp}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-1", owner)
	assert.Equal(t, RoleDoctor, role)

	rec, owner, role = authed(t, "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": 42, "exp": exp}))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", owner)
	assert.Empty(t, role)
}

func TestJWTAuthRejects(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	cases := map[string]string{
		"missing header": "",
		"no bearer":      sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u-1"}),
		"wrong secret":   "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"id": "u-1", "exp": exp}),
		"wrong alg":      "Bearer " + sign(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"id": "u-1", "exp": exp}),
		"expired":        "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u-1", "exp": time.Now().Add(-time.Minute).Unix()}),
		"no id":          "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"exp": exp}),
		"bad id":         "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "../etc", "exp": exp}),
		"garbage":        "Bearer not.a.token",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, owner, _ := authed(t, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, owner)
		})
	}
}

func TestJWTAuthRefusesEmptySecret(t *testing.T) {
	assert.Panics(t, func() { JWTAuth(nil) })
	assert.Panics(t, func() { JWTAuth([]byte("")) })
	assert.Panics(t, func() { JWTAuth([]byte("  ")) })
}

func TestJWTAuthRejectsTokenSignedWithEmptyKey(t *testing.T) {
	forged := sign(t, jwt.SigningMethodHS256, []byte{}, jwt.MapClaims{
		"id":   "victim",
		"role": "doctor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, owner, _ := authed(t, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, owner)
}
