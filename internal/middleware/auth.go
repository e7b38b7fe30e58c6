package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	OwnerKey contextKey = "owner"
	RoleKey  contextKey = "role"
)

// RoleDoctor may read other patients' records.
const RoleDoctor = "doctor"

// Claims issued at login: {"id": <user id>, "role": "patient"|"doctor"}.
type Claims struct {
	jwt.RegisteredClaims
	UserID UserID `json:"id"`
	Role   string `json:"role,omitempty"`
}

// UserID accepts the id claim as a JSON string or number.
type UserID string

func (u *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("id claim must be a string or number")
	}
	*u = UserID(n.String())
	return nil
}

// JWTAuth validates HS256 bearer tokens signed with secret and stores the
// owner id and role in the request context. It panics on an empty secret,
// which would let any client sign its own tokens.
func JWTAuth(secret []byte) func(http.Handler) http.Handler {
	if len(bytes.TrimSpace(secret)) == 0 {
		panic("middleware: JWTAuth requires a non-empty secret")
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			owner := string(claims.UserID)
			if err := ValidateOwnerID(owner); err != nil {
				http.Error(w, "invalid token subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerKey, owner)
			ctx = context.WithValue(ctx, RoleKey, strings.ToLower(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOwnerFromContext extracts the authenticated user id from context
func GetOwnerFromContext(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}

// GetRoleFromContext extracts the authenticated role from context
func GetRoleFromContext(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// WithOwner returns ctx carrying owner and role, as JWTAuth would set them.
func WithOwner(ctx context.Context, owner, role string) context.Context {
	ctx = context.WithValue(ctx, OwnerKey, owner)
	return context.WithValue(ctx, RoleKey, role)
}
