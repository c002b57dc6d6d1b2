package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/compete-app/compete-backend/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "user_role"
)

var errInvalidToken = errors.New("invalid or expired token")

type Authenticator struct {
	jwtSecret []byte
}

func NewAuthenticator(jwtSecret string) *Authenticator {
	return &Authenticator{jwtSecret: []byte(jwtSecret)}
}

// Authenticate requires a valid Bearer token and stores the caller's id and
// role in the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := a.parseRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), userID, role)))
	})
}

// OptionalAuthenticate attaches identity when a valid token is present and
// passes the request through anonymously otherwise. Public search uses it so
// admins see inactive tournaments on the same route.
func (a *Authenticator) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, role, err := a.parseRequest(r); err == nil {
			r = r.WithContext(withIdentity(r.Context(), userID, role))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates a route to the given roles; it must run after
// Authenticate.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok || !allowed[role] {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"insufficient permissions"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) parseRequest(r *http.Request) (string, models.UserRole, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		// Websocket clients cannot set headers from the browser; accept the
		// token as a query parameter there.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", "", errInvalidToken
	}
	return a.ParseToken(token)
}

func (a *Authenticator) ParseToken(tokenString string) (string, models.UserRole, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	roleStr, _ := claims["role"].(string)
	if userID == "" {
		return "", "", errInvalidToken
	}

	role := models.UserRole(roleStr)
	switch role {
	case models.RolePlayer, models.RoleAdmin, models.RoleSuperAdmin:
	default:
		role = models.RolePlayer
	}
	return userID, role, nil
}

func withIdentity(ctx context.Context, userID string, role models.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRoleKey, role)
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, bool) {
	role, ok := ctx.Value(userRoleKey).(models.UserRole)
	return role, ok
}
