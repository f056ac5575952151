package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const authUserContextKey contextKey = "authUser"

// AuthUser is the identity extracted from a verified access token.
type AuthUser struct {
	Sub      string
	Email    string
	Name     string
	Nickname *string
	Picture  *string
}

// Authenticate verifies the Bearer token and stores the subject's
// claims in the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := authUserFromClaims(claims)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authUserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authUserFromClaims(claims jwt.MapClaims) (AuthUser, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return AuthUser{}, errors.New("missing 'sub' claim in token")
	}
	user := AuthUser{Sub: sub}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if nickname, ok := claims["nickname"].(string); ok && nickname != "" {
		user.Nickname = &nickname
	}
	if picture, ok := claims["picture"].(string); ok && picture != "" {
		user.Picture = &picture
	}
	return user, nil
}

// GetAuthUser returns the identity stored by Authenticate.
func GetAuthUser(ctx context.Context) (AuthUser, error) {
	user, ok := ctx.Value(authUserContextKey).(AuthUser)
	if !ok || user.Sub == "" {
		return AuthUser{}, errors.New("authenticated user not found in context")
	}
	return user, nil
}
