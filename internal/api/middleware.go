/**
 * @description
 * This file contains custom middleware for the HTTP router. The ops
 * endpoints are guarded by a bearer-token check: operators present an HS256
 * JWT signed with the shared ops secret.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: JWT parsing and validation.
 */

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorContextKey is a custom type for the context key to avoid collisions.
type OperatorContextKey string

const operatorSubjectKey OperatorContextKey = "operatorSubject"

// OpsAuthMiddleware creates a middleware that validates HS256 JWT tokens
// signed with the shared ops secret.
func OpsAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
				return
			}
			if !token.Valid {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				http.Error(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}
			subject, ok := claims["sub"].(string)
			if !ok || subject == "" {
				http.Error(w, "Subject not found in token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), operatorSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperatorSubject retrieves the authenticated operator subject from the
// request context.
func GetOperatorSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(operatorSubjectKey).(string)
	return subject, ok
}
