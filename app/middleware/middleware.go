package appMiddleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-travel-planner/internal/api"
)

// Authenticate validates HS256 bearer tokens and stores the subject in the
// request context. It panics when no secret is configured.
func Authenticate(logger *slog.Logger, cfg JWTConfig) func(next http.Handler) http.Handler {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) == 0 {
		logger.Error("FATAL: JWT Secret Key is not configured!")
		panic("JWT Secret Key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secretKey, nil
			}, opts...)
			if err != nil {
				l.WarnContext(ctx, "Token parsing/validation failed", slog.Any("error", err))
				msg := "Invalid or expired token"
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					msg = "Token has expired"
				case errors.Is(err, jwt.ErrTokenMalformed):
					msg = "Malformed token"
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					msg = "Invalid token signature"
				case errors.Is(err, jwt.ErrTokenInvalidIssuer):
					msg = "Invalid token issuer"
				}
				api.ErrorResponse(w, r, http.StatusUnauthorized, msg)
				return
			}
			if !token.Valid {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			if !verifyAudience(claims.Audience, cfg.Audience) {
				l.WarnContext(ctx, "Token audience mismatch", slog.String("expected", cfg.Audience), slog.Any("actual", claims.Audience))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid token audience")
				return
			}

			ctx = context.WithValue(ctx, SubjectKey, claims.Subject)
			l.DebugContext(ctx, "Authentication successful", slog.String("subject", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
