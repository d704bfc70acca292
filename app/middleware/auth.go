package appMiddleware

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const SubjectKey contextKey = "subject"

// Claims are the bearer token claims accepted by the planner API.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// JWTConfig configures Authenticate. An empty Audience skips the audience check.
type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
}

func GetSubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(SubjectKey).(string)
	return sub, ok
}

func verifyAudience(claimsAudience jwt.ClaimStrings, expected string) bool {
	if expected == "" {
		return true
	}
	for _, aud := range claimsAudience {
		if aud == expected {
			return true
		}
	}
	return false
}
