package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of the upstream access token the BFF needs. The signature is
// checked by the upstream API on every call, so the token is only decoded here.
type Claims struct {
	UserId    string
	Email     string
	ExpiresAt time.Time
}

var userIdClaims = []string{"sub", "id", "userId", "usuarioId"}

func ParseClaims(accessToken string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("failed to decode access token: %w", err)
	}

	var claims Claims
	for _, name := range userIdClaims {
		if id := claimString(mapClaims[name]); id != "" {
			claims.UserId = id
			break
		}
	}
	if claims.UserId == "" {
		return Claims{}, fmt.Errorf("access token carries no user id")
	}
	claims.Email = claimString(mapClaims["email"])

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func claimString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}
